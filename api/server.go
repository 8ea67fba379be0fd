// Package api exposes the messaging core over HTTP and WebSocket.
package api

import (
	"direct-chat/auth"
	"direct-chat/contract"
	"direct-chat/domain"
	"direct-chat/services"
	"log/slog"
	"time"
)

// ILiveChannel is the part of the live delivery channel a connection handler drives.
type ILiveChannel interface {
	Bind(userID string, sink contract.EventSink)
	OpenConversation(userID, partnerID string, sink contract.EventSink) domain.ChannelKey
	CloseConversation(sink contract.EventSink)
	Disconnect(sink contract.EventSink)
}

type Options struct {
	AllowedOrigins       []string
	CookieSecure         bool
	LoginRateLimit       int
	ConnectionBufferSize int
}

type Server struct {
	log      *slog.Logger
	chat     services.IChatService
	auth     services.IAuthService
	users    services.IUserService
	verifier auth.ITokenVerifier
	live     ILiveChannel
	opts     Options
}

func NewServer(log *slog.Logger, chat services.IChatService, authService services.IAuthService,
	users services.IUserService, verifier auth.ITokenVerifier, live ILiveChannel, opts Options) *Server {
	if opts.ConnectionBufferSize <= 0 {
		opts.ConnectionBufferSize = 64
	}
	if opts.LoginRateLimit <= 0 {
		opts.LoginRateLimit = 20
	}
	return &Server{
		log:      log,
		chat:     chat,
		auth:     authService,
		users:    users,
		verifier: verifier,
		live:     live,
		opts:     opts,
	}
}

const rateLimitWindow = time.Minute
