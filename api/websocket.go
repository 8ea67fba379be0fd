package api

import (
	"direct-chat/auth"
	"direct-chat/domain"
	"direct-chat/domain/event"
	"direct-chat/sink"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
)

// Frame types exchanged on the live channel.
const (
	FrameSubscribe    = "subscribe"
	FrameUnsubscribe  = "unsubscribe"
	FramePing         = "ping"
	FramePong         = "pong"
	FrameSubscribed   = "subscribed"
	FrameUnsubscribed = "unsubscribed"
	FrameError        = "error"
)

// ClientFrame is sent by the connected client.
type ClientFrame struct {
	Type      string `json:"type"`
	PartnerID string `json:"partnerId,omitempty"`
}

// ServerFrame is pushed to the connected client.
type ServerFrame struct {
	Type    string            `json:"type"`
	Channel domain.ChannelKey `json:"channel,omitempty"`
	Data    any               `json:"data,omitempty"`
}

func (s *Server) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      s.checkOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkOrigin accepts non-browser clients and the configured origins.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return slices.Contains(s.opts.AllowedOrigins, "*") || slices.Contains(s.opts.AllowedOrigins, origin)
}

// serveWebSocket verifies the credential before upgrading. A rejected
// handshake never becomes a connection and never reaches the registry.
func (s *Server) serveWebSocket(w http.ResponseWriter, r *http.Request) {
	claims, err := s.verifier.Verify(auth.TokenFromRequest(r))
	if err != nil {
		s.log.Debug("Live channel handshake rejected", "error", err)
		respondError(w, r, s.log, err)
		return
	}

	upgrader := s.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("WebSocket upgrade failed", "user_id", claims.UserID, "error", err)
		return
	}

	c := newClient(s.log, conn, claims.UserID, sink.NewConnectionSink(s.log, s.opts.ConnectionBufferSize), s.live)
	s.live.Bind(claims.UserID, c.sink)
	s.log.Info("Live connection opened", "user_id", claims.UserID, "connection", c.sink.ID())
	c.start()
}

// client is a middleman between the websocket connection and the live channel.
type client struct {
	log     *slog.Logger
	conn    *websocket.Conn
	userID  string
	sink    *sink.ConnectionSink
	live    ILiveChannel
	replies chan ServerFrame
}

func newClient(log *slog.Logger, conn *websocket.Conn, userID string, s *sink.ConnectionSink, live ILiveChannel) *client {
	return &client{
		log:     log,
		conn:    conn,
		userID:  userID,
		sink:    s,
		live:    live,
		replies: make(chan ServerFrame, 16),
	}
}

func (c *client) start() {
	go c.writePump()
	go c.readPump()
}

// readPump handles client frames until the connection drops, then unbinds it.
func (c *client) readPump() {
	defer func() {
		c.live.Disconnect(c.sink)
		c.sink.Close()
		_ = c.conn.Close()
		c.log.Info("Live connection closed", "user_id", c.userID, "connection", c.sink.ID())
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log.Error("Failed to set read deadline", "error", err)
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Debug("Unexpected websocket close", "user_id", c.userID, "error", err)
			}
			return
		}
		var frame ClientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.reply(ServerFrame{Type: FrameError, Data: "malformed frame"})
			continue
		}
		c.handle(frame)
	}
}

func (c *client) handle(frame ClientFrame) {
	switch frame.Type {
	case FrameSubscribe:
		if frame.PartnerID == "" {
			c.reply(ServerFrame{Type: FrameError, Data: "partnerId is required"})
			return
		}
		// Only user ids may form a conversation key
		if _, err := uuid.Parse(frame.PartnerID); err != nil {
			c.reply(ServerFrame{Type: FrameError, Data: "partnerId is not a user id"})
			return
		}
		key := c.live.OpenConversation(c.userID, frame.PartnerID, c.sink)
		c.reply(ServerFrame{Type: FrameSubscribed, Channel: key})
	case FrameUnsubscribe:
		c.live.CloseConversation(c.sink)
		c.reply(ServerFrame{Type: FrameUnsubscribed})
	case FramePing:
		c.reply(ServerFrame{Type: FramePong})
	default:
		c.reply(ServerFrame{Type: FrameError, Data: "unknown frame type"})
	}
}

func (c *client) reply(frame ServerFrame) {
	select {
	case c.replies <- frame:
	default:
		c.log.Debug("Reply dropped", "user_id", c.userID, "type", frame.Type)
	}
}

// writePump is the only writer of the connection.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case evt, ok := <-c.sink.Events():
			if !ok {
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.write(toFrame(evt)); err != nil {
				return
			}
		case frame := <-c.replies:
			if err := c.write(frame); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) write(frame ServerFrame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		c.log.Error("Failed to marshal frame", "type", frame.Type, "error", err)
		return nil
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		c.log.Debug("Failed to write frame", "user_id", c.userID, "error", err)
		return err
	}
	return nil
}

func toFrame(evt event.DomainEvent) ServerFrame {
	frame := ServerFrame{Type: evt.Type(), Channel: evt.Channel()}
	switch e := evt.(type) {
	case event.MessageDelivered:
		frame.Data = e.Message
	case event.MessageNotified:
		frame.Data = e.Notification
	}
	return frame
}
