package services

import (
	"direct-chat/auth"
	"direct-chat/domain"
	"direct-chat/errors"
	"direct-chat/repositories"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

type IAuthService interface {
	Register(req auth.RegisterRequest) (Session, error)
	Login(req auth.LoginRequest) (Session, error)
}

// Session is what a successful sign-up or login hands back to the transport.
type Session struct {
	User      domain.UserSummary
	Token     string
	ExpiresAt time.Time
}

type AuthService struct {
	log            *slog.Logger
	userRepository repositories.IUserRepository
	tokens         *auth.TokenManager
}

func NewAuthService(log *slog.Logger, repo repositories.IUserRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{log: log, userRepository: repo, tokens: tokens}
}

func (s *AuthService) Register(req auth.RegisterRequest) (Session, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	// Validated before any expensive cryptographic operation
	if err := auth.ValidateRegister(req); err != nil {
		return Session{}, err
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return Session{}, fmt.Errorf("%w: hashing failed: %v", errors.ErrStore, err)
	}

	user, err := s.userRepository.CreateUser(domain.User{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        req.Email,
		PasswordHash: hashedPassword,
	})
	if err != nil {
		return Session{}, err
	}
	s.log.Info("User registered", "user_id", user.ID)
	return s.issue(user)
}

func (s *AuthService) Login(req auth.LoginRequest) (Session, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := auth.ValidateLogin(req); err != nil {
		return Session{}, err
	}

	user, err := s.userRepository.GetUserByEmail(req.Email)
	if err != nil {
		if stderrors.Is(err, errors.ErrNotFound) {
			// Same answer as a wrong password so emails cannot be enumerated
			return Session{}, errors.ErrInvalidCredentials
		}
		return Session{}, err
	}

	match, err := auth.ComparePassword(req.Password, user.PasswordHash)
	if err != nil || !match {
		return Session{}, errors.ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *AuthService) issue(user domain.User) (Session, error) {
	token, expiresAt, err := s.tokens.Generate(user)
	if err != nil {
		return Session{}, err
	}
	return Session{User: user.Summary(), Token: token, ExpiresAt: expiresAt}, nil
}
