package api

import (
	"direct-chat/auth"
	"direct-chat/domain"
	"direct-chat/services"
	"net/http"
	"time"
)

type signUpRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required"`
	Password  string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	Message string             `json:"message"`
	User    domain.UserSummary `json:"user"`
}

type usersResponse struct {
	Message string               `json:"message"`
	Users   []domain.UserSummary `json:"users"`
}

func (s *Server) signUp(w http.ResponseWriter, r *http.Request) {
	var body signUpRequest
	if err := decodeAndValidate(r, &body); err != nil {
		respondError(w, r, s.log, err)
		return
	}
	session, err := s.auth.Register(auth.RegisterRequest{
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Email:     body.Email,
		Password:  body.Password,
	})
	if err != nil {
		respondError(w, r, s.log, err)
		return
	}
	s.setSessionCookie(w, session)
	respondJSON(w, s.log, http.StatusCreated, userResponse{Message: "User registered successfully", User: session.User})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if err := decodeAndValidate(r, &body); err != nil {
		respondError(w, r, s.log, err)
		return
	}
	session, err := s.auth.Login(auth.LoginRequest{Email: body.Email, Password: body.Password})
	if err != nil {
		respondError(w, r, s.log, err)
		return
	}
	s.setSessionCookie(w, session)
	respondJSON(w, s.log, http.StatusOK, userResponse{Message: "Login successful", User: session.User})
}

func (s *Server) logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
	respondJSON(w, s.log, http.StatusOK, map[string]string{"message": "Logout successful"})
}

func (s *Server) setSessionCookie(w http.ResponseWriter, session services.Session) {
	sameSite := http.SameSiteLaxMode
	if s.opts.CookieSecure {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    session.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: sameSite,
		Expires:  session.ExpiresAt,
	})
}
