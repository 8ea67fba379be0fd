package api

import (
	"direct-chat/auth"
	"direct-chat/domain"
	"direct-chat/errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// profile answers from the verified session alone.
func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, r, s.log, errors.ErrMissingToken)
		return
	}
	respondJSON(w, s.log, http.StatusOK, userResponse{
		Message: "User profile",
		User: domain.UserSummary{
			ID:        claims.UserID,
			FirstName: claims.FirstName,
			LastName:  claims.LastName,
			Email:     claims.Email,
		},
	})
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.ListUsers()
	if err != nil {
		respondError(w, r, s.log, err)
		return
	}
	respondJSON(w, s.log, http.StatusOK, usersResponse{Message: "Users fetched successfully", Users: users})
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.GetUser(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, s.log, err)
		return
	}
	respondJSON(w, s.log, http.StatusOK, userResponse{Message: "User fetched successfully", User: user})
}
