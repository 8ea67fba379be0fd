package api

import (
	"direct-chat/auth"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

// NewRouter wires every route under /api/v1.
func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", s.welcome)
		r.Post("/logout", s.logout)

		// Credential endpoints are throttled per client
		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(s.opts.LoginRateLimit, rateLimitWindow))
			r.Post("/sign-up", s.signUp)
			r.Post("/login", s.login)
		})

		// The live channel authenticates itself before upgrading
		r.Get("/ws", s.serveWebSocket)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate(s.verifier, s.log))
			r.Get("/profile", s.profile)
			r.Get("/users", s.listUsers)
			r.Get("/user/{id}", s.getUser)
			r.Post("/messages", s.sendMessage)
			r.Post("/conversation", s.conversation)
		})
	})
	return r
}

func (s *Server) welcome(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, s.log, http.StatusOK, map[string]string{"message": "Welcome to direct-chat"})
}
