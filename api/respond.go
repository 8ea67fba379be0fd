package api

import (
	"direct-chat/errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

const maxBodySize = 64 * 1024

var validate = validator.New()

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, log *slog.Logger, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		log.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		log.Debug("Failed to write JSON response", "error", err)
	}
}

// respondError maps the error onto the taxonomy. Store failures are logged,
// their detail is not returned.
func respondError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status, reason := errors.MapToHTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Error("Request failed", "path", r.URL.Path, "error", err)
		message = "internal server error"
	}
	respondJSON(w, log, status, ErrorResponse{Error: reason, Message: message})
}

// decodeAndValidate reads a JSON body into dst and checks its validate tags.
func decodeAndValidate(r *http.Request, dst any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed request body", errors.ErrValidation)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}
	return nil
}
