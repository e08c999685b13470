package presentation

import (
	"net/http"
	"time"

	"github.com/JeterChan/miao-fruit-web/internal/presentation/helpers"
	"github.com/go-chi/chi/v5"
)

// MountLineHealth reports whether the LINE channel is configured without
// exposing the token itself.
func MountLineHealth(r chi.Router, configured func() bool) {
	r.Get("/api/line/health", func(w http.ResponseWriter, _ *http.Request) {
		helpers.WriteJSON(w, http.StatusOK, map[string]any{
			"status":         "ok",
			"hasAccessToken": configured(),
			"timestamp":      time.Now().UTC().Format(time.RFC3339),
		})
	})
}
