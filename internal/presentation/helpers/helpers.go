package helpers

import (
	"encoding/json"
	"io"
	"net/http"
)

func DecodeJSON(r io.Reader, v any) error {
	return json.NewDecoder(r).Decode(v)
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func HttpError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"status": "error", "message": msg})
}

// HttpErrorDetail includes the underlying error text; only use it in a
// development posture.
func HttpErrorDetail(w http.ResponseWriter, status int, msg, detail string) {
	WriteJSON(w, status, map[string]string{"status": "error", "message": msg, "error": detail})
}
