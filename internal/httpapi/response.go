package httpapi

import (
	"encoding/json"
	"net/http"
)

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	Error     string   `json:"error"`
	Feedback  []string `json:"feedback,omitempty"`
	RequestID string   `json:"request_id,omitempty"`
}

func responseWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func responseWithError(w http.ResponseWriter, r *http.Request, code int, message string, feedback ...string) {
	responseWithJSON(w, code, errorResponse{
		Error:     message,
		Feedback:  feedback,
		RequestID: GetRequestID(r.Context()),
	})
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
