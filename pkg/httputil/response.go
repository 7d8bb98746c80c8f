package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/gavel-oj/gavel/pkg/errs"
	"github.com/gavel-oj/gavel/pkg/observability"
)

// SuccessEnvelope is the wire shape of a successful response
type SuccessEnvelope struct {
	Success bool        `json:"success"`
	Result  interface{} `json:"result,omitempty"`
}

// ErrorEnvelope is the wire shape of a failed response
type ErrorEnvelope struct {
	Success bool        `json:"success"`
	Error   interface{} `json:"error"`
}

// WriteResult writes a success envelope with the given result
func WriteResult(w http.ResponseWriter, result interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(SuccessEnvelope{Success: true, Result: result})
}

// WriteOK writes an empty success envelope
func WriteOK(w http.ResponseWriter) {
	WriteResult(w, nil)
}

// WriteError writes the error envelope for err. Semantic error kinds keep
// their wire shape and a 200 status; infrastructure errors become an opaque
// 500 and are logged, never exposed.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	w.Header().Set("Content-Type", "application/json")

	if sem := errs.Semantic(err); sem != nil {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(ErrorEnvelope{Success: false, Error: sem})
		return
	}

	observability.FromContext(r.Context()).WithError(err).Error("request failed")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(ErrorEnvelope{
		Success: false,
		Error:   map[string]string{"error": "InternalError"},
	})
}

// WriteInvalidURL writes the catch-all response for unknown routes
func WriteInvalidURL(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(ErrorEnvelope{
		Success: false,
		Error:   map[string]string{"error": "InvalidURL"},
	})
}
