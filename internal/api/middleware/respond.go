package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/athujoshi24/legendary-panel/internal/api/types"
	appErr "github.com/athujoshi24/legendary-panel/pkg/errors"
)

// writeError writes the standard error envelope. Middleware runs outside the
// handlers package, so it has its own copy.
func writeError(w http.ResponseWriter, r *http.Request, status int, code appErr.Code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.APIResponse{
		Success: false,
		Error:   &types.APIError{Code: string(code), Message: msg},
		Meta:    &types.Meta{RequestID: GetRequestID(r.Context())},
	})
}
