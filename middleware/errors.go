// ABOUTME: Error body writer for requests rejected before reaching a handler
// ABOUTME: Encodes models.ErrorResponse, the same envelope the handlers emit

package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/markalston/spark-sizing-advisor/models"
)

func writeJSONError(w http.ResponseWriter, message string, code int) {
	writeErrorResponse(w, models.ErrorResponse{Error: message, Code: code})
}

func writeErrorResponse(w http.ResponseWriter, body models.ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(body.Code)
	json.NewEncoder(w).Encode(body)
}
