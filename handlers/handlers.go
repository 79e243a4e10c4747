package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/taskdeck/taskdeck/utils"
)

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// decodeBody decodes and validates a JSON request body. A failure is
// reported to the client and false is returned.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		_ = utils.WriteBadRequest(w, "VALIDATION_FAILED", "invalid request body", nil)
		return false
	}
	if err := utils.ValidateStruct(dst); err != nil {
		details := make(map[string]interface{})
		for k, v := range utils.GetValidationFields(err) {
			details[k] = v
		}
		_ = utils.WriteBadRequest(w, "VALIDATION_FAILED", "validation failed", details)
		return false
	}
	return true
}
