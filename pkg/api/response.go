package api

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// RespondWithJSON writes data as the JSON response body with the given status code.
func RespondWithJSON(statusCode int, w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Warn("error writing json response")
	}
}

// FailureResponse writes the standard error body.
func FailureResponse(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(code, w, map[string]interface{}{
		"code":    code,
		"message": message,
	})
}
