package api

import (
	"encoding/json"
	"log"
	"net/http"
)

const serverErrorMessage = "Server error."

// respondWithJSON writes a JSON response with the given status code
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Error marshaling JSON"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// respondWithError writes an {"error": message} JSON response
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithServerError logs the underlying error and hides the detail
// from the client
func respondWithServerError(w http.ResponseWriter, err error) {
	log.Printf("Server error: %v", err)
	respondWithError(w, http.StatusInternalServerError, serverErrorMessage)
}
