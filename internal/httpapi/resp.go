package httpapi

import (
	"encoding/json"
	"net/http"
)

// resp is the uniform JSON envelope for /api/start responses, adapted from
// the original implementation's Resp helper: a message plus a success
// flag, with the message also usable on its own as spec.md §6's required
// plain-text 400 body.
type resp struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

func writeResp(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp{Message: message, Success: status == http.StatusOK})
}

func badRequest(w http.ResponseWriter, message string) {
	writeResp(w, http.StatusBadRequest, message)
}

func serverError(w http.ResponseWriter, message string) {
	writeResp(w, http.StatusInternalServerError, message)
}

func redirectTo(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusSeeOther)
}
