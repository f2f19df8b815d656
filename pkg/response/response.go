// Package response writes the JSON envelope every API endpoint speaks:
//
//	{"success": true,  "data": ...}
//	{"success": false, "message": "Order not found"}
//
// The shape is fixed; the single-page client switches on the success flag and
// renders message verbatim, so handlers must never leak internals into it.
package response

import (
	"encoding/json"
	"net/http"
)

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func write(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// Success sends a 200 with data.
func Success(w http.ResponseWriter, data interface{}) {
	write(w, http.StatusOK, envelope{Success: true, Data: data})
}

// Created sends a 201 with data.
func Created(w http.ResponseWriter, data interface{}) {
	write(w, http.StatusCreated, envelope{Success: true, Data: data})
}

// Message sends a 200 with a human-readable message and no data.
func Message(w http.ResponseWriter, message string) {
	write(w, http.StatusOK, envelope{Success: true, Message: message})
}

// Error sends a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, envelope{Success: false, Message: message})
}

// BadRequest sends a 400.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

// Unauthorized sends a 401.
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}

// Forbidden sends a 403.
func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, message)
}

// NotFound sends a 404.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

// ServerError sends a 500 with the generic message the API exposes for
// unexpected failures. The real cause belongs in the log, not the body.
func ServerError(w http.ResponseWriter) {
	Error(w, http.StatusInternalServerError, "Server error")
}
