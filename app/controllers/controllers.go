// Package controllers holds the HTTP handlers. Each controller binds the
// request body, delegates to its service, and writes the response envelope.
package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/motomart/app/services"
	"github.com/shashiranjanraj/motomart/pkg/logger"
	"github.com/shashiranjanraj/motomart/pkg/response"
)

// respondErr maps a service error onto the wire. Anything that is not a
// services.Error is an internal failure: logged with detail, surfaced as a
// generic 500.
func respondErr(w http.ResponseWriter, r *http.Request, err error) {
	var se *services.Error
	if errors.As(err, &se) {
		response.Error(w, se.Status, se.Message)
		return
	}
	logger.WithCtx(r.Context()).Error("request failed",
		"method", r.Method, "path", r.URL.Path, "error", err)
	response.ServerError(w)
}
