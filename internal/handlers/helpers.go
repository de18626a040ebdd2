// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains all HTTP handlers for the public site,
// grouped by feature area. Each group is a struct holding the stores
// and services it needs, wired together by the router.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"inkwell/internal/middleware"
	"inkwell/internal/render"
	"inkwell/internal/session"
)

// pageSize is how many articles a listing page shows.
const pageSize = 10

// parsePage reads the ?page query parameter, clamping to 1 on absence
// or garbage.
func parsePage(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// pageCount converts a total row count into the number of listing pages.
func pageCount(total int) int {
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		pages = 1
	}
	return pages
}

// visitorUserID returns the logged-in user's id, or nil for guests.
// Ratings and view tracking key on this together with the client IP.
func visitorUserID(r *http.Request) *int64 {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		return nil
	}
	id := sess.UserID
	return &id
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode json response failed", "error", err)
	}
}

// errorPage renders the shared error template with the given status.
func errorPage(rn *render.Renderer, w http.ResponseWriter, r *http.Request, status int, message string) {
	rn.PageStatus(w, r, "error", status, &render.PageData{
		Title: http.StatusText(status),
		Data: map[string]any{
			"Code":    status,
			"Message": message,
		},
	})
}

func notFound(rn *render.Renderer, w http.ResponseWriter, r *http.Request) {
	errorPage(rn, w, r, http.StatusNotFound, "The page you are looking for does not exist.")
}

func serverError(rn *render.Renderer, w http.ResponseWriter, r *http.Request) {
	errorPage(rn, w, r, http.StatusInternalServerError, "Something went wrong on our side. Please try again later.")
}

// NotFound returns the handler the router installs for unmatched routes.
func NotFound(rn *render.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		notFound(rn, w, r)
	}
}

// MethodNotAllowed returns the handler for known routes hit with the
// wrong verb.
func MethodNotAllowed(rn *render.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		errorPage(rn, w, r, http.StatusMethodNotAllowed, "That method is not allowed here.")
	}
}

// flashes drains pending one-time messages for this visitor.
func flashes(s *session.Store, r *http.Request) []string {
	return s.PopFlashes(r.Context(), r)
}
