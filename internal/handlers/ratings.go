// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"inkwell/internal/middleware"
	"inkwell/internal/store"
)

// Ratings handles the like/dislike toggle endpoint, called from the
// article page script.
type Ratings struct {
	ratings  *store.RatingStore
	articles *store.ArticleStore
}

// NewRatings creates the rating handler group.
func NewRatings(ratings *store.RatingStore, articles *store.ArticleStore) *Ratings {
	return &Ratings{ratings: ratings, articles: articles}
}

// ratingRequest is the JSON body of a toggle call.
type ratingRequest struct {
	ArticleID int64 `json:"article_id"`
	Value     int   `json:"value"`
}

// Toggle records, flips or withdraws a vote for the caller's IP (and
// user, when logged in) and returns the new total.
func (h *Ratings) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ratingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body"})
		return
	}

	article, err := h.articles.FindByID(ctx, req.ArticleID)
	if err != nil {
		slog.Error("find article failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal error"})
		return
	}
	if article == nil || !article.IsPublished() {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "article not found"})
		return
	}

	outcome, sum, err := h.ratings.Toggle(ctx, article.ID, visitorUserID(r), req.Value, middleware.ClientIP(r))
	if errors.Is(err, store.ErrInvalidRating) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "value must be 1 or -1"})
		return
	}
	if err != nil {
		slog.Error("toggle rating failed", "error", err, "article_id", article.ID)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":     string(outcome),
		"rating_sum": sum,
	})
}
