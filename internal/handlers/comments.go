// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/middleware"
	"inkwell/internal/render"
	"inkwell/internal/session"
	"inkwell/internal/store"
)

// Comments handles posting comments and replies.
type Comments struct {
	renderer *render.Renderer
	sessions *session.Store
	comments *store.CommentStore
	articles *store.ArticleStore
}

// NewComments creates the comment handler group.
func NewComments(renderer *render.Renderer, sessions *session.Store, comments *store.CommentStore, articles *store.ArticleStore) *Comments {
	return &Comments{
		renderer: renderer,
		sessions: sessions,
		comments: comments,
		articles: articles,
	}
}

// Create posts a comment (or a reply, when parent_id is set). Plain
// form posts are redirected back to the article; XMLHttpRequest
// submissions get a JSON answer instead.
func (h *Comments) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := middleware.SessionFromCtx(ctx)
	ajax := r.Header.Get("X-Requested-With") == "XMLHttpRequest"

	articleID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.reject(w, r, ajax, http.StatusNotFound, "Article not found.")
		return
	}

	article, err := h.articles.FindByID(ctx, articleID)
	if err != nil {
		slog.Error("find article failed", "error", err)
		serverError(h.renderer, w, r)
		return
	}
	if article == nil {
		h.reject(w, r, ajax, http.StatusNotFound, "Article not found.")
		return
	}

	var parentID *int64
	if raw := r.FormValue("parent_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.reject(w, r, ajax, http.StatusNotFound, "Article not found.")
			return
		}
		parentID = &id
	}

	comment, err := h.comments.Create(ctx, article.ID, sess.UserID, r.FormValue("content"), parentID)
	var msg string
	switch {
	case errors.Is(err, store.ErrCommentEmpty):
		msg = "Comments cannot be empty."
	case errors.Is(err, store.ErrCommentTooLong):
		msg = "That comment is too long."
	case errors.Is(err, store.ErrParentMismatch):
		msg = "The comment you replied to no longer exists."
	case err != nil:
		slog.Error("create comment failed", "error", err, "article_id", article.ID)
		serverError(h.renderer, w, r)
		return
	}

	if ajax {
		if msg != "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"status": "error", "message": msg})
			return
		}
		// Echo the stored comment so the page script can insert it
		// into the right thread without reloading.
		writeJSON(w, http.StatusOK, map[string]any{
			"status":           "ok",
			"id":               comment.ID,
			"content":          comment.Content,
			"author":           comment.AuthorUsername,
			"avatar":           comment.AuthorAvatar,
			"created_at":       comment.CreatedAt,
			"parent_id":        comment.ParentID,
			"get_absolute_url": article.URL() + "#comment-" + strconv.FormatInt(comment.ID, 10),
		})
		return
	}

	if msg != "" {
		h.sessions.AddFlash(ctx, w, r, msg)
	} else {
		h.sessions.AddFlash(ctx, w, r, "Comment posted.")
	}
	http.Redirect(w, r, article.URL(), http.StatusSeeOther)
}

// reject answers a bad comment request either as JSON or with the
// regular error page.
func (h *Comments) reject(w http.ResponseWriter, r *http.Request, ajax bool, code int, msg string) {
	if ajax {
		writeJSON(w, code, map[string]any{"status": "error", "message": msg})
		return
	}
	errorPage(h.renderer, w, r, code, msg)
}
