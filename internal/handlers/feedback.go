// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"inkwell/internal/mailer"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/render"
	"inkwell/internal/session"
	"inkwell/internal/store"
	"inkwell/internal/tasks"
)

// Feedback handles the contact form. Submissions are stored and a
// notification email to the site admin is queued.
type Feedback struct {
	renderer   *render.Renderer
	sessions   *session.Store
	feedback   *store.FeedbackStore
	queue      *tasks.Queue
	adminEmail string
}

// NewFeedback creates the feedback handler group.
func NewFeedback(renderer *render.Renderer, sessions *session.Store, feedback *store.FeedbackStore, queue *tasks.Queue, adminEmail string) *Feedback {
	return &Feedback{
		renderer:   renderer,
		sessions:   sessions,
		feedback:   feedback,
		queue:      queue,
		adminEmail: adminEmail,
	}
}

// Page renders the contact form, pre-filling the email for logged-in
// visitors.
func (h *Feedback) Page(w http.ResponseWriter, r *http.Request) {
	email := ""
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil {
		email = sess.Email
	}
	h.form(w, r, map[string]any{"Email": email})
}

// Submit stores the message and queues the admin notification.
func (h *Feedback) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subject := strings.TrimSpace(r.FormValue("subject"))
	email := strings.TrimSpace(r.FormValue("email"))
	content := strings.TrimSpace(r.FormValue("content"))

	if msg := validateFeedback(subject, email, content); msg != "" {
		h.form(w, r, map[string]any{
			"Subject": subject,
			"Email":   email,
			"Content": content,
			"Error":   msg,
		})
		return
	}

	ip := middleware.ClientIP(r)
	fb := &models.Feedback{
		Subject:   subject,
		Email:     email,
		Content:   content,
		IPAddress: &ip,
	}
	if sess := middleware.SessionFromCtx(ctx); sess != nil {
		id := sess.UserID
		fb.UserID = &id
	}

	if _, err := h.feedback.Create(ctx, fb); err != nil {
		slog.Error("store feedback failed", "error", err)
		serverError(h.renderer, w, r)
		return
	}

	mailSubject, body := mailer.FeedbackBody(subject, email, content, ip)
	if err := h.queue.EnqueueEmail(ctx, tasks.KindFeedbackEmail, h.adminEmail, mailSubject, body); err != nil {
		slog.Error("queue feedback email failed", "error", err)
	}

	h.sessions.AddFlash(ctx, w, r, "Thanks, your message has been sent.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Feedback) form(w http.ResponseWriter, r *http.Request, data map[string]any) {
	base := map[string]any{"Subject": "", "Email": "", "Content": "", "Error": ""}
	for k, v := range data {
		base[k] = v
	}
	h.renderer.Page(w, r, "feedback", &render.PageData{
		Title: "Contact",
		Data:  base,
	})
}
