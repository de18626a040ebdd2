// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/cache"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/render"
	"inkwell/internal/session"
	"inkwell/internal/store"
)

// Profiles groups the public profile pages, the follow toggle and the
// profile editor.
type Profiles struct {
	renderer *render.Renderer
	sessions *session.Store
	users    *store.UserStore
	profiles *store.ProfileStore
	articles *store.ArticleStore
	presence *cache.Presence
}

// NewProfiles creates the profile handler group.
func NewProfiles(renderer *render.Renderer, sessions *session.Store, users *store.UserStore, profiles *store.ProfileStore, articles *store.ArticleStore, presence *cache.Presence) *Profiles {
	return &Profiles{
		renderer: renderer,
		sessions: sessions,
		users:    users,
		profiles: profiles,
		articles: articles,
		presence: presence,
	}
}

// View renders a public profile: bio, avatar, presence, follow counts
// and the author's published articles.
func (h *Profiles) View(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profile, err := h.profiles.FindBySlug(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		slog.Error("find profile failed", "error", err)
		serverError(h.renderer, w, r)
		return
	}
	if profile == nil {
		notFound(h.renderer, w, r)
		return
	}

	if err := h.profiles.Counts(ctx, profile); err != nil {
		slog.Error("profile counts failed", "error", err)
	}

	user, err := h.users.FindByID(ctx, profile.UserID)
	if err != nil {
		slog.Error("find user failed", "error", err)
		serverError(h.renderer, w, r)
		return
	}
	fullName := ""
	if user != nil && user.FullName() != user.Username {
		fullName = user.FullName()
	}

	sess := middleware.SessionFromCtx(ctx)
	isSelf := sess != nil && sess.UserID == profile.UserID

	following := false
	if sess != nil && !isSelf {
		own, err := h.profiles.FindByUserID(ctx, sess.UserID)
		if err == nil && own != nil {
			following, _ = h.profiles.IsFollowing(ctx, own.ID, profile.ID)
		}
	}

	articles, err := h.articles.ListByAuthors(ctx, []int64{profile.UserID}, 20, 0)
	if err != nil {
		slog.Error("list author articles failed", "error", err)
	}

	online := h.presence.IsOnline(ctx, profile.UserID)
	var lastSeen time.Time
	if !online {
		lastSeen = h.presence.LastSeen(ctx, profile.UserID)
	}

	h.renderer.Page(w, r, "profile", &render.PageData{
		Title:   profile.Username,
		Flashes: flashes(h.sessions, r),
		Data: map[string]any{
			"Profile":   profile,
			"FullName":  fullName,
			"Online":    online,
			"LastSeen":  lastSeen,
			"IsSelf":    isSelf,
			"Following": following,
			"Articles":  articles,
		},
	})
}

// Self redirects /profile/ to the logged-in user's own profile page.
func (h *Profiles) Self(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := middleware.SessionFromCtx(ctx)

	profile, err := h.profiles.FindByUserID(ctx, sess.UserID)
	if err != nil || profile == nil {
		slog.Error("find own profile failed", "error", err, "user_id", sess.UserID)
		serverError(h.renderer, w, r)
		return
	}
	http.Redirect(w, r, profile.URL(), http.StatusSeeOther)
}

// Followers lists the accounts following a profile.
func (h *Profiles) Followers(w http.ResponseWriter, r *http.Request) {
	h.edgeList(w, r, "Followers of", h.profiles.Followers)
}

// Following lists the accounts a profile follows.
func (h *Profiles) Following(w http.ResponseWriter, r *http.Request) {
	h.edgeList(w, r, "Followed by", h.profiles.Following)
}

func (h *Profiles) edgeList(w http.ResponseWriter, r *http.Request, headingPrefix string, fetch func(context.Context, int64) ([]models.Profile, error)) {
	ctx := r.Context()

	profile, err := h.profiles.FindBySlug(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		slog.Error("find profile failed", "error", err)
		serverError(h.renderer, w, r)
		return
	}
	if profile == nil {
		notFound(h.renderer, w, r)
		return
	}

	list, err := fetch(ctx, profile.ID)
	if err != nil {
		slog.Error("profile edge list failed", "error", err)
		serverError(h.renderer, w, r)
		return
	}

	h.renderer.Page(w, r, "profiles", &render.PageData{
		Title: profile.Username,
		Data: map[string]any{
			"Heading":  headingPrefix + " " + profile.Username,
			"Profiles": list,
		},
	})
}

// ToggleFollow follows or unfollows a profile and returns the new
// state as JSON for the profile page script.
func (h *Profiles) ToggleFollow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := middleware.SessionFromCtx(ctx)

	target, err := h.profiles.FindBySlug(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		slog.Error("find profile failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal error"})
		return
	}
	if target == nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "profile not found"})
		return
	}

	own, err := h.profiles.FindByUserID(ctx, sess.UserID)
	if err != nil || own == nil {
		slog.Error("find own profile failed", "error", err, "user_id", sess.UserID)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal error"})
		return
	}
	if own.ID == target.ID {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "cannot follow yourself"})
		return
	}

	following, err := h.profiles.ToggleFollow(ctx, own.ID, target.ID)
	if err != nil {
		slog.Error("toggle follow failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal error"})
		return
	}

	status, message := "unfollowed", "You are no longer following "+target.Username+"."
	if following {
		status, message = "followed", "You are now following "+target.Username+"."
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"username":         target.Username,
		"slug":             target.Slug,
		"get_absolute_url": target.URL(),
		"avatar":           target.AvatarURL(),
		"status":           status,
		"message":          message,
		"following":        following,
	})
}

// EditPage renders the profile editor pre-filled with the current
// account and profile fields.
func (h *Profiles) EditPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := middleware.SessionFromCtx(ctx)

	user, err := h.users.FindByID(ctx, sess.UserID)
	if err != nil || user == nil {
		slog.Error("find user failed", "error", err, "user_id", sess.UserID)
		serverError(h.renderer, w, r)
		return
	}
	profile, err := h.profiles.FindByUserID(ctx, sess.UserID)
	if err != nil || profile == nil {
		slog.Error("find own profile failed", "error", err, "user_id", sess.UserID)
		serverError(h.renderer, w, r)
		return
	}

	h.editForm(w, r, profileEditData(user, profile))
}

// EditSubmit writes the user and profile halves of the form in one
// transaction.
func (h *Profiles) EditSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := middleware.SessionFromCtx(ctx)

	user, err := h.users.FindByID(ctx, sess.UserID)
	if err != nil || user == nil {
		slog.Error("find user failed", "error", err, "user_id", sess.UserID)
		serverError(h.renderer, w, r)
		return
	}
	profile, err := h.profiles.FindByUserID(ctx, sess.UserID)
	if err != nil || profile == nil {
		slog.Error("find own profile failed", "error", err, "user_id", sess.UserID)
		serverError(h.renderer, w, r)
		return
	}

	bio := r.FormValue("bio")
	if len(bio) > maxBioLen {
		data := profileEditData(user, profile)
		data["Error"] = "Bio is too long (max 5,000 characters)."
		h.editForm(w, r, data)
		return
	}

	in := store.ProfileUpdateInput{
		Username:  user.Username,
		Email:     user.Email,
		FirstName: strings.TrimSpace(r.FormValue("first_name")),
		LastName:  strings.TrimSpace(r.FormValue("last_name")),
		Slug:      profile.Slug,
		Bio:       bio,
	}
	if avatar := strings.TrimSpace(r.FormValue("avatar")); avatar != "" {
		in.Avatar = &avatar
	}
	if raw := r.FormValue("birth_date"); raw != "" {
		bd, err := time.Parse("2006-01-02", raw)
		if err != nil {
			data := profileEditData(user, profile)
			data["Error"] = "Enter the birth date as YYYY-MM-DD."
			h.editForm(w, r, data)
			return
		}
		in.BirthDate = &bd
	}

	if err := h.users.UpdateWithProfile(ctx, sess.UserID, in); err != nil {
		slog.Error("profile update failed", "error", err, "user_id", sess.UserID)
		serverError(h.renderer, w, r)
		return
	}

	h.sessions.AddFlash(ctx, w, r, "Profile saved.")
	http.Redirect(w, r, profile.URL(), http.StatusSeeOther)
}

func (h *Profiles) editForm(w http.ResponseWriter, r *http.Request, data map[string]any) {
	h.renderer.Page(w, r, "profile_edit", &render.PageData{
		Title: "Edit profile",
		Data:  data,
	})
}

func profileEditData(user *models.User, profile *models.Profile) map[string]any {
	avatar := ""
	if profile.Avatar != nil {
		avatar = *profile.Avatar
	}
	birthDate := ""
	if profile.BirthDate != nil {
		birthDate = profile.BirthDate.Format("2006-01-02")
	}
	return map[string]any{
		"FirstName": user.FirstName,
		"LastName":  user.LastName,
		"Avatar":    avatar,
		"Bio":       profile.Bio,
		"BirthDate": birthDate,
		"Error":     "",
	}
}
