// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// Inkwell blog. Public pages, authenticated actions and the JSON
// toggle endpoints share one Chi router with layered route groups.
package router

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/cache"
	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
	"inkwell/internal/render"
	"inkwell/internal/session"
	"inkwell/web"
)

// Deps carries everything the router wires together.
type Deps struct {
	Renderer *render.Renderer
	Sessions *session.Store
	Presence *cache.Presence

	Articles *handlers.Articles
	Comments *handlers.Comments
	Ratings  *handlers.Ratings
	Auth     *handlers.Auth
	Profiles *handlers.Profiles
	Feedback *handlers.Feedback
}

// New creates the configured Chi router with all middleware and route
// groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(d.Sessions))
	r.Use(middleware.TrackPresence(d.Presence))
	r.Use(middleware.CSRF)

	r.NotFound(handlers.NotFound(d.Renderer))
	r.MethodNotAllowed(handlers.MethodNotAllowed(d.Renderer))

	// Embedded static assets.
	staticFS, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		panic(err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Health check, no session or CSRF needed upstream of it.
	r.Get("/health", healthHandler)
	r.Get("/sitemap.xml", d.Articles.Sitemap)

	// Public pages.
	r.Get("/", d.Articles.Home)
	r.Get("/articles/", d.Articles.Home)
	r.Get("/category/{slug}/", d.Articles.Category)
	r.Get("/articles/tags/{tag}/", d.Articles.Tag)
	r.Get("/search/", d.Articles.Search)
	r.Get("/feedback/", d.Feedback.Page)
	r.Post("/feedback/", d.Feedback.Submit)

	// Guests may vote; the one-per-IP rule does the gatekeeping.
	r.Post("/rating/", d.Ratings.Toggle)

	// Auth flows get a tighter rate limit to slow down guessing.
	r.Group(func(r chi.Router) {
		authLimiter := middleware.NewRateLimiter(20, time.Minute)
		r.Use(authLimiter.Middleware)

		r.Get("/register/", d.Auth.RegisterPage)
		r.Post("/register/", d.Auth.RegisterSubmit)
		r.Get("/confirm/{uidb64}/{token}/", d.Auth.Confirm)
		r.Get("/login/", d.Auth.LoginPage)
		r.Post("/login/", d.Auth.LoginSubmit)
		r.Post("/logout/", d.Auth.Logout)
		r.Get("/password-reset/", d.Auth.PasswordResetPage)
		r.Post("/password-reset/", d.Auth.PasswordResetSubmit)
		r.Get("/set-new-password/{uidb64}/{token}/", d.Auth.PasswordResetConfirmPage)
		r.Post("/set-new-password/{uidb64}/{token}/", d.Auth.PasswordResetConfirmSubmit)
	})

	// Terminal pages for the confirmation flow.
	r.Get("/email-confirmation-sent/", d.Auth.ConfirmationSentPage)
	r.Get("/email-confirmed/", d.Auth.ConfirmedPage)
	r.Get("/email-confirmation-failed/", d.Auth.ConfirmationFailedPage)

	// Authoring requires a confirmed, logged-in account.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(d.Sessions))

		r.Get("/articles/create/", d.Articles.CreatePage)
		r.Post("/articles/create/", d.Articles.CreateSubmit)
		r.Get("/articles/{slug}/update/", d.Articles.EditPage)
		r.Post("/articles/{slug}/update/", d.Articles.EditSubmit)
		r.Get("/articles/{slug}/delete/", d.Articles.DeletePage)
		r.Post("/articles/{slug}/delete/", d.Articles.Delete)
		r.Post("/articles/{id}/comments/create/", d.Comments.Create)

		r.Get("/articles/signed/", d.Articles.Feed)

		r.Get("/password-change/", d.Auth.PasswordChangePage)
		r.Post("/password-change/", d.Auth.PasswordChangeSubmit)

		r.Get("/profile/", d.Profiles.Self)
		r.Get("/profile/edit/", d.Profiles.EditPage)
		r.Post("/profile/edit/", d.Profiles.EditSubmit)
		r.Post("/profile/{slug}/follow/", d.Profiles.ToggleFollow)
	})

	// Public profile pages. The fixed /profile/ routes above win over
	// the {slug} parameter.
	r.Get("/profile/{slug}/", d.Profiles.View)
	r.Get("/profile/{slug}/followers/", d.Profiles.Followers)
	r.Get("/profile/{slug}/following/", d.Profiles.Following)

	r.Get("/articles/{slug}/", d.Articles.Detail)

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
