// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"inkwell/internal/cache"
	"inkwell/internal/handlers"
	"inkwell/internal/render"
	"inkwell/internal/session"
)

// testRouter builds the router with placeholder dependencies. Routes
// that would hit the database are only walked, never invoked.
func testRouter(t *testing.T) chi.Router {
	t.Helper()

	renderer, err := render.New()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	sessions := session.NewStore(client)

	return New(Deps{
		Renderer: renderer,
		Sessions: sessions,
		Presence: cache.NewPresence(client),
		Articles: handlers.NewArticles(renderer, sessions, nil, nil, nil, nil, nil, nil, nil, nil, ""),
		Comments: handlers.NewComments(renderer, sessions, nil, nil),
		Ratings:  handlers.NewRatings(nil, nil),
		Auth:     handlers.NewAuth(renderer, sessions, nil, nil, nil, ""),
		Profiles: handlers.NewProfiles(renderer, sessions, nil, nil, nil, nil),
		Feedback: handlers.NewFeedback(renderer, sessions, nil, nil, ""),
	})
}

func TestRouteTable(t *testing.T) {
	r := testRouter(t)

	routes := map[string]bool{}
	err := chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes[method+" "+route] = true
		return nil
	})
	if err != nil {
		t.Fatalf("walk routes: %v", err)
	}

	for _, want := range []string{
		"GET /",
		"GET /articles/",
		"GET /articles/{slug}/",
		"GET /articles/create/",
		"POST /articles/create/",
		"GET /articles/{slug}/update/",
		"POST /articles/{slug}/update/",
		"GET /articles/{slug}/delete/",
		"POST /articles/{slug}/delete/",
		"POST /articles/{id}/comments/create/",
		"GET /category/{slug}/",
		"GET /articles/tags/{tag}/",
		"GET /search/",
		"GET /articles/signed/",
		"POST /rating/",
		"GET /register/",
		"POST /register/",
		"GET /confirm/{uidb64}/{token}/",
		"GET /email-confirmation-sent/",
		"GET /email-confirmed/",
		"GET /email-confirmation-failed/",
		"GET /login/",
		"POST /login/",
		"POST /logout/",
		"GET /password-change/",
		"POST /password-change/",
		"GET /password-reset/",
		"POST /password-reset/",
		"GET /set-new-password/{uidb64}/{token}/",
		"POST /set-new-password/{uidb64}/{token}/",
		"GET /profile/",
		"GET /profile/edit/",
		"POST /profile/edit/",
		"GET /profile/{slug}/",
		"GET /profile/{slug}/followers/",
		"GET /profile/{slug}/following/",
		"POST /profile/{slug}/follow/",
		"GET /feedback/",
		"POST /feedback/",
		"GET /sitemap.xml",
		"GET /health",
	} {
		if !routes[want] {
			t.Errorf("route %s not registered", want)
		}
	}
}

func TestHealth(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "ok") {
		t.Errorf("unexpected body: %s", rr.Body.String())
	}
}

func TestStaticAssetsServed(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/static/css/site.css", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.Contains(ct, "text/css") {
		t.Errorf("content type: got %q", ct)
	}
}
