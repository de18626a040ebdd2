// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func csrfHandler() http.Handler {
	return CSRF(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

// csrfToken fetches a page and returns the token cookie the middleware
// issued for it.
func csrfToken(t *testing.T, handler http.Handler) *http.Cookie {
	t.Helper()
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/login/", nil))
	for _, c := range rr.Result().Cookies() {
		if c.Name == CSRFCookieName {
			return c
		}
	}
	t.Fatal("no CSRF cookie issued on GET")
	return nil
}

func TestCSRFIssuesCookieOnFirstVisit(t *testing.T) {
	handler := csrfHandler()
	cookie := csrfToken(t, handler)

	if len(cookie.Value) != csrfTokenLength*2 {
		t.Errorf("token length: got %d hex chars, want %d", len(cookie.Value), csrfTokenLength*2)
	}
	if cookie.SameSite != http.SameSiteStrictMode {
		t.Errorf("SameSite: got %v, want Strict", cookie.SameSite)
	}
	if cookie.HttpOnly {
		t.Error("cookie must stay readable for the rating/follow scripts")
	}

	// A returning visitor keeps their token.
	req := httptest.NewRequest(http.MethodGet, "/articles/", nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	for _, c := range rr.Result().Cookies() {
		if c.Name == CSRFCookieName && c.Value != cookie.Value {
			t.Error("existing token was replaced")
		}
	}
}

func TestCSRFRejectsFormPostWithoutToken(t *testing.T) {
	handler := csrfHandler()
	cookie := csrfToken(t, handler)

	form := url.Values{"identifier": {"writer"}, "password": {"secret"}}
	req := httptest.NewRequest(http.MethodPost, "/login/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("POST without token: got %d, want 403", rr.Code)
	}
}

func TestCSRFAcceptsHeaderToken(t *testing.T) {
	handler := csrfHandler()
	cookie := csrfToken(t, handler)

	// The AJAX path: rating and follow toggles send the header.
	req := httptest.NewRequest(http.MethodPost, "/rating/", strings.NewReader("{}"))
	req.AddCookie(cookie)
	req.Header.Set(CSRFHeaderName, cookie.Value)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("POST with header token: got %d, want 200", rr.Code)
	}
}

func TestCSRFAcceptsHiddenFormField(t *testing.T) {
	handler := csrfHandler()
	cookie := csrfToken(t, handler)

	form := url.Values{CSRFFormField: {cookie.Value}, "content": {"a comment"}}
	req := httptest.NewRequest(http.MethodPost, "/articles/1/comments/create/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("POST with form token: got %d, want 200", rr.Code)
	}
}

func TestCSRFRejectsForeignToken(t *testing.T) {
	handler := csrfHandler()
	cookie := csrfToken(t, handler)

	req := httptest.NewRequest(http.MethodPost, "/rating/", nil)
	req.AddCookie(cookie)
	req.Header.Set(CSRFHeaderName, strings.Repeat("f", csrfTokenLength*2))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("POST with mismatched token: got %d, want 403", rr.Code)
	}
}

func TestCSRFSafeMethodsSkipValidation(t *testing.T) {
	handler := csrfHandler()

	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		req := httptest.NewRequest(method, "/articles/hello-world/", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Errorf("%s: got %d, want 200", method, rr.Code)
		}
	}
}

func TestCSRFGuardsAllMutatingMethods(t *testing.T) {
	handler := csrfHandler()
	cookie := csrfToken(t, handler)

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		req := httptest.NewRequest(method, "/profile/edit/", nil)
		req.AddCookie(cookie)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusForbidden {
			t.Errorf("%s without token: got %d, want 403", method, rr.Code)
		}
	}
}

func TestGetCSRFToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := GetCSRFToken(req); got != "" {
		t.Errorf("no cookie: got %q, want empty", got)
	}

	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "abc123"})
	if got := GetCSRFToken(req); got != "abc123" {
		t.Errorf("token: got %q, want abc123", got)
	}
}
