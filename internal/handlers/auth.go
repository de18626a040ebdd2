// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/mailer"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/render"
	"inkwell/internal/session"
	"inkwell/internal/store"
	"inkwell/internal/tasks"
	"inkwell/internal/token"
)

// Auth groups registration, email confirmation, login/logout and the
// password-reset flow. Confirmation and reset emails are not sent
// inline; they are pushed onto the task queue and delivered by the
// background worker.
type Auth struct {
	renderer *render.Renderer
	sessions *session.Store
	users    *store.UserStore
	tokens   *token.Maker
	queue    *tasks.Queue
	siteURL  string
}

// NewAuth creates the auth handler group.
func NewAuth(renderer *render.Renderer, sessions *session.Store, users *store.UserStore, tokens *token.Maker, queue *tasks.Queue, siteURL string) *Auth {
	return &Auth{
		renderer: renderer,
		sessions: sessions,
		users:    users,
		tokens:   tokens,
		queue:    queue,
		siteURL:  siteURL,
	}
}

// RegisterPage renders the registration form.
func (a *Auth) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if middleware.SessionFromCtx(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	a.registerForm(w, r, map[string]any{})
}

// RegisterSubmit creates an inactive account and queues the activation
// email. The account cannot log in until the link is opened.
func (a *Auth) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	username := strings.TrimSpace(r.FormValue("username"))
	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))
	firstName := strings.TrimSpace(r.FormValue("first_name"))
	lastName := strings.TrimSpace(r.FormValue("last_name"))
	password := r.FormValue("password")

	retry := map[string]any{
		"Username":  username,
		"Email":     email,
		"FirstName": firstName,
		"LastName":  lastName,
	}

	if msg := validateRegistration(username, email, password, r.FormValue("password2")); msg != "" {
		retry["Error"] = msg
		a.registerForm(w, r, retry)
		return
	}

	taken, err := a.users.EmailTaken(ctx, email, username)
	if err != nil {
		slog.Error("email taken check failed", "error", err)
		serverError(a.renderer, w, r)
		return
	}
	if taken {
		retry["Error"] = "An account with that email or username already exists."
		a.registerForm(w, r, retry)
		return
	}

	user, err := a.users.Register(ctx, store.RegisterInput{
		Username:  username,
		Email:     email,
		Password:  password,
		FirstName: firstName,
		LastName:  lastName,
	})
	if err != nil {
		slog.Error("register failed", "error", err)
		serverError(a.renderer, w, r)
		return
	}

	if err := a.sendActivation(ctx, user); err != nil {
		slog.Error("queue activation email failed", "error", err, "user_id", user.ID)
	}

	http.Redirect(w, r, "/email-confirmation-sent/", http.StatusSeeOther)
}

// ConfirmationSentPage is the landing page after registration.
func (a *Auth) ConfirmationSentPage(w http.ResponseWriter, r *http.Request) {
	a.renderer.Page(w, r, "register_done", &render.PageData{
		Title: "Check your email",
		Data:  map[string]any{},
	})
}

// sendActivation queues the confirmation email. The token is bound to
// the account's email so it cannot be replayed for another address.
func (a *Auth) sendActivation(ctx context.Context, user *models.User) error {
	tok, err := a.tokens.Generate(user.ID, token.PurposeActivation, user.Email, token.ActivationTTL)
	if err != nil {
		return err
	}
	link := a.siteURL + "/confirm/" + token.EncodeUID(user.ID) + "/" + tok + "/"
	subject, body := mailer.ActivationBody(user.Username, link)
	return a.queue.Enqueue(ctx, tasks.KindActivationEmail, tasks.EmailPayload{
		To: user.Email, Subject: subject, Body: body,
	})
}

// Confirm activates an account from the emailed link and logs the new
// account in. The link is single-use: once the account is active a
// second visit lands on the failed page.
func (a *Auth) Confirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := token.DecodeUID(chi.URLParam(r, "uidb64"))
	if err != nil {
		http.Redirect(w, r, "/email-confirmation-failed/", http.StatusSeeOther)
		return
	}

	user, err := a.users.FindByID(ctx, userID)
	if err != nil {
		slog.Error("find user failed", "error", err)
		serverError(a.renderer, w, r)
		return
	}
	if user == nil {
		http.Redirect(w, r, "/email-confirmation-failed/", http.StatusSeeOther)
		return
	}

	if _, err := a.tokens.Verify(chi.URLParam(r, "token"), token.PurposeActivation, user.Email); err != nil {
		http.Redirect(w, r, "/email-confirmation-failed/", http.StatusSeeOther)
		return
	}

	activated, err := a.users.Activate(ctx, user.ID)
	if err != nil {
		slog.Error("activate failed", "error", err, "user_id", user.ID)
		serverError(a.renderer, w, r)
		return
	}
	if !activated {
		http.Redirect(w, r, "/email-confirmation-failed/", http.StatusSeeOther)
		return
	}

	if _, err := a.sessions.Create(ctx, w, &session.Data{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		IsStaff:  user.IsStaff,
	}); err != nil {
		slog.Error("session create failed", "error", err)
	}

	http.Redirect(w, r, "/email-confirmed/", http.StatusSeeOther)
}

// ConfirmedPage greets a freshly activated account.
func (a *Auth) ConfirmedPage(w http.ResponseWriter, r *http.Request) {
	loggedIn := middleware.SessionFromCtx(r.Context()) != nil
	a.confirmResult(w, r, "Account confirmed",
		"Your account is now active. Welcome aboard.", !loggedIn)
}

// ConfirmationFailedPage is the terminal page for bad, expired or
// already-used confirmation links.
func (a *Auth) ConfirmationFailedPage(w http.ResponseWriter, r *http.Request) {
	a.confirmResult(w, r, "Confirmation failed",
		"This confirmation link is invalid, has expired, or was already used. Register again to receive a new one.", false)
}

func (a *Auth) confirmResult(w http.ResponseWriter, r *http.Request, heading, message string, showLogin bool) {
	a.renderer.Page(w, r, "confirm", &render.PageData{
		Title: heading,
		Data: map[string]any{
			"Heading":   heading,
			"Message":   message,
			"ShowLogin": showLogin,
		},
	})
}

// LoginPage renders the login form.
func (a *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	if middleware.SessionFromCtx(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	a.renderer.Page(w, r, "login", &render.PageData{
		Title:   "Log in",
		Flashes: flashes(a.sessions, r),
		Data:    map[string]any{},
	})
}

// LoginSubmit authenticates by username or email. Unknown accounts,
// wrong passwords and unconfirmed accounts all get the same message.
func (a *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identifier := strings.TrimSpace(r.FormValue("identifier"))

	user, err := a.users.Authenticate(ctx, identifier, r.FormValue("password"))
	if err != nil {
		slog.Error("authenticate failed", "error", err)
		serverError(a.renderer, w, r)
		return
	}
	if user == nil {
		a.renderer.Page(w, r, "login", &render.PageData{
			Title: "Log in",
			Data: map[string]any{
				"Identifier": identifier,
				"Error":      "Invalid credentials, or the account has not been confirmed yet.",
			},
		})
		return
	}

	_, err = a.sessions.Create(ctx, w, &session.Data{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		IsStaff:  user.IsStaff,
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		serverError(a.renderer, w, r)
		return
	}
	if err := a.users.RecordLogin(ctx, user.ID); err != nil {
		slog.Error("record login failed", "error", err, "user_id", user.ID)
	}

	a.sessions.AddFlash(ctx, w, r, "Welcome back, "+user.Username+".")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout destroys the session and returns to the front page.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Error("session destroy failed", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// PasswordResetPage renders the request form.
func (a *Auth) PasswordResetPage(w http.ResponseWriter, r *http.Request) {
	a.renderer.Page(w, r, "password_reset", &render.PageData{
		Title: "Reset password",
		Data:  map[string]any{"Sent": false},
	})
}

// PasswordResetSubmit queues a reset email when the address matches an
// active account. The response is the same either way, so the form
// cannot be used to discover which addresses are registered.
func (a *Auth) PasswordResetSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))

	user, err := a.users.FindByIdentifier(ctx, email)
	if err != nil {
		slog.Error("find user failed", "error", err)
		serverError(a.renderer, w, r)
		return
	}

	if user != nil && user.CanAuthenticate() {
		if err := a.sendPasswordReset(ctx, user); err != nil {
			slog.Error("queue reset email failed", "error", err, "user_id", user.ID)
		}
	}

	a.renderer.Page(w, r, "password_reset", &render.PageData{
		Title: "Reset password",
		Data:  map[string]any{"Sent": true},
	})
}

// sendPasswordReset queues the reset email. The token is bound to the
// current password hash, so changing the password (through this link
// or otherwise) invalidates every outstanding link.
func (a *Auth) sendPasswordReset(ctx context.Context, user *models.User) error {
	tok, err := a.tokens.Generate(user.ID, token.PurposePasswordReset, user.PasswordHash, token.PasswordResetTTL)
	if err != nil {
		return err
	}
	link := a.siteURL + "/set-new-password/" + token.EncodeUID(user.ID) + "/" + tok + "/"
	subject, body := mailer.PasswordResetBody(user.Username, link)
	return a.queue.Enqueue(ctx, tasks.KindPasswordResetEmail, tasks.EmailPayload{
		To: user.Email, Subject: subject, Body: body,
	})
}

// PasswordResetConfirmPage validates the emailed link and shows the
// new-password form.
func (a *Auth) PasswordResetConfirmPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.resetUser(w, r); !ok {
		return
	}

	a.renderer.Page(w, r, "password_reset_confirm", &render.PageData{
		Title: "Choose a new password",
		Data: map[string]any{
			"Action": r.URL.Path,
		},
	})
}

// PasswordResetConfirmSubmit sets the new password. The token is
// checked again here: it went stale the moment the hash changed.
func (a *Auth) PasswordResetConfirmSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := a.resetUser(w, r)
	if !ok {
		return
	}

	password := r.FormValue("password")
	if msg := validatePasswordPair(password, r.FormValue("password2")); msg != "" {
		a.renderer.Page(w, r, "password_reset_confirm", &render.PageData{
			Title: "Choose a new password",
			Data: map[string]any{
				"Action": r.URL.Path,
				"Error":  msg,
			},
		})
		return
	}

	if err := a.users.SetPassword(ctx, user.ID, password); err != nil {
		slog.Error("set password failed", "error", err, "user_id", user.ID)
		serverError(a.renderer, w, r)
		return
	}

	a.sessions.AddFlash(ctx, w, r, "Password changed. You can log in now.")
	http.Redirect(w, r, "/login/", http.StatusSeeOther)
}

// PasswordChangePage renders the change-password form for the logged-in
// user.
func (a *Auth) PasswordChangePage(w http.ResponseWriter, r *http.Request) {
	a.renderer.Page(w, r, "password_change", &render.PageData{
		Title: "Change password",
		Data:  map[string]any{},
	})
}

// PasswordChangeSubmit verifies the current password and sets the new
// one. The session stays valid.
func (a *Auth) PasswordChangeSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess := middleware.SessionFromCtx(ctx)
	user, err := a.users.FindByID(ctx, sess.UserID)
	if err != nil || user == nil {
		slog.Error("find user failed", "error", err)
		serverError(a.renderer, w, r)
		return
	}

	fail := func(msg string) {
		a.renderer.Page(w, r, "password_change", &render.PageData{
			Title: "Change password",
			Data:  map[string]any{"Error": msg},
		})
	}

	if !a.users.CheckPassword(user, r.FormValue("current_password")) {
		fail("Your current password was entered incorrectly.")
		return
	}
	password := r.FormValue("password")
	if msg := validatePasswordPair(password, r.FormValue("password2")); msg != "" {
		fail(msg)
		return
	}

	if err := a.users.SetPassword(ctx, user.ID, password); err != nil {
		slog.Error("set password failed", "error", err, "user_id", user.ID)
		serverError(a.renderer, w, r)
		return
	}

	a.sessions.AddFlash(ctx, w, r, "Password changed.")
	http.Redirect(w, r, "/profile/", http.StatusSeeOther)
}

// resetUser resolves and verifies the uid/token pair in a reset link.
// On failure it renders the invalid-link page itself.
func (a *Auth) resetUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	ctx := r.Context()

	userID, err := token.DecodeUID(chi.URLParam(r, "uidb64"))
	if err != nil {
		a.confirmResult(w, r, "Invalid link", "This reset link is not valid.", false)
		return nil, false
	}

	user, err := a.users.FindByID(ctx, userID)
	if err != nil {
		slog.Error("find user failed", "error", err)
		serverError(a.renderer, w, r)
		return nil, false
	}
	if user == nil {
		a.confirmResult(w, r, "Invalid link", "This reset link is not valid.", false)
		return nil, false
	}

	if _, err := a.tokens.Verify(chi.URLParam(r, "token"), token.PurposePasswordReset, user.PasswordHash); err != nil {
		a.confirmResult(w, r, "Invalid link", "This reset link is invalid, has expired, or was already used.", false)
		return nil, false
	}

	return user, true
}

func (a *Auth) registerForm(w http.ResponseWriter, r *http.Request, data map[string]any) {
	base := map[string]any{
		"Username": "", "Email": "", "FirstName": "", "LastName": "", "Error": "",
	}
	for k, v := range data {
		base[k] = v
	}
	a.renderer.Page(w, r, "register", &render.PageData{
		Title: "Register",
		Data:  base,
	})
}
