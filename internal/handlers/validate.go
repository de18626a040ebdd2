// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Validation limits for form fields.
const (
	maxUsernameLen  = 150
	minPasswordLen  = 8
	maxTitleLen     = 300
	maxShortLen     = 1_000
	maxBodyLen      = 100_000
	maxBioLen       = 5_000
	maxSubjectLen   = 300
	maxFeedbackLen  = 10_000
)

// validateRegistration checks the registration form and returns the
// first error found, or "".
func validateRegistration(username, email, password, password2 string) string {
	username = strings.TrimSpace(username)
	if username == "" {
		return "Username is required."
	}
	if utf8.RuneCountInString(username) > maxUsernameLen {
		return "Username is too long (max 150 characters)."
	}
	for _, r := range username {
		if !isUsernameRune(r) {
			return "Username may only contain letters, digits, dots, dashes and underscores."
		}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "Enter a valid email address."
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return "Password must be at least 8 characters."
	}
	if password != password2 {
		return "The two passwords do not match."
	}
	return ""
}

func isUsernameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '.', r == '-', r == '_':
		return true
	}
	return false
}

// validatePasswordPair checks a new-password form.
func validatePasswordPair(password, password2 string) string {
	if utf8.RuneCountInString(password) < minPasswordLen {
		return "Password must be at least 8 characters."
	}
	if password != password2 {
		return "The two passwords do not match."
	}
	return ""
}

// validateArticle checks the article create/edit form.
func validateArticle(title, shortDesc, body string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	if utf8.RuneCountInString(shortDesc) > maxShortLen {
		return "Short description is too long (max 1,000 characters)."
	}
	if strings.TrimSpace(body) == "" {
		return "Body is required."
	}
	if utf8.RuneCountInString(body) > maxBodyLen {
		return "Body is too long (max 100,000 characters)."
	}
	return ""
}

// validateFeedback checks the contact form.
func validateFeedback(subject, email, content string) string {
	if strings.TrimSpace(subject) == "" {
		return "Subject is required."
	}
	if utf8.RuneCountInString(subject) > maxSubjectLen {
		return "Subject is too long (max 300 characters)."
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "Enter a valid email address."
	}
	if strings.TrimSpace(content) == "" {
		return "Message is required."
	}
	if utf8.RuneCountInString(content) > maxFeedbackLen {
		return "Message is too long (max 10,000 characters)."
	}
	return ""
}
