// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package mailer

import "fmt"

// ActivationBody renders the account confirmation email. The link is
// valid for two days and works only while the account is inactive.
func ActivationBody(username, link string) (subject, body string) {
	subject = "Confirm your account"
	body = fmt.Sprintf(`Hello %s,

Thanks for registering. Please confirm your email address by opening
the link below:

%s

The link expires in 48 hours. If you did not register, ignore this
message and the account will stay inactive.
`, username, link)
	return subject, body
}

// PasswordResetBody renders the password reset email.
func PasswordResetBody(username, link string) (subject, body string) {
	subject = "Reset your password"
	body = fmt.Sprintf(`Hello %s,

Someone requested a password reset for your account. To choose a new
password, open the link below:

%s

The link expires in 2 hours and stops working after the first use. If
you did not request this, you can safely ignore it.
`, username, link)
	return subject, body
}

// FeedbackBody renders the administrator's copy of a contact-form
// submission.
func FeedbackBody(subject, email, content, ip string) (mailSubject, body string) {
	mailSubject = "New feedback: " + subject
	body = fmt.Sprintf(`New feedback was submitted.

From:    %s
IP:      %s
Subject: %s

%s
`, email, ip, subject, content)
	return mailSubject, body
}
