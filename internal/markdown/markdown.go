// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown converts Markdown source text into HTML using
// goldmark. Article bodies written by staff pass raw HTML through;
// visitor-submitted text (comments, bios) is additionally sanitized
// with bluemonday.
package markdown

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// md is the configured goldmark instance, reused across calls.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,         // GitHub-Flavored Markdown: tables, strikethrough, autolinks, task lists
		extension.Typographer, // Smart quotes and dashes
		highlighting.NewHighlighting( // Syntax highlighting for fenced code blocks
			highlighting.WithStyle("monokai"),
			highlighting.WithFormatOptions(),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(), // Auto-generate heading IDs for anchors
	),
	goldmark.WithRendererOptions(
		html.WithUnsafe(), // Raw HTML blocks are allowed for staff-authored articles
	),
)

// ugcPolicy strips everything bluemonday does not allow for
// user-generated content. Code blocks keep their highlight classes.
var ugcPolicy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").OnElements("code", "pre", "span", "div")
	return p
}()

// ToHTML converts Markdown source into HTML. Raw HTML embedded in the
// Markdown is passed through unchanged. Use only for staff-authored
// content.
func ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ToSafeHTML converts visitor-submitted Markdown into sanitized HTML.
// Script tags, event handlers and other active content are removed.
func ToSafeHTML(source string) (string, error) {
	rendered, err := ToHTML(source)
	if err != nil {
		return "", err
	}
	return ugcPolicy.Sanitize(rendered), nil
}
