// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package markdown

import (
	"strings"
	"testing"
)

func TestToHTML(t *testing.T) {
	out, err := ToHTML("# Heading\n\nSome **bold** text.")
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}
	if !strings.Contains(out, "<h1") || !strings.Contains(out, "<strong>bold</strong>") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestToHTMLPassesRawHTML(t *testing.T) {
	out, err := ToHTML(`<div class="callout">legacy html</div>`)
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}
	if !strings.Contains(out, `<div class="callout">`) {
		t.Errorf("raw HTML stripped from staff content: %s", out)
	}
}

func TestToSafeHTMLStripsScripts(t *testing.T) {
	out, err := ToSafeHTML("hello <script>alert(1)</script> <a href=\"javascript:boom()\">x</a>")
	if err != nil {
		t.Fatalf("ToSafeHTML: %v", err)
	}
	if strings.Contains(out, "<script") || strings.Contains(out, "javascript:") {
		t.Errorf("active content survived sanitization: %s", out)
	}
	if !strings.Contains(out, "hello") {
		t.Errorf("benign text lost: %s", out)
	}
}

func TestToSafeHTMLKeepsFormatting(t *testing.T) {
	out, err := ToSafeHTML("a list:\n\n- one\n- two\n\n```go\nfmt.Println()\n```")
	if err != nil {
		t.Fatalf("ToSafeHTML: %v", err)
	}
	if !strings.Contains(out, "<li>one</li>") {
		t.Errorf("list formatting lost: %s", out)
	}
	if !strings.Contains(out, "<pre") {
		t.Errorf("code block lost: %s", out)
	}
}
