// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"bytes"
	"html/template"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mozillazg/go-unidecode"
	"github.com/yuin/goldmark"
)

// htmlSanitizer strips anything outside the safe user-generated-content
// tag set from rendered markdown.
var htmlSanitizer = bluemonday.UGCPolicy()

var (
	slugDisallowed  = regexp.MustCompile(`[^a-z0-9-]+`)
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// RenderMarkdown converts profile markdown (the bio, project blurbs) to
// sanitized HTML safe to inject into templates.
func RenderMarkdown(source string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return template.HTML(htmlSanitizer.SanitizeBytes(buf.Bytes())), nil //nolint:gosec // sanitized above
}

// Slugify converts a title to a URL- and filename-friendly slug:
// ASCII transliteration, lowercase, hyphens for spaces, nothing but
// [a-z0-9-].
func Slugify(s string) string {
	result := unidecode.Unidecode(s)
	result = strings.ToLower(result)
	result = strings.ReplaceAll(result, " ", "-")
	result = slugDisallowed.ReplaceAllString(result, "")
	result = multipleHyphens.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}
