// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package botcheck classifies visits as automated traffic. Classification
// is heuristic and errs toward "bot": a false positive only suppresses a
// notification, the visit itself is always recorded.
package botcheck

import (
	"strings"

	"github.com/mileusna/useragent"

	"github.com/arajbanshi/folio/internal/model"
)

// uaKeywords are case-insensitive substrings of the User-Agent that mark
// automated clients.
var uaKeywords = []string{
	"bot",
	"crawler",
	"spider",
	"headless",
	"phantomjs",
	"selenium",
	"puppeteer",
	"playwright",
}

// IsBot reports whether a visit looks automated, based on the raw
// User-Agent header and optional client-reported device metadata. Any
// one of four independent signals is enough: a keyword in the
// User-Agent, the useragent parser's bot flag (catches keyword-free
// crawlers like facebookexternalhit), a device family of "other" or
// containing "bot", or a browser family containing "headless" or
// "bot". Missing metadata never counts as a bot signal.
func IsBot(rawUA string, deviceInfo map[string]any) bool {
	lowered := strings.ToLower(rawUA)
	for _, kw := range uaKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	if rawUA != "" && useragent.Parse(rawUA).Bot {
		return true
	}

	if device := strings.ToLower(model.DeviceFamily(deviceInfo, "device")); device != "" {
		if device == "other" || strings.Contains(device, "bot") {
			return true
		}
	}
	if browser := strings.ToLower(model.DeviceFamily(deviceInfo, "browser")); browser != "" {
		if strings.Contains(browser, "headless") || strings.Contains(browser, "bot") {
			return true
		}
	}

	return false
}
