// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package tracker

import (
	"fmt"
	"strings"

	"github.com/mileusna/useragent"
)

// summaries are the human-readable strings derived from the User-Agent
// header and optional client-reported metadata. They are computed once
// at recording time and stored denormalized on the visit.
type summaries struct {
	Device  string
	OS      string
	Browser string
	Display string
}

func summarize(rawUA string, info map[string]any) summaries {
	ua := useragent.Parse(rawUA)

	return summaries{
		Device:  deviceSummary(ua),
		OS:      joinNonEmpty(ua.OS, ua.OSVersion),
		Browser: joinNonEmpty(ua.Name, ua.Version),
		Display: displaySummary(info),
	}
}

func deviceSummary(ua useragent.UserAgent) string {
	var kind string
	switch {
	case ua.Bot:
		kind = "Bot"
	case ua.Mobile:
		kind = "Mobile"
	case ua.Tablet:
		kind = "Tablet"
	case ua.Desktop:
		kind = "Desktop"
	default:
		kind = "Other"
	}
	if ua.Device != "" {
		return kind + " (" + ua.Device + ")"
	}
	return kind
}

// displaySummary renders the client-reported screen resolution, falling
// back to the viewport when no screen entry was sent.
func displaySummary(info map[string]any) string {
	if info == nil {
		return ""
	}
	if s := dimensions(info["screen"]); s != "" {
		return s
	}
	return dimensions(info["viewport"])
}

// dimensions accepts either a preformatted string ("1920x1080") or an
// object with numeric width/height, the two shapes the client script
// has been observed to send.
func dimensions(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case map[string]any:
		w, wok := numeric(v["width"])
		h, hok := numeric(v["height"])
		if wok && hok {
			return fmt.Sprintf("%dx%d", w, h)
		}
	}
	return ""
}

func numeric(val any) (int, bool) {
	switch v := val.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

// factKeys lists the metadata entries surfaced as additional facts, in
// display order.
var factKeys = []struct {
	key   string
	label string
}{
	{"platformDetails", "Platform"},
	{"language", "Language"},
	{"connection", "Connection"},
	{"username", "Username"},
}

// collectFacts extracts the ordered additional-facts list from client
// metadata. Unknown or non-scalar entries are skipped.
func collectFacts(info map[string]any) []string {
	if info == nil {
		return nil
	}

	var facts []string
	for _, fk := range factKeys {
		val, ok := info[fk.key]
		if !ok {
			continue
		}
		switch v := val.(type) {
		case string:
			if v != "" {
				facts = append(facts, fk.label+": "+v)
			}
		case map[string]any:
			if s := scalarFields(v); s != "" {
				facts = append(facts, fk.label+": "+s)
			}
		}
	}
	return facts
}

// scalarFields flattens a small metadata object ("effectiveType: 4g,
// downlink: 10") for display. Key order follows the client payload as
// decoded, so only stable single-key objects render predictably; that
// is the common case (connection.effectiveType).
func scalarFields(obj map[string]any) string {
	if len(obj) == 1 {
		for _, v := range obj {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	var parts []string
	for _, key := range []string{"effectiveType", "type", "downlink", "rtt"} {
		if v, ok := obj[key]; ok {
			parts = append(parts, fmt.Sprintf("%s: %v", key, v))
		}
	}
	return strings.Join(parts, ", ")
}

func joinNonEmpty(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
