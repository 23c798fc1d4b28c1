// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package notify formats and delivers outbound webhook notifications for
// visitor and contact-message events. Delivery is best-effort fan-out:
// endpoint failures are logged and never surface to the request path.
package notify

import "strings"

// Platform identifies the payload schema a webhook URL expects.
type Platform string

const (
	PlatformDiscord Platform = "discord"
	PlatformSlack   Platform = "slack"
	PlatformTeams   Platform = "teams"
	PlatformGeneric Platform = "generic"
)

// DetectPlatform derives the target platform from a webhook URL by
// case-insensitive substring match. First match wins; unrecognized URLs
// get the generic envelope.
func DetectPlatform(url string) Platform {
	lowered := strings.ToLower(url)

	switch {
	case strings.Contains(lowered, "discord.com/api/webhooks"):
		return PlatformDiscord
	case strings.Contains(lowered, "hooks.slack.com"):
		return PlatformSlack
	case strings.Contains(lowered, "webhook.office.com"),
		strings.Contains(lowered, "office365.com"):
		return PlatformTeams
	default:
		return PlatformGeneric
	}
}
