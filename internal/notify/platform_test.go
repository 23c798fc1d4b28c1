// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package notify

import "testing"

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want Platform
	}{
		{"discord", "https://discord.com/api/webhooks/123/abc", PlatformDiscord},
		{"discord uppercase", "https://DISCORD.COM/API/WEBHOOKS/123/abc", PlatformDiscord},
		{"slack", "https://hooks.slack.com/services/T000/B000/XXX", PlatformSlack},
		{"teams office", "https://example.webhook.office.com/webhookb2/abc", PlatformTeams},
		{"teams office365", "https://outlook.office365.com/webhook/abc", PlatformTeams},
		{"generic", "https://example.com/hooks/incoming", PlatformGeneric},
		{"generic empty", "", PlatformGeneric},
		{"discord wins over path noise", "https://discord.com/api/webhooks/hooks.slack.com", PlatformDiscord},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectPlatform(tt.url); got != tt.want {
				t.Errorf("DetectPlatform(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}
