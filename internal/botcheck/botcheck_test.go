// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package botcheck

import "testing"

const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

func TestIsBotKeywords(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want bool
	}{
		{"googlebot", "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)", true},
		{"uppercase keyword", "SOMECRAWLER/1.0", true},
		{"spider", "Baiduspider+(+http://www.baidu.com/search/spider.htm)", true},
		{"headless chrome", "Mozilla/5.0 HeadlessChrome/126.0.0.0", true},
		{"phantomjs", "PhantomJS/2.1.1", true},
		{"selenium", "selenium-webdriver", true},
		{"puppeteer", "puppeteer/22.0", true},
		{"playwright", "Playwright/1.44", true},
		{"curl scanner", "curl/7.68.0 bot-scanner", true},
		{"facebook preview fetcher", "facebookexternalhit/1.1 (+http://www.facebook.com/externalhit_uatext.php)", true},
		{"yahoo slurp", "Mozilla/5.0 (compatible; Yahoo! Slurp; http://help.yahoo.com/help/us/ysearch/slurp)", true},
		{"adsense fetcher", "Mediapartners-Google", true},
		{"regular chrome", browserUA, false},
		{"regular firefox", "Mozilla/5.0 (X11; Linux x86_64; rv:130.0) Gecko/20100101 Firefox/130.0", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBot(tt.ua, nil); got != tt.want {
				t.Errorf("IsBot(%q, nil) = %v, want %v", tt.ua, got, tt.want)
			}
		})
	}
}

func TestIsBotDeviceMetadata(t *testing.T) {
	tests := []struct {
		name string
		info map[string]any
		want bool
	}{
		{"nil metadata", nil, false},
		{"empty metadata", map[string]any{}, false},
		{"device other", map[string]any{"device": "Other"}, true},
		{"device bot family", map[string]any{"device": map[string]any{"family": "Spider Bot"}}, true},
		{"device desktop", map[string]any{"device": "Desktop"}, false},
		{"browser headless", map[string]any{"browser": map[string]any{"family": "HeadlessChrome"}}, true},
		{"browser bot", map[string]any{"browser": "FancyBot"}, true},
		{"browser normal", map[string]any{"browser": "Firefox"}, false},
		{"unrelated keys", map[string]any{"screen": "1920x1080"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBot(browserUA, tt.info); got != tt.want {
				t.Errorf("IsBot(browser UA, %v) = %v, want %v", tt.info, got, tt.want)
			}
		})
	}
}
