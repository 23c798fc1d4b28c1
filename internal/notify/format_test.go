// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package notify

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/arajbanshi/folio/internal/model"
)

var frozenClock = time.Date(2026, time.March, 14, 9, 26, 53, 0, time.UTC)

func sampleVisit() *model.Visit {
	return &model.Visit{
		ID:             "3f1c9a2e-visit",
		CreatedAt:      frozenClock,
		IPAddress:      "203.0.113.5",
		UserAgent:      "Mozilla/5.0 (X11; Linux x86_64) Firefox/130.0",
		DeviceSummary:  "Desktop",
		OSSummary:      "Linux",
		BrowserSummary: "Firefox 130.0",
		DisplaySummary: "1920x1080",
	}
}

func sampleMessage() *model.ContactMessage {
	return &model.ContactMessage{
		ID:        "77aa00bb-msg",
		CreatedAt: frozenClock,
		FullName:  "Ana",
		Email:     "a@example.com",
		Subject:   "Hi",
		Body:      "Test",
		IPAddress: "203.0.113.5",
	}
}

func sampleGeo() *model.GeoInfo {
	return &model.GeoInfo{
		Country: "Portugal",
		City:    "Lisbon",
		Region:  "Lisboa",
		Lat:     38.7223,
		Lon:     -9.1393,
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshaling payload: %v", err)
	}
	return string(data)
}

func TestFormattersArePure(t *testing.T) {
	platforms := []Platform{PlatformDiscord, PlatformSlack, PlatformTeams, PlatformGeneric}
	geos := map[string]*model.GeoInfo{"with geo": sampleGeo(), "no geo": nil}

	for _, platform := range platforms {
		for label, geo := range geos {
			t.Run(string(platform)+" visit "+label, func(t *testing.T) {
				a := mustJSON(t, FormatVisit(platform, sampleVisit(), geo, frozenClock))
				b := mustJSON(t, FormatVisit(platform, sampleVisit(), geo, frozenClock))
				if a != b {
					t.Errorf("two identical calls produced different payloads:\n%s\n%s", a, b)
				}
			})
			t.Run(string(platform)+" message "+label, func(t *testing.T) {
				a := mustJSON(t, FormatMessage(platform, sampleMessage(), geo, frozenClock))
				b := mustJSON(t, FormatMessage(platform, sampleMessage(), geo, frozenClock))
				if a != b {
					t.Errorf("two identical calls produced different payloads:\n%s\n%s", a, b)
				}
			})
		}
	}
}

func discordEmbed(t *testing.T, payload map[string]any) map[string]any {
	t.Helper()
	embeds, ok := payload["embeds"].([]map[string]any)
	if !ok || len(embeds) != 1 {
		t.Fatalf("expected exactly one embed, got %#v", payload["embeds"])
	}
	return embeds[0]
}

func embedFieldNames(t *testing.T, embed map[string]any) []string {
	t.Helper()
	fields, ok := embed["fields"].([]map[string]any)
	if !ok {
		t.Fatalf("expected embed fields, got %#v", embed["fields"])
	}
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f["name"].(string))
	}
	return names
}

func TestDiscordVisitWithGeo(t *testing.T) {
	payload := FormatVisit(PlatformDiscord, sampleVisit(), sampleGeo(), frozenClock)
	embed := discordEmbed(t, payload)

	if got := embed["color"]; got != discordColorVisitor {
		t.Errorf("visitor embed color = %v, want %d", got, discordColorVisitor)
	}
	if got := embed["timestamp"]; got != "2026-03-14T09:26:53Z" {
		t.Errorf("embed timestamp = %v, want RFC3339 frozen instant", got)
	}

	names := embedFieldNames(t, embed)
	want := []string{"Device", "Browser", "System", "Display", "IP", "Location"}
	if len(names) != len(want) {
		t.Fatalf("field names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("field[%d] = %q, want %q", i, names[i], want[i])
		}
	}

	image, ok := embed["image"].(map[string]any)
	if !ok {
		t.Fatal("expected map image attached when geolocation succeeds")
	}
	if url := image["url"].(string); !strings.Contains(url, "38.7223") || !strings.Contains(url, "-9.1393") {
		t.Errorf("map image URL missing coordinates: %s", url)
	}
}

func TestDiscordVisitWithoutGeoKeepsIPOmitsLocation(t *testing.T) {
	payload := FormatVisit(PlatformDiscord, sampleVisit(), nil, frozenClock)
	embed := discordEmbed(t, payload)

	names := embedFieldNames(t, embed)
	hasIP, hasLocation := false, false
	for _, n := range names {
		switch n {
		case "IP":
			hasIP = true
		case "Location":
			hasLocation = true
		}
	}
	if !hasIP {
		t.Error("IP field must be present even when geolocation fails")
	}
	if hasLocation {
		t.Error("Location field must be omitted when geolocation fails")
	}
	if _, ok := embed["image"]; ok {
		t.Error("map image must be omitted when geolocation fails")
	}
}

func TestDiscordMessageFields(t *testing.T) {
	payload := FormatMessage(PlatformDiscord, sampleMessage(), nil, frozenClock)
	embed := discordEmbed(t, payload)

	if got := embed["color"]; got != discordColorMessage {
		t.Errorf("message embed color = %v, want %d", got, discordColorMessage)
	}

	fields := embed["fields"].([]map[string]any)
	byName := map[string]string{}
	for _, f := range fields {
		byName[f["name"].(string)] = f["value"].(string)
	}
	if byName["Email"] != "a@example.com" {
		t.Errorf("Email field = %q, want %q", byName["Email"], "a@example.com")
	}
	if byName["Subject"] != "Hi" {
		t.Errorf("Subject field = %q, want %q", byName["Subject"], "Hi")
	}
	if byName["Message"] != "Test" {
		t.Errorf("Message field = %q, want %q", byName["Message"], "Test")
	}
}

func TestTeamsCardEnvelope(t *testing.T) {
	payload := FormatMessage(PlatformTeams, sampleMessage(), sampleGeo(), frozenClock)

	if payload["@type"] != "MessageCard" {
		t.Errorf("@type = %v, want MessageCard", payload["@type"])
	}
	if payload["themeColor"] != teamsThemeColor {
		t.Errorf("themeColor = %v, want %s", payload["themeColor"], teamsThemeColor)
	}

	sections := payload["sections"].([]map[string]any)
	if len(sections) != 1 {
		t.Fatalf("expected one section, got %d", len(sections))
	}
	facts := sections[0]["facts"].([]map[string]any)
	last := facts[len(facts)-1]
	if last["name"] != "Location" || last["value"] != "Lisbon, Lisboa, Portugal" {
		t.Errorf("last fact = %v, want Location with formatted place", last)
	}
}

func TestSlackVisitBlocks(t *testing.T) {
	payload := FormatVisit(PlatformSlack, sampleVisit(), sampleGeo(), frozenClock)
	blocks := payload["blocks"].([]map[string]any)

	types := make([]string, 0, len(blocks))
	for _, b := range blocks {
		types = append(types, b["type"].(string))
	}
	want := []string{"header", "section", "section", "image", "context"}
	if len(types) != len(want) {
		t.Fatalf("block types = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("block[%d] = %q, want %q", i, types[i], want[i])
		}
	}

	// Without geo the image block disappears but the trailing context stays.
	payload = FormatVisit(PlatformSlack, sampleVisit(), nil, frozenClock)
	blocks = payload["blocks"].([]map[string]any)
	for _, b := range blocks {
		if b["type"] == "image" {
			t.Error("image block must be omitted when geolocation fails")
		}
	}
	if blocks[len(blocks)-1]["type"] != "context" {
		t.Error("context block must remain the final block")
	}
}

func TestGenericPayloadGeoNesting(t *testing.T) {
	payload := genericMessage(sampleMessage(), sampleGeo(), frozenClock)
	data := payload["data"].(map[string]any)

	loc, ok := data["location"].(map[string]any)
	if !ok {
		t.Fatal("expected nested location object when geolocation succeeds")
	}
	if loc["city"] != "Lisbon" || loc["country"] != "Portugal" {
		t.Errorf("location = %v", loc)
	}
	coords := data["coordinates"].(map[string]any)
	if coords["latitude"] != 38.7223 || coords["longitude"] != -9.1393 {
		t.Errorf("coordinates = %v", coords)
	}

	payload = genericMessage(sampleMessage(), nil, frozenClock)
	data = payload["data"].(map[string]any)
	if _, ok := data["location"]; ok {
		t.Error("location key must be absent when geolocation fails")
	}
	if _, ok := data["coordinates"]; ok {
		t.Error("coordinates key must be absent when geolocation fails")
	}
	if data["ip_address"] != "203.0.113.5" {
		t.Errorf("ip_address = %v, want raw IP regardless of geo", data["ip_address"])
	}
}
