// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package notify

import (
	"time"

	"github.com/arajbanshi/folio/internal/model"
)

// Accent colors for Discord embeds, one per event type.
const (
	discordColorVisitor = 3447003 // blue
	discordColorMessage = 5431    // green
)

// teamsThemeColor is the fixed MessageCard accent for both event types.
const teamsThemeColor = "0076D7"

// footerText is the static attribution on Discord embeds.
const footerText = "Portfolio notifier"

// humanTime is the display timestamp layout used in Slack and Teams payloads.
const humanTime = "2006-01-02 15:04:05"

// FormatVisit renders a visitor notification for the given platform.
// Pure: identical inputs (including now) produce identical payloads.
// A nil geo means "location unknown" and drops the location fields and
// map image, never an error.
func FormatVisit(platform Platform, visit *model.Visit, geo *model.GeoInfo, now time.Time) map[string]any {
	switch platform {
	case PlatformDiscord:
		return discordVisit(visit, geo, now)
	case PlatformSlack:
		return slackVisit(visit, geo, now)
	case PlatformTeams:
		return teamsVisit(visit, geo, now)
	default:
		return genericVisit(visit, geo, now)
	}
}

// FormatMessage renders a contact-message notification for the given
// platform. Same purity and nil-geo contract as FormatVisit.
func FormatMessage(platform Platform, msg *model.ContactMessage, geo *model.GeoInfo, now time.Time) map[string]any {
	switch platform {
	case PlatformDiscord:
		return discordMessage(msg, geo, now)
	case PlatformSlack:
		return slackMessage(msg, geo, now)
	case PlatformTeams:
		return teamsMessage(msg, geo, now)
	default:
		return genericMessage(msg, geo, now)
	}
}

func discordField(name, value string, inline bool) map[string]any {
	return map[string]any{"name": name, "value": value, "inline": inline}
}

func discordVisit(visit *model.Visit, geo *model.GeoInfo, now time.Time) map[string]any {
	fields := []map[string]any{
		discordField("Device", orUnknown(visit.DeviceSummary), true),
		discordField("Browser", orUnknown(visit.BrowserSummary), true),
		discordField("System", orUnknown(visit.OSSummary), true),
		discordField("Display", orUnknown(visit.DisplaySummary), true),
	}
	fields = append(fields, discordField("IP", orUnknown(visit.IPAddress), true))
	if geo != nil {
		fields = append(fields, discordField("Location", geo.Location(), true))
	}

	embed := map[string]any{
		"title":     "Visitor Information",
		"color":     discordColorVisitor,
		"fields":    fields,
		"footer":    map[string]any{"text": footerText},
		"timestamp": now.UTC().Format(time.RFC3339),
	}
	if geo != nil {
		embed["image"] = map[string]any{"url": geo.MapImageURL()}
	}

	return map[string]any{
		"content": "\U0001F50D New Site Visitor Detected",
		"embeds":  []map[string]any{embed},
	}
}

func discordMessage(msg *model.ContactMessage, geo *model.GeoInfo, now time.Time) map[string]any {
	fields := []map[string]any{
		discordField("From", msg.FullName, true),
		discordField("Email", msg.Email, true),
		discordField("Subject", msg.Subject, false),
		discordField("Message", msg.Body, false),
	}
	fields = append(fields, discordField("IP", orUnknown(msg.IPAddress), true))
	if geo != nil {
		fields = append(fields, discordField("Location", geo.Location(), true))
	}

	embed := map[string]any{
		"title":     "Message Details",
		"color":     discordColorMessage,
		"fields":    fields,
		"footer":    map[string]any{"text": footerText},
		"timestamp": now.UTC().Format(time.RFC3339),
	}
	if geo != nil {
		embed["image"] = map[string]any{"url": geo.MapImageURL()}
	}

	return map[string]any{
		"content": "\U0001F4AC New Message Received",
		"embeds":  []map[string]any{embed},
	}
}

func slackField(label, value string) map[string]any {
	return map[string]any{"type": "mrkdwn", "text": "*" + label + ":*\n" + value}
}

func slackVisit(visit *model.Visit, geo *model.GeoInfo, now time.Time) map[string]any {
	blocks := []map[string]any{
		{
			"type": "header",
			"text": map[string]any{
				"type":  "plain_text",
				"text":  "\U0001F50D New Site Visitor Detected",
				"emoji": true,
			},
		},
		{
			"type": "section",
			"fields": []map[string]any{
				slackField("Device", orUnknown(visit.DeviceSummary)),
				slackField("Browser", orUnknown(visit.BrowserSummary)),
				slackField("System", orUnknown(visit.OSSummary)),
				slackField("Display", orUnknown(visit.DisplaySummary)),
			},
		},
	}

	ipFields := []map[string]any{slackField("IP", orUnknown(visit.IPAddress))}
	if geo != nil {
		ipFields = append(ipFields, slackField("Location", geo.Location()))
	}
	blocks = append(blocks, map[string]any{"type": "section", "fields": ipFields})

	if geo != nil {
		blocks = append(blocks, map[string]any{
			"type":      "image",
			"image_url": geo.MapImageURL(),
			"alt_text":  "Visitor location",
		})
	}

	blocks = append(blocks, map[string]any{
		"type": "context",
		"elements": []map[string]any{
			{"type": "mrkdwn", "text": "Visited at: " + now.Format(humanTime)},
		},
	})

	return map[string]any{"blocks": blocks}
}

func slackMessage(msg *model.ContactMessage, geo *model.GeoInfo, now time.Time) map[string]any {
	fields := []map[string]any{
		slackField("From", msg.FullName),
		slackField("Email", msg.Email),
		slackField("Subject", msg.Subject),
		slackField("IP", orUnknown(msg.IPAddress)),
	}
	if geo != nil {
		fields = append(fields, slackField("Location", geo.Location()))
	}

	blocks := []map[string]any{
		{
			"type": "header",
			"text": map[string]any{
				"type":  "plain_text",
				"text":  "\U0001F4AC New Message Received",
				"emoji": true,
			},
		},
		{"type": "section", "fields": fields},
		{
			"type": "section",
			"text": map[string]any{"type": "mrkdwn", "text": "*Message:*\n" + msg.Body},
		},
	}

	if geo != nil {
		blocks = append(blocks, map[string]any{
			"type":      "image",
			"image_url": geo.MapImageURL(),
			"alt_text":  "Sender location",
		})
	}

	blocks = append(blocks, map[string]any{
		"type": "context",
		"elements": []map[string]any{
			{"type": "mrkdwn", "text": "Received at: " + now.Format(humanTime)},
		},
	})

	return map[string]any{"blocks": blocks}
}

func teamsFact(name, value string) map[string]any {
	return map[string]any{"name": name, "value": value}
}

func teamsCard(summary, title string, facts []map[string]any, text string) map[string]any {
	return map[string]any{
		"@type":      "MessageCard",
		"@context":   "http://schema.org/extensions",
		"themeColor": teamsThemeColor,
		"summary":    summary,
		"sections": []map[string]any{
			{
				"activityTitle": title,
				"facts":         facts,
				"text":          text,
			},
		},
	}
}

func teamsVisit(visit *model.Visit, geo *model.GeoInfo, now time.Time) map[string]any {
	facts := []map[string]any{
		teamsFact("Device", orUnknown(visit.DeviceSummary)),
		teamsFact("Browser", orUnknown(visit.BrowserSummary)),
		teamsFact("System", orUnknown(visit.OSSummary)),
		teamsFact("Display", orUnknown(visit.DisplaySummary)),
		teamsFact("Time", now.Format(humanTime)),
	}
	if geo != nil {
		facts = append(facts,
			teamsFact("IP", orUnknown(visit.IPAddress)),
			teamsFact("Location", geo.Location()))
	}

	return teamsCard("New Site Visitor",
		"\U0001F50D New Site Visitor Detected",
		facts, "A new visitor loaded the portfolio page.")
}

func teamsMessage(msg *model.ContactMessage, geo *model.GeoInfo, now time.Time) map[string]any {
	facts := []map[string]any{
		teamsFact("From", msg.FullName),
		teamsFact("Email", msg.Email),
		teamsFact("Subject", msg.Subject),
		teamsFact("Time", now.Format(humanTime)),
	}
	if geo != nil {
		facts = append(facts,
			teamsFact("IP", orUnknown(msg.IPAddress)),
			teamsFact("Location", geo.Location()))
	}

	return teamsCard("New Message Received",
		"\U0001F4AC New Message Received",
		facts, "**Message:**\n\n"+msg.Body)
}

func genericVisit(visit *model.Visit, geo *model.GeoInfo, now time.Time) map[string]any {
	data := map[string]any{
		"id":         visit.ID,
		"timestamp":  now.UTC().Format(time.RFC3339),
		"ip_address": visit.IPAddress,
		"device":     visit.DeviceSummary,
		"browser":    visit.BrowserSummary,
		"system":     visit.OSSummary,
		"display":    visit.DisplaySummary,
	}
	attachGeo(data, geo)
	return map[string]any{"event": "visitor", "data": data}
}

func genericMessage(msg *model.ContactMessage, geo *model.GeoInfo, now time.Time) map[string]any {
	data := map[string]any{
		"id":         msg.ID,
		"timestamp":  now.UTC().Format(time.RFC3339),
		"fullname":   msg.FullName,
		"email":      msg.Email,
		"subject":    msg.Subject,
		"message":    msg.Body,
		"ip_address": msg.IPAddress,
	}
	attachGeo(data, geo)
	return map[string]any{"event": "message", "data": data}
}

// attachGeo adds nested location/coordinates objects when a lookup
// succeeded. Absent keys, not null values, signal "unknown".
func attachGeo(data map[string]any, geo *model.GeoInfo) {
	if geo == nil {
		return
	}
	data["location"] = map[string]any{
		"city":    geo.City,
		"region":  geo.Region,
		"country": geo.Country,
	}
	data["coordinates"] = map[string]any{
		"latitude":  geo.Lat,
		"longitude": geo.Lon,
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
