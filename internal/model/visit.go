// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the application.
package model

import (
	"encoding/json"
	"strings"
	"time"
)

// Webhook event types. An endpoint subscribes to exactly one of these.
const (
	EventTypeVisitor = "visitor"
	EventTypeMessage = "message"
)

// Visit represents a single recorded page view. Visits are append-only:
// once created they are never mutated.
type Visit struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	IPAddress      string    `json:"ip_address"`
	UserAgent      string    `json:"user_agent"`
	DeviceInfo     string    `json:"-"` // raw client-reported JSON, may be empty
	DeviceSummary  string    `json:"device"`
	OSSummary      string    `json:"system"`
	BrowserSummary string    `json:"browser"`
	DisplaySummary string    `json:"display"`
	Facts          string    `json:"-"` // JSON array stored as string
}

// GetFacts parses the JSON facts string into an ordered slice.
func (v *Visit) GetFacts() []string {
	var facts []string
	if v.Facts == "" || v.Facts == "[]" {
		return facts
	}
	_ = json.Unmarshal([]byte(v.Facts), &facts)
	return facts
}

// SetFacts stores the ordered facts slice as a JSON string.
func (v *Visit) SetFacts(facts []string) {
	if len(facts) == 0 {
		v.Facts = "[]"
		return
	}
	data, _ := json.Marshal(facts)
	v.Facts = string(data)
}

// GetDeviceInfo parses the raw client-reported metadata into a map.
// Returns nil when no metadata was reported.
func (v *Visit) GetDeviceInfo() map[string]any {
	if v.DeviceInfo == "" {
		return nil
	}
	var info map[string]any
	if err := json.Unmarshal([]byte(v.DeviceInfo), &info); err != nil {
		return nil
	}
	return info
}

// DeviceFamily extracts a named family string from client-reported device
// metadata. The client payload is free-form: the value under key may be a
// plain string or an object carrying a "family" field. Missing or
// unrecognized shapes yield "".
func DeviceFamily(info map[string]any, key string) string {
	if info == nil {
		return ""
	}
	switch val := info[key].(type) {
	case string:
		return val
	case map[string]any:
		if fam, ok := val["family"].(string); ok {
			return fam
		}
	}
	return ""
}

// IsLoopback reports whether ip is a loopback address.
func IsLoopback(ip string) bool {
	return ip == "127.0.0.1" || ip == "::1" || strings.EqualFold(ip, "localhost")
}
