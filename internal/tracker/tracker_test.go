// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package tracker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/arajbanshi/folio/internal/devicecache"
	"github.com/arajbanshi/folio/internal/model"
	"github.com/arajbanshi/folio/internal/store"
)

const (
	chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"
	botUA    = "curl/7.68.0 bot-scanner"
)

// fakeStore is an in-memory EventStore that tracks call order.
type fakeStore struct {
	visits   []model.Visit
	messages []model.ContactMessage
	failNext bool
	calls    *[]string
}

func (f *fakeStore) CreateVisit(_ context.Context, arg store.CreateVisitParams) (model.Visit, error) {
	if f.failNext {
		return model.Visit{}, errors.New("disk full")
	}
	v := model.Visit{
		ID: arg.ID, CreatedAt: arg.CreatedAt, IPAddress: arg.IPAddress,
		UserAgent: arg.UserAgent, DeviceInfo: arg.DeviceInfo,
		DeviceSummary: arg.DeviceSummary, OSSummary: arg.OSSummary,
		BrowserSummary: arg.BrowserSummary, DisplaySummary: arg.DisplaySummary,
		Facts: arg.Facts,
	}
	f.visits = append(f.visits, v)
	if f.calls != nil {
		*f.calls = append(*f.calls, "persist")
	}
	return v, nil
}

func (f *fakeStore) CreateMessage(_ context.Context, arg store.CreateMessageParams) (model.ContactMessage, error) {
	if f.failNext {
		return model.ContactMessage{}, errors.New("disk full")
	}
	m := model.ContactMessage{
		ID: arg.ID, CreatedAt: arg.CreatedAt, FullName: arg.FullName,
		Email: arg.Email, Subject: arg.Subject, Body: arg.Body,
		IPAddress: arg.IPAddress,
	}
	f.messages = append(f.messages, m)
	if f.calls != nil {
		*f.calls = append(*f.calls, "persist")
	}
	return m, nil
}

// stubGeo returns a fixed result (nil simulates lookup failure).
type stubGeo struct {
	result *model.GeoInfo
	called int
}

func (s *stubGeo) Lookup(context.Context, string) *model.GeoInfo {
	s.called++
	return s.result
}

// countingNotifier records dispatches.
type countingNotifier struct {
	visits   int
	messages int
	lastGeo  *model.GeoInfo
	calls    *[]string
}

func (n *countingNotifier) DispatchVisit(_ context.Context, _ *model.Visit, geo *model.GeoInfo) {
	n.visits++
	n.lastGeo = geo
	if n.calls != nil {
		*n.calls = append(*n.calls, "notify")
	}
}

func (n *countingNotifier) DispatchMessage(_ context.Context, _ *model.ContactMessage, geo *model.GeoInfo) {
	n.messages++
	n.lastGeo = geo
	if n.calls != nil {
		*n.calls = append(*n.calls, "notify")
	}
}

func newTestService(st *fakeStore, geo *stubGeo, n *countingNotifier, devices devicecache.Store) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(st, geo, n, devices, logger)
}

func TestTrackVisitNormalBrowserDispatchesOnce(t *testing.T) {
	st := &fakeStore{}
	notifier := &countingNotifier{}
	svc := newTestService(st, &stubGeo{}, notifier, nil)

	visit, err := svc.TrackVisit(context.Background(), "203.0.113.5", chromeUA)
	if err != nil {
		t.Fatalf("TrackVisit: %v", err)
	}
	if len(st.visits) != 1 {
		t.Fatalf("recorded %d visits, want 1", len(st.visits))
	}
	if notifier.visits != 1 {
		t.Errorf("dispatched %d visitor notifications, want 1", notifier.visits)
	}
	if visit.BrowserSummary == "" || visit.OSSummary == "" {
		t.Errorf("expected derived summaries, got %+v", visit)
	}
}

func TestTrackVisitLoopbackRecordsWithoutNotifying(t *testing.T) {
	for _, ip := range []string{"127.0.0.1", "::1"} {
		st := &fakeStore{}
		notifier := &countingNotifier{}
		geo := &stubGeo{}
		svc := newTestService(st, geo, notifier, nil)

		if _, err := svc.TrackVisit(context.Background(), ip, chromeUA); err != nil {
			t.Fatalf("TrackVisit(%s): %v", ip, err)
		}
		if len(st.visits) != 1 {
			t.Errorf("ip %s: recorded %d visits, want 1", ip, len(st.visits))
		}
		if notifier.visits != 0 {
			t.Errorf("ip %s: dispatched %d notifications, want 0", ip, notifier.visits)
		}
		if geo.called != 0 {
			t.Errorf("ip %s: geolocation looked up %d times for a skipped notification, want 0", ip, geo.called)
		}
	}
}

func TestTrackVisitBotRecordsWithoutNotifying(t *testing.T) {
	st := &fakeStore{}
	notifier := &countingNotifier{}
	svc := newTestService(st, &stubGeo{}, notifier, nil)

	if _, err := svc.TrackVisit(context.Background(), "203.0.113.5", botUA); err != nil {
		t.Fatalf("TrackVisit: %v", err)
	}
	if len(st.visits) != 1 {
		t.Errorf("recorded %d visits, want 1", len(st.visits))
	}
	if notifier.visits != 0 {
		t.Errorf("dispatched %d notifications for bot visit, want 0", notifier.visits)
	}
}

func TestTrackVisitPersistsBeforeNotifying(t *testing.T) {
	var calls []string
	st := &fakeStore{calls: &calls}
	notifier := &countingNotifier{calls: &calls}
	svc := newTestService(st, &stubGeo{}, notifier, nil)

	if _, err := svc.TrackVisit(context.Background(), "203.0.113.5", chromeUA); err != nil {
		t.Fatalf("TrackVisit: %v", err)
	}
	if len(calls) != 2 || calls[0] != "persist" || calls[1] != "notify" {
		t.Errorf("call order = %v, want [persist notify]", calls)
	}
}

func TestTrackVisitPersistFailureSkipsNotification(t *testing.T) {
	st := &fakeStore{failNext: true}
	notifier := &countingNotifier{}
	svc := newTestService(st, &stubGeo{}, notifier, nil)

	if _, err := svc.TrackVisit(context.Background(), "203.0.113.5", chromeUA); err == nil {
		t.Fatal("expected persistence error")
	}
	if notifier.visits != 0 {
		t.Errorf("dispatched %d notifications after failed persist, want 0", notifier.visits)
	}
}

func TestTrackVisitConsumesDeviceCache(t *testing.T) {
	devices := devicecache.NewMemoryStore(time.Minute)
	defer func() { _ = devices.Close() }()

	st := &fakeStore{}
	svc := newTestService(st, &stubGeo{}, &countingNotifier{}, devices)
	ctx := context.Background()

	payload := []byte(`{"screen":{"width":1920,"height":1080},"language":"en-US"}`)
	if err := svc.StoreDeviceInfo(ctx, "203.0.113.5", payload); err != nil {
		t.Fatalf("StoreDeviceInfo: %v", err)
	}

	visit, err := svc.TrackVisit(ctx, "203.0.113.5", chromeUA)
	if err != nil {
		t.Fatalf("TrackVisit: %v", err)
	}
	if visit.DisplaySummary != "1920x1080" {
		t.Errorf("DisplaySummary = %q, want 1920x1080", visit.DisplaySummary)
	}
	facts := visit.GetFacts()
	if len(facts) != 1 || facts[0] != "Language: en-US" {
		t.Errorf("facts = %v, want [Language: en-US]", facts)
	}

	// Entry is consume-on-read: a second visit has no metadata.
	visit2, err := svc.TrackVisit(ctx, "203.0.113.5", chromeUA)
	if err != nil {
		t.Fatalf("second TrackVisit: %v", err)
	}
	if visit2.DisplaySummary != "" {
		t.Errorf("second visit DisplaySummary = %q, want empty", visit2.DisplaySummary)
	}
}

func TestStoreDeviceInfoRejectsInvalidJSON(t *testing.T) {
	devices := devicecache.NewMemoryStore(time.Minute)
	defer func() { _ = devices.Close() }()

	svc := newTestService(&fakeStore{}, &stubGeo{}, &countingNotifier{}, devices)
	if err := svc.StoreDeviceInfo(context.Background(), "203.0.113.5", []byte("{broken")); err == nil {
		t.Error("expected error for invalid JSON payload")
	}
}

func TestSubmitMessageNotifiesEvenForBotAndFailedGeo(t *testing.T) {
	st := &fakeStore{}
	notifier := &countingNotifier{}
	svc := newTestService(st, &stubGeo{result: nil}, notifier, nil)

	msg, err := svc.SubmitMessage(context.Background(), "Ana", "a@example.com", "Hi", "Test", "203.0.113.5")
	if err != nil {
		t.Fatalf("SubmitMessage: %v", err)
	}
	if len(st.messages) != 1 {
		t.Fatalf("recorded %d messages, want 1", len(st.messages))
	}
	if msg.FullName != "Ana" || msg.Email != "a@example.com" || msg.Subject != "Hi" || msg.Body != "Test" {
		t.Errorf("persisted message = %+v", msg)
	}
	if notifier.messages != 1 {
		t.Errorf("dispatched %d message notifications, want 1", notifier.messages)
	}
	if notifier.lastGeo != nil {
		t.Errorf("expected nil geo passed through on lookup failure, got %+v", notifier.lastGeo)
	}
}

func TestSummarize(t *testing.T) {
	sum := summarize(chromeUA, map[string]any{"screen": "2560x1440"})
	if sum.Device != "Desktop" {
		t.Errorf("Device = %q, want Desktop", sum.Device)
	}
	if sum.Browser == "" || sum.OS == "" {
		t.Errorf("expected browser and OS summaries, got %+v", sum)
	}
	if sum.Display != "2560x1440" {
		t.Errorf("Display = %q, want 2560x1440", sum.Display)
	}
}
