package entities

import (
	"testing"
	"time"
)

func TestLocatorUsable(t *testing.T) {
	now := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	ttl := 15 * time.Minute

	fresh := NewLocator("https://cdn.test/manifest.m3u8", now.Add(-time.Minute))
	if !fresh.Usable(now, ttl) {
		t.Fatalf("expected fresh locator to be usable")
	}

	stale := NewLocator("https://cdn.test/manifest.m3u8", now.Add(-ttl))
	if stale.Usable(now, ttl) {
		t.Fatalf("locator aged exactly TTL must not be usable")
	}

	if (Locator{}).Usable(now, ttl) {
		t.Fatalf("empty locator must not be usable")
	}
}

func TestLocatorServerExpiry(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	url := "https://cdn.test/live/manifest.m3u8?ts=1&te=1700000030&hdnts=abc"

	loc := NewLocator(url, now)
	if loc.ExpiresAt.Unix() != 1700000030 {
		t.Fatalf("expected parsed expiry, got %v", loc.ExpiresAt)
	}
	if !loc.Usable(now.Add(29*time.Second), time.Hour) {
		t.Fatalf("expected usable before server expiry")
	}
	if loc.Usable(now.Add(30*time.Second), time.Hour) {
		t.Fatalf("expected unusable at server expiry")
	}

	if _, ok := ParseLocatorExpiry("https://cdn.test/manifest.m3u8?te=soon"); ok {
		t.Fatalf("non-numeric te must be ignored")
	}
}

func TestParseSegmentTime(t *testing.T) {
	ts, ok := ParseSegmentTime("/tmp/out/audio_20260102_150405.wav")
	if !ok {
		t.Fatalf("expected timestamp to parse")
	}
	want := time.Date(2026, 1, 2, 15, 4, 5, 0, time.Local)
	if !ts.Equal(want) {
		t.Fatalf("expected %v, got %v", want, ts)
	}

	for _, name := range []string{"audio_2026.wav", "video_20260102_150405.wav", "audio_20260102_150405.mp3"} {
		if _, ok := ParseSegmentTime(name); ok {
			t.Fatalf("expected %s to be rejected", name)
		}
	}
}

func TestAudioDuration(t *testing.T) {
	// 16kHz mono s16le: 32000 bytes per second
	if got := AudioDuration(44+32000*60, 16000, 1); got != time.Minute {
		t.Fatalf("expected 1m, got %s", got)
	}
	if got := AudioDuration(10, 16000, 1); got != 0 {
		t.Fatalf("expected 0 for header-only file, got %s", got)
	}
}

func TestPipelineStateString(t *testing.T) {
	if PipelineRunning.String() != "running" || PipelineStopping.String() != "stopping" {
		t.Fatalf("unexpected state names")
	}
	if !(PipelineStatus{State: PipelineRunning}).IsRunning() {
		t.Fatalf("expected running status")
	}
}
