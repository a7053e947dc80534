package redis

import (
	"testing"
	"time"

	"github.com/afripulse/storefront-session/internal/core/domain"
)

func TestKeys(t *testing.T) {
	cases := map[string]string{
		clickKey("dev-1", "AFF1"):      "affclick:dev-1:AFF1",
		attributionKey("dev-1", "p-1"): "attr:dev-1:p-1",
		noticeKey("dev-1"):             "notices:dev-1",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("key = %q, want %q", got, want)
		}
	}
}

func TestConfigOptions(t *testing.T) {
	opts := Config{Addr: "cache:6379", DB: 2}.options()
	if opts.ReadTimeout != defaultTimeout || opts.DialTimeout != defaultTimeout {
		t.Fatalf("expected default timeouts, got read=%v dial=%v", opts.ReadTimeout, opts.DialTimeout)
	}
	if opts.ClientName != clientName || opts.DB != 2 || opts.Addr != "cache:6379" {
		t.Fatalf("unexpected options: %+v", opts)
	}

	opts = Config{Timeout: time.Second}.options()
	if opts.WriteTimeout != time.Second {
		t.Fatalf("expected explicit timeout, got %v", opts.WriteTimeout)
	}
}

func TestDecodeNotices(t *testing.T) {
	raw := []string{
		`{"level":"error","title":"Login Failed","description":"Please check your credentials and try again.","created_at":"2026-01-02T03:04:05Z"}`,
		`{"level":"info","title":"Session expired","created_at":"2026-01-02T03:04:06Z"}`,
	}
	notices, err := decodeNotices(raw)
	if err != nil {
		t.Fatalf("decodeNotices returned error: %v", err)
	}
	if len(notices) != 2 {
		t.Fatalf("expected 2 notices, got %d", len(notices))
	}
	if notices[0].Level != domain.NoticeError || notices[0].Title != "Login Failed" {
		t.Fatalf("unexpected first notice: %+v", notices[0])
	}
	if !notices[1].CreatedAt.Equal(time.Date(2026, 1, 2, 3, 4, 6, 0, time.UTC)) {
		t.Fatalf("unexpected timestamp: %v", notices[1].CreatedAt)
	}
}

func TestDecodeNotices_Empty(t *testing.T) {
	notices, err := decodeNotices(nil)
	if err != nil || notices == nil || len(notices) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v %v", notices, err)
	}
}

func TestDecodeNotices_Corrupt(t *testing.T) {
	if _, err := decodeNotices([]string{"{"}); err == nil {
		t.Fatalf("expected error")
	}
}
