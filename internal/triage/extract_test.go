package triage

import (
	"testing"
	"time"
)

var ref = time.Date(2024, 5, 1, 9, 30, 45, 123, time.UTC)

func TestExtractDatetimeTable(t *testing.T) {
	tomorrow := time.Date(2024, 5, 2, 16, 0, 0, 0, time.UTC)
	today := time.Date(2024, 5, 1, 16, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		body string
		want *time.Time
	}{
		{"tomorrow", "can we meet tomorrow?", &tomorrow},
		{"today", "are you free today?", &today},
		{"4 pm with space", "how about 4 pm?", &tomorrow},
		{"4pm without space", "how about 4pm?", &tomorrow},
		{"uppercase cue", "Can we meet TOMORROW at 4 PM?", &tomorrow},
		{"no cue", "let me know when suits you", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractDatetime(tc.body, ref)
			if tc.want == nil {
				if got != nil {
					t.Fatalf("expected nil, got %v", got)
				}
				return
			}
			if got == nil || !got.Equal(*tc.want) {
				t.Fatalf("ExtractDatetime(%q) = %v, want %v", tc.body, got, tc.want)
			}
		})
	}
}

// "tomorrow" 优先于 "today"，"today" 优先于 "4 pm"。
func TestExtractDatetimePrecedence(t *testing.T) {
	tomorrow := time.Date(2024, 5, 2, 16, 0, 0, 0, time.UTC)
	today := time.Date(2024, 5, 1, 16, 0, 0, 0, time.UTC)

	if got := ExtractDatetime("today or tomorrow at 4 pm", ref); got == nil || !got.Equal(tomorrow) {
		t.Fatalf("expected tomorrow to win, got %v", got)
	}
	if got := ExtractDatetime("today at 4 pm", ref); got == nil || !got.Equal(today) {
		t.Fatalf("expected today to win over 4 pm, got %v", got)
	}
}

func TestExtractDatetimeKeepsLocation(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	localRef := time.Date(2024, 5, 1, 23, 0, 0, 0, loc)

	got := ExtractDatetime("see you tomorrow", localRef)
	if got == nil {
		t.Fatalf("expected a match")
	}
	if got.Location() != loc {
		t.Fatalf("expected location %v, got %v", loc, got.Location())
	}
	if got.Hour() != 16 || got.Day() != 2 {
		t.Fatalf("unexpected resolved time: %v", got)
	}
}
