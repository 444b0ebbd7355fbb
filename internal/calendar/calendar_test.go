package calendar

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestMockCreateEvent(t *testing.T) {
	mock := NewMock()
	when := time.Date(2024, 5, 2, 16, 0, 0, 0, time.UTC)

	event, err := mock.CreateEvent(context.Background(), "Meeting with alice@example.com", &when)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Status != "created" {
		t.Fatalf("unexpected status: %q", event.Status)
	}
	if !strings.HasPrefix(event.EventID, "evt_") {
		t.Fatalf("unexpected event id: %q", event.EventID)
	}
	if event.Datetime == nil || !event.Datetime.Equal(when) {
		t.Fatalf("unexpected datetime: %v", event.Datetime)
	}
}

func TestMockEventIDsAreUnique(t *testing.T) {
	mock := NewMock()
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		event, err := mock.CreateEvent(context.Background(), "summary", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := seen[event.EventID]; ok {
			t.Fatalf("duplicate event id: %s", event.EventID)
		}
		seen[event.EventID] = struct{}{}
	}
}

func TestMockAllowsNilDatetime(t *testing.T) {
	event, err := NewMock().CreateEvent(context.Background(), "summary", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Datetime != nil {
		t.Fatalf("expected nil datetime, got %v", event.Datetime)
	}
}
