package mail

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadInbox(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inbox.json")
	content := `[
  {"id": 1, "sender": "alice@example.com", "subject": "Sync", "body": "can we meet tomorrow", "received_at": "2024-05-01T09:30:00Z"},
  {"id": 2, "sender": "bob@example.com", "subject": "Report", "body": "please send the numbers", "received_at": "2024-05-01T10:05:00Z"}
]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write inbox file: %v", err)
	}

	messages, err := LoadInbox(path)
	if err != nil {
		t.Fatalf("load inbox: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Sender != "alice@example.com" {
		t.Fatalf("unexpected sender: %s", messages[0].Sender)
	}
}

func TestLoadInboxRejectsInvalidMessage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inbox.json")
	content := `[{"id": 1, "sender": "", "subject": "s", "body": "b", "received_at": "2024-05-01T09:30:00Z"}]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write inbox file: %v", err)
	}

	if _, err := LoadInbox(path); err == nil {
		t.Fatal("expected validation error for empty sender")
	}
}

func TestLoadInboxMissingFile(t *testing.T) {
	if _, err := LoadInbox(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
