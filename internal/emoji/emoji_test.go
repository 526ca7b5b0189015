package emoji

import "testing"

func TestGetEmoji(t *testing.T) {
	defer SetEmojiDisabled(false)

	SetEmojiDisabled(false)
	if got := GetEmoji("leaf"); got != "🌿" {
		t.Errorf("Expected leaf emoji, got %q", got)
	}

	SetEmojiDisabled(true)
	if !IsEmojiDisabled() {
		t.Fatal("Expected emoji disabled")
	}
	if got := GetEmoji("leaf"); got != "[LEAF]" {
		t.Errorf("Expected fallback, got %q", got)
	}
	if got := GetEmoji("no-such-key"); got != "[?]" {
		t.Errorf("Expected unknown marker, got %q", got)
	}
}

func TestStatus(t *testing.T) {
	SetEmojiDisabled(true)
	defer SetEmojiDisabled(false)

	if Status(true) != "[OK]" {
		t.Errorf("Expected healthy fallback, got %q", Status(true))
	}
	if Status(false) != "[DIS]" {
		t.Errorf("Expected diseased fallback, got %q", Status(false))
	}
}
