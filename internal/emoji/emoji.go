package emoji

import "sync/atomic"

// EmojiMap holds emoji and fallback mappings
var emojiMap = map[string][2]string{
	// [emoji, fallback]
	"error":    {"❌", "[ERR]"},
	"warning":  {"⚠️", "[WRN]"},
	"info":     {"ℹ️", "[INF]"},
	"success":  {"✅", "[OK]"},
	"leaf":     {"🌿", "[LEAF]"},
	"crop":     {"🌾", "[CROP]"},
	"healthy":  {"✅", "[OK]"},
	"diseased": {"🦠", "[DIS]"},
	"severity": {"⚖️", "[SEV]"},
	"advice":   {"💡", "[TIP]"},
	"image":    {"🖼️", "[IMG]"},
	"report":   {"📄", "[PDF]"},
	"watch":    {"👀", "[WATCH]"},
	"server":   {"🚀", "[SRV]"},
	"help":     {"❓", "[?]"},
	"door":     {"🚪", "[EXIT]"},
}

var emojiDisabled atomic.Bool

// SetEmojiDisabled sets the global emoji disabled state
func SetEmojiDisabled(disabled bool) {
	emojiDisabled.Store(disabled)
}

// IsEmojiDisabled returns the current emoji disabled state
func IsEmojiDisabled() bool {
	return emojiDisabled.Load()
}

// GetEmoji returns emoji or fallback based on no-emoji setting
func GetEmoji(key string) string {
	if mapping, exists := emojiMap[key]; exists {
		if emojiDisabled.Load() {
			return mapping[1] // fallback
		}
		return mapping[0] // emoji
	}
	return "[?]" // unknown key
}

// Status returns the healthy or diseased symbol
func Status(healthy bool) string {
	if healthy {
		return GetEmoji("healthy")
	}
	return GetEmoji("diseased")
}
