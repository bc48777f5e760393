package summary

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// ContentKind classifies what a summarization command operates on. The kind is
// part of the cache key so the same URL summarized by different commands does
// not collide.
type ContentKind string

const (
	KindVideo        ContentKind = "video"
	KindPage         ContentKind = "page"
	KindThread       ContentKind = "thread"
	KindConversation ContentKind = "conversation"
)

// ParseKind maps a kind name to its ContentKind. ok is false for names
// outside the command set.
func ParseKind(s string) (ContentKind, bool) {
	switch ContentKind(s) {
	case KindVideo, KindPage, KindThread, KindConversation:
		return ContentKind(s), true
	}
	return "", false
}

// Fingerprint derives a stable cache key from a command kind and a content
// reference (usually a URL). The reference is normalized (trimmed, lower-cased)
// before hashing so trivially different spellings of the same reference map to
// the same key. The result is deterministic across process restarts.
//
// Format: summary:<kind>:<hash>, where hash is the first 16 bytes of
// SHA-256(kind + "\n" + normalized reference) in hex.
func Fingerprint(kind ContentKind, reference string) string {
	norm := strings.ToLower(strings.TrimSpace(reference))
	sum := sha256.Sum256([]byte(string(kind) + "\n" + norm))
	return "summary:" + string(kind) + ":" + hex.EncodeToString(sum[:16])
}
