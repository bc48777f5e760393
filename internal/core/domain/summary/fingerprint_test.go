package summary_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/summarybot/summarybot/internal/core/domain/summary"
)

func TestFingerprintDeterministic(t *testing.T) {
	a := summary.Fingerprint(summary.KindVideo, "https://youtu.be/dQw4w9WgXcQ")
	b := summary.Fingerprint(summary.KindVideo, "https://youtu.be/dQw4w9WgXcQ")
	assert.Equal(t, a, b)
}

func TestFingerprintNormalizesReference(t *testing.T) {
	base := summary.Fingerprint(summary.KindPage, "https://example.com/article")
	assert.Equal(t, base, summary.Fingerprint(summary.KindPage, "  https://example.com/article  "))
	assert.Equal(t, base, summary.Fingerprint(summary.KindPage, "HTTPS://EXAMPLE.COM/Article"))
}

func TestFingerprintDistinguishesInputs(t *testing.T) {
	byKind := map[string]bool{}
	for _, kind := range []summary.ContentKind{summary.KindVideo, summary.KindPage, summary.KindThread, summary.KindConversation} {
		byKind[summary.Fingerprint(kind, "https://example.com")] = true
	}
	assert.Len(t, byKind, 4, "same reference under different kinds must not collide")

	assert.NotEqual(t,
		summary.Fingerprint(summary.KindPage, "https://example.com/a"),
		summary.Fingerprint(summary.KindPage, "https://example.com/b"))
}

func TestFingerprintFormat(t *testing.T) {
	key := summary.Fingerprint(summary.KindThread, "https://x.com/u/status/1")
	assert.Regexp(t, `^summary:thread:[0-9a-f]{32}$`, key)
}
