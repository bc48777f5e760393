package ports

import (
	"context"
	"fmt"
	"time"

	"github.com/summarybot/summarybot/internal/core/domain/summary"
)

// SummarizeFunc does the expensive external work (fetch + AI summarization)
// when the cache cannot answer. It is supplied per call by the command layer.
type SummarizeFunc func(ctx context.Context) (string, error)

// SummaryService coordinates rate limiting, the cache and the summarize work
// for one command invocation.
type SummaryService interface {
	// Summarize returns a cached summary when available; otherwise it invokes
	// produce and caches the result. A *RateLimitedError is returned when the
	// acting user or channel is on cooldown.
	Summarize(ctx context.Context, kind summary.ContentKind, reference, userID, channelID string, produce SummarizeFunc) (string, error)
	// Invalidate drops the cached summary for a reference from every tier.
	Invalidate(ctx context.Context, kind summary.ContentKind, reference string) error
}

// RateLimitedError reports a denied action and how long the actor must wait.
// The command layer turns it into a user-facing cooldown message.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}
