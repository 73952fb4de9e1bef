package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"newsrelay/internal/domain"
)

// classifyRequestError maps transport-level failures onto fetch outcomes.
func classifyRequestError(ctx context.Context, err error) domain.FetchOutcome {
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
		return domain.TransientOutcome("timeout", err)
	}
	if errors.Is(err, context.Canceled) {
		return domain.TransientOutcome("canceled", err)
	}
	return domain.TransientOutcome("network", err)
}

// classifyStatus maps non-2xx HTTP responses onto fetch outcomes. 429 and
// 5xx are worth retrying next cycle; the rest mean the endpoint itself is
// wrong or closed to us.
func classifyStatus(status int) domain.FetchOutcome {
	kind := fmt.Sprintf("http_%d", status)
	err := fmt.Errorf("unexpected status %d", status)

	switch {
	case status == http.StatusTooManyRequests || status == http.StatusRequestTimeout:
		return domain.TransientOutcome(kind, err)
	case status >= 500:
		return domain.TransientOutcome(kind, err)
	default:
		return domain.PermanentOutcome(kind, err)
	}
}
