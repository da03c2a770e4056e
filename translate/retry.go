package translate

import (
	"context"
	"math"
	"strings"
	"time"
)

// rateLimitMessage is the fixed message of RateLimitError.
const rateLimitMessage = "Rate limit exceeded. Maximum retry attempts reached."

// RateLimitError is returned when the provider keeps rate limiting after the
// retry budget is exhausted. Callers match it with errors.As to distinguish
// "provider is rate limited, give up" from other failures.
type RateLimitError struct{}

func (e *RateLimitError) Error() string {
	return rateLimitMessage
}

// maxAttempts is the total invocation budget: 1 initial attempt + 2 retries.
const maxAttempts = 3

// baseRetryDelay is the backoff unit. A variable so tests can shorten it.
var baseRetryDelay = time.Second

// errKind is the closed classification of invocation failures.
type errKind int

const (
	errFatal errKind = iota
	errRateLimited
)

// rateLimitIndicators are matched case-insensitively against error messages.
var rateLimitIndicators = []string{
	"429",
	"rate limit",
	"resource exhausted",
	"quota",
}

// classify decides whether an invocation error is a retryable rate limit or
// a fatal failure, by inspecting the error message text. The substring
// heuristics live only here.
func classify(err error) errKind {
	if err == nil {
		return errFatal
	}
	msg := strings.ToLower(err.Error())
	for _, indicator := range rateLimitIndicators {
		if strings.Contains(msg, indicator) {
			return errRateLimited
		}
	}
	return errFatal
}

// invokeWithRetry wraps a single model invocation with rate-limit
// classification and exponential backoff. Rate-limited failures are retried
// up to maxAttempts total invocations, then reported as *RateLimitError.
// Any other failure is surfaced immediately and unchanged.
func invokeWithRetry(ctx context.Context, inv Invoker, prompt string) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			wait := time.Duration(math.Pow(2, float64(attempt-1))) * baseRetryDelay
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
		}

		text, err := inv.Invoke(ctx, prompt)
		if err == nil {
			return text, nil
		}
		if classify(err) != errRateLimited {
			return "", err
		}
	}
	return "", &RateLimitError{}
}
