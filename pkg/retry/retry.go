package retry

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = time.Second

	// Rate-limited calls start the backoff ladder at four times the
	// current delay instead of the delay itself.
	rateLimitMultiplier = 4
)

// Retrier re-invokes a failed operation with exponentially growing waits.
// No jitter, no circuit breaker: wait, double, repeat until retries run out.
type Retrier struct {
	MaxRetries int
	BaseDelay  time.Duration

	sleep func(context.Context, time.Duration) error
}

func New(maxRetries int, baseDelay time.Duration) *Retrier {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if baseDelay <= 0 {
		baseDelay = DefaultBaseDelay
	}
	return &Retrier{
		MaxRetries: maxRetries,
		BaseDelay:  baseDelay,
		sleep:      sleepCtx,
	}
}

// Do runs fn, retrying on failure until MaxRetries attempts have been
// re-issued. After each failure it sleeps the current wait and doubles it
// for the next round; a failure classified as a rate limit restarts the
// current wait at four times its value. Exhausting retries returns the last
// error unchanged. If ctx is cancelled during a wait, the context error is
// returned instead.
func (r *Retrier) Do(ctx context.Context, op string, fn func(context.Context) error) error {
	retries := r.MaxRetries
	base := r.BaseDelay
	for {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if retries <= 0 {
			return err
		}

		wait := base
		if IsRateLimit(err) {
			wait = base * rateLimitMultiplier
			if hint, ok := resetHint(err); ok {
				slog.Warn("rate limited", "op", op, "resets_at", hint)
			}
		}
		slog.Warn("retrying after failure", "op", op, "error", err, "wait", wait, "retries_left", retries)

		if serr := r.sleep(ctx, wait); serr != nil {
			return serr
		}
		retries--
		base = wait * 2
	}
}

// IsRateLimit reports whether err looks like an upstream rate-limit
// rejection: an HTTP 429 status carried by the error, or a message
// mentioning 429 or quota.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) && sc.StatusCode() == http.StatusTooManyRequests {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota")
}

var resetRe = regexp.MustCompile(`(?i)resets? at ([^,\n]+)`)

// resetHint pulls the "resets at ..." timestamp some providers embed in
// rate-limit messages. The hint is only logged, never used for the wait.
func resetHint(err error) (string, bool) {
	m := resetRe.FindStringSubmatch(err.Error())
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
