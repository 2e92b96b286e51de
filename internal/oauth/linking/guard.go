// Package linking implements the OAuth account-linking callback,
// including the idempotency guard that deduplicates concurrent
// redemptions of a single authorization code.
package linking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/welldanyogia/webrana-briefing-backend/internal/cache"
)

// Guard timings. The lock TTL bounds the worst-case wait when a holder
// crashes without releasing; the result TTL is long enough to catch
// delayed duplicates without leaking state indefinitely.
const (
	resultTTL    = time.Hour
	lockTTL      = 60 * time.Second
	pollInterval = 500 * time.Millisecond
	pollTimeout  = 30 * time.Second
)

// Outcome is the terminal result of a linking flow, cached per nonce so
// duplicate callbacks replay it instead of re-redeeming the code.
type Outcome struct {
	Success          string `json:"success,omitempty"`
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// Failed reports whether the outcome is an error.
func (o Outcome) Failed() bool {
	return o.Error != ""
}

// Guard serializes concurrent callbacks sharing one nonce: the first
// caller acquires the lock and runs the flow, later callers wait for its
// cached outcome.
type Guard struct {
	store        cache.Store
	logger       *slog.Logger
	pollInterval time.Duration
	pollTimeout  time.Duration
}

// NewGuard creates a Guard over the given store.
func NewGuard(store cache.Store, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{
		store:        store,
		logger:       logger,
		pollInterval: pollInterval,
		pollTimeout:  pollTimeout,
	}
}

func resultKey(provider, nonce string) string {
	return fmt.Sprintf("oauth-result:%s:%s", provider, nonce)
}

func lockKey(provider, nonce string) string {
	return fmt.Sprintf("oauth-lock:%s:%s", provider, nonce)
}

// CachedOutcome returns the completed outcome for a nonce, if any.
func (g *Guard) CachedOutcome(ctx context.Context, provider, nonce string) (*Outcome, error) {
	value, err := g.store.Get(ctx, resultKey(provider, nonce))
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var outcome Outcome
	if err := json.Unmarshal([]byte(value), &outcome); err != nil {
		// A corrupted cache entry falls through to a fresh attempt.
		g.logger.Error("failed to parse cached OAuth outcome",
			slog.String("nonce", nonce),
			slog.String("error", err.Error()))
		return nil, nil
	}
	return &outcome, nil
}

// SaveOutcome records the terminal outcome for a nonce.
func (g *Guard) SaveOutcome(ctx context.Context, provider, nonce string, outcome Outcome) {
	data, err := json.Marshal(outcome)
	if err != nil {
		return
	}
	if err := g.store.Set(ctx, resultKey(provider, nonce), string(data), resultTTL); err != nil {
		g.logger.Warn("failed to cache OAuth outcome",
			slog.String("nonce", nonce),
			slog.String("error", err.Error()))
	}
}

// AcquireLock attempts to take the nonce lock. Returns true for the first
// caller; subsequent callers should wait for the outcome instead.
func (g *Guard) AcquireLock(ctx context.Context, provider, nonce string) (bool, error) {
	return g.store.SetIfAbsent(ctx, lockKey(provider, nonce), "1", lockTTL)
}

// ReleaseLock deletes the nonce lock. Called on every terminal path,
// including errors, so a nonce can never stay wedged past the lock TTL.
func (g *Guard) ReleaseLock(ctx context.Context, provider, nonce string) {
	if err := g.store.Delete(ctx, lockKey(provider, nonce)); err != nil {
		g.logger.Warn("failed to release OAuth lock",
			slog.String("nonce", nonce),
			slog.String("error", err.Error()))
	}
}

// AwaitOutcome polls for the lock holder's outcome at a fixed interval up
// to a bounded ceiling. A nil return means the wait timed out; the caller
// reports that as a distinct error rather than retrying.
func (g *Guard) AwaitOutcome(ctx context.Context, provider, nonce string) (*Outcome, error) {
	deadline := time.Now().Add(g.pollTimeout)
	ticker := time.NewTicker(g.pollInterval)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		outcome, err := g.CachedOutcome(ctx, provider, nonce)
		if err != nil {
			return nil, err
		}
		if outcome != nil {
			return outcome, nil
		}
	}

	return nil, nil
}
