package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"kakeibo/internal/core"
)

// RetryStore decorates a Store with bounded retry and exponential backoff.
// Once attempts are exhausted the failure surfaces as core.ErrUnavailable.
// Retry never reorders operations: each call completes (or fails) before
// the caller issues the next one.
type RetryStore struct {
	inner    Store
	attempts int
	backoff  time.Duration
}

// NewRetryStore wraps inner. attempts is the total number of tries per
// operation; backoff is the initial delay, doubled after each failure.
func NewRetryStore(inner Store, attempts int, backoff time.Duration) *RetryStore {
	if attempts < 1 {
		attempts = 1
	}
	if backoff <= 0 {
		backoff = 50 * time.Millisecond
	}
	return &RetryStore{inner: inner, attempts: attempts, backoff: backoff}
}

func (s *RetryStore) Put(ctx context.Context, rec Record) error {
	return s.do(ctx, "put", func() error {
		return s.inner.Put(ctx, rec)
	})
}

func (s *RetryStore) Get(ctx context.Context, pk, sk string) (*Record, error) {
	var rec *Record
	err := s.do(ctx, "get", func() error {
		var err error
		rec, err = s.inner.Get(ctx, pk, sk)
		return err
	})
	return rec, err
}

func (s *RetryStore) Delete(ctx context.Context, pk, sk string) error {
	return s.do(ctx, "delete", func() error {
		return s.inner.Delete(ctx, pk, sk)
	})
}

func (s *RetryStore) Query(ctx context.Context, pk string, opts QueryOptions) ([]Record, error) {
	var recs []Record
	err := s.do(ctx, "query", func() error {
		var err error
		recs, err = s.inner.Query(ctx, pk, opts)
		return err
	})
	return recs, err
}

func (s *RetryStore) Scan(ctx context.Context, filter func(Record) bool) ([]Record, error) {
	var recs []Record
	err := s.do(ctx, "scan", func() error {
		var err error
		recs, err = s.inner.Scan(ctx, filter)
		return err
	})
	return recs, err
}

func (s *RetryStore) do(ctx context.Context, op string, fn func() error) error {
	var lastErr error
	delay := s.backoff

	for attempt := 1; attempt <= s.attempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if attempt == s.attempts {
			break
		}

		slog.WarnContext(ctx, "Store operation failed, retrying",
			"operation", op,
			"attempt", attempt,
			"backoff", delay,
			"error", lastErr)

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", op, ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}

	return fmt.Errorf("%s after %d attempts: %v: %w", op, s.attempts, lastErr, core.ErrUnavailable)
}
