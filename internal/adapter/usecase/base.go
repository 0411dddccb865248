package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"

	"sponsorhub/internal/core/apperr"
	"sponsorhub/internal/core/domain"
)

// Option tunes the shared behaviour of every use case.
type Option func(*options)

type options struct {
	logger       *slog.Logger
	now          func() time.Time
	maxTries     uint
	initialDelay time.Duration
}

func defaultOptions() options {
	return options{
		logger:       slog.Default(),
		now:          func() time.Time { return time.Now().UTC() },
		maxTries:     3,
		initialDelay: 50 * time.Millisecond,
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// WithLogger sets the audit and diagnostics logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithRetry bounds the retry of idempotent reads that fail with a storage
// error. maxTries of 1 disables retrying.
func WithRetry(maxTries uint, initialDelay time.Duration) Option {
	return func(o *options) {
		if maxTries > 0 {
			o.maxTries = maxTries
		}
		if initialDelay > 0 {
			o.initialDelay = initialDelay
		}
	}
}

// audit writes one mutation record attributed to the caller.
func (o options) audit(ctx context.Context, entity, id, action string, attrs ...any) {
	actor := "anonymous"
	if p, ok := domain.PrincipalFrom(ctx); ok {
		actor = p.UserID
	}
	args := append([]any{
		slog.String("entity", entity),
		slog.String("id", id),
		slog.String("action", action),
		slog.String("actor", actor),
		slog.Time("at", o.now()),
	}, attrs...)
	o.logger.InfoContext(ctx, "audit", args...)
}

func principal(ctx context.Context) (domain.Principal, error) {
	p, ok := domain.PrincipalFrom(ctx)
	if !ok {
		return domain.Principal{}, apperr.Forbidden("no caller identity")
	}
	return p, nil
}

func requireAdmin(ctx context.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	if !p.IsAdmin() {
		return apperr.Forbidden("operation requires the admin role")
	}
	return nil
}

// scopeSponsor resolves the sponsor a read is restricted to. Admins keep
// the requested sponsor (possibly empty, meaning all); sponsor principals
// are pinned to their own.
func scopeSponsor(ctx context.Context, requested string) (string, error) {
	p, err := principal(ctx)
	if err != nil {
		return "", err
	}
	if p.IsAdmin() {
		return requested, nil
	}
	if p.SponsorID == "" || (requested != "" && requested != p.SponsorID) {
		return "", apperr.Forbidden("sponsor may only access its own records")
	}
	return p.SponsorID, nil
}

// canSee hides records of other sponsors behind NotFound so their
// existence is not disclosed.
func canSee(ctx context.Context, entity, id, ownerID string) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	if !p.CanSee(ownerID) {
		return apperr.NotFound(entity, id)
	}
	return nil
}

// retryRead runs an idempotent read, retrying storage failures with
// exponential backoff. Any other error is returned at once.
func retryRead[T any](ctx context.Context, o options, op func() (T, error)) (T, error) {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = o.initialDelay
	eb.MaxInterval = 20 * o.initialDelay
	return backoff.Retry(ctx, func() (T, error) {
		v, err := op()
		if err != nil && !apperr.Retryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, backoff.WithBackOff(eb), backoff.WithMaxTries(o.maxTries))
}
