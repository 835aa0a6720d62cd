// Package retry runs fallible operations with exponential backoff, classifies
// their failures and keeps a bounded diagnostic log of every attempt.
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	goretry "github.com/sethvargo/go-retry"

	"github.com/andes-trip-manager/backend/internal/validation"
)

// Config controls the backoff schedule.
type Config struct {
	MaxAttempts     int           `json:"maxAttempts" validate:"gte=1,lte=20"`
	InitialDelay    time.Duration `json:"initialDelay" validate:"gte=0"`
	DelayMultiplier float64       `json:"delayMultiplier" validate:"gte=1"`
	MaxDelay        time.Duration `json:"maxDelay" validate:"gtefield=InitialDelay"`
}

// DefaultConfig is 3 attempts, 1s initial delay doubling up to 10s.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:     3,
		InitialDelay:    time.Second,
		DelayMultiplier: 2,
		MaxDelay:        10 * time.Second,
	}
}

// Validate reports a domain.ErrValidation-wrapped error for unusable values.
func (c Config) Validate() error {
	return validation.New().Validate(c)
}

// Delay returns the wait after failed attempt n (1-based) before the next one:
// min(InitialDelay * DelayMultiplier^(n-1), MaxDelay).
func (c Config) Delay(n int) time.Duration {
	if n < 1 {
		n = 1
	}
	d := float64(c.InitialDelay) * math.Pow(c.DelayMultiplier, float64(n-1))
	if math.IsInf(d, 0) || math.IsNaN(d) || d > float64(c.MaxDelay) {
		return c.MaxDelay
	}
	return time.Duration(d)
}

// Runner executes operations under a Config, recording every attempt to a Log.
type Runner struct {
	cfg        Config
	classifier *Classifier
	log        Log
	logger     *slog.Logger
	now        func() time.Time
}

// Option customises a Runner.
type Option func(*Runner)

// WithClassifier replaces the default classifier.
func WithClassifier(c *Classifier) Option {
	return func(r *Runner) { r.classifier = c }
}

// WithClock replaces time.Now for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// NewRunner validates cfg and builds a Runner. A nil log becomes NopLog and a
// nil logger discards output.
func NewRunner(cfg Config, log Log, logger *slog.Logger, opts ...Option) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("retry.NewRunner: %w", err)
	}
	if log == nil {
		log = NopLog{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := &Runner{
		cfg:        cfg,
		classifier: NewClassifier(),
		log:        log,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Config returns the runner's schedule.
func (r *Runner) Config() Config { return r.cfg }

// Classify classifies err with the runner's classifier.
func (r *Runner) Classify(err error) Classification { return r.classifier.Classify(err) }

// Log returns the sink the runner writes to.
func (r *Runner) Log() Log { return r.log }

// Run calls op until it succeeds, fails with a non-retryable classification,
// or MaxAttempts is reached; the last error is returned unwrapped. The wait
// between attempts is cut short when ctx is done, in which case ctx.Err() is
// returned.
func Run[T any](ctx context.Context, r *Runner, label string, op func(context.Context) (T, error)) (T, error) {
	var (
		result  T
		attempt int
	)
	start := r.now()

	err := goretry.Do(ctx, r.backoff(), func(ctx context.Context) error {
		attempt++
		r.record(Entry{Operation: label, Status: StatusStarted, Attempt: attempt}, start)

		v, err := op(ctx)
		if err == nil {
			result = v
			r.record(Entry{Operation: label, Status: StatusSuccess, Attempt: attempt}, start)
			attemptsTotal.WithLabelValues(string(StatusSuccess), "").Inc()
			return nil
		}

		c := r.classifier.Classify(err)
		if !c.CanRetry || attempt >= r.cfg.MaxAttempts {
			r.record(Entry{Operation: label, Status: StatusError, Attempt: attempt, Error: err.Error(), Kind: c.Kind}, start)
			attemptsTotal.WithLabelValues(string(StatusError), string(c.Kind)).Inc()
			r.logger.WarnContext(ctx, "operation failed",
				"operation", label, "attempt", attempt, "kind", c.Kind, "error", err)
			return err
		}

		next := r.cfg.Delay(attempt)
		r.record(Entry{
			Operation:   label,
			Status:      StatusRetry,
			Attempt:     attempt,
			Error:       err.Error(),
			Kind:        c.Kind,
			NextDelayMs: next.Milliseconds(),
		}, start)
		attemptsTotal.WithLabelValues(string(StatusRetry), string(c.Kind)).Inc()
		r.logger.DebugContext(ctx, "retrying operation",
			"operation", label, "attempt", attempt, "kind", c.Kind, "next_delay", next)
		return goretry.RetryableError(err)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// Do is Run for operations without a result.
func Do(ctx context.Context, r *Runner, label string, op func(context.Context) error) error {
	_, err := Run(ctx, r, label, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// backoff yields Delay(1), Delay(2), ... and stops after MaxAttempts-1 waits.
func (r *Runner) backoff() goretry.Backoff {
	n := 0
	b := goretry.BackoffFunc(func() (time.Duration, bool) {
		n++
		return r.cfg.Delay(n), false
	})
	return goretry.WithMaxRetries(uint64(r.cfg.MaxAttempts-1), b)
}

func (r *Runner) record(e Entry, start time.Time) {
	now := r.now()
	e.Timestamp = now
	e.ElapsedMs = now.Sub(start).Milliseconds()
	r.log.Append(e)
}
