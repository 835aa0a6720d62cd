package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andes-trip-manager/backend/internal/domain"
	"github.com/andes-trip-manager/backend/internal/retry"
)

// codedError mimics a document-store error that carries its own code.
type codedError struct{ code string }

func (e codedError) Error() string { return "backend error: " + e.code }
func (e codedError) Code() string  { return e.code }

func fastConfig() retry.Config {
	return retry.Config{
		MaxAttempts:     3,
		InitialDelay:    10 * time.Millisecond,
		DelayMultiplier: 2,
		MaxDelay:        time.Second,
	}
}

func newRunner(t *testing.T, cfg retry.Config) (*retry.Runner, *retry.RingLog) {
	t.Helper()
	log := retry.NewRingLog(0)
	r, err := retry.NewRunner(cfg, log, nil)
	require.NoError(t, err)
	return r, log
}

func TestConfig_Delay_DefaultSchedule(t *testing.T) {
	cfg := retry.DefaultConfig()

	assert.Equal(t, 1000*time.Millisecond, cfg.Delay(1))
	assert.Equal(t, 2000*time.Millisecond, cfg.Delay(2))
	assert.Equal(t, 4000*time.Millisecond, cfg.Delay(3))
	assert.Equal(t, 10*time.Second, cfg.Delay(10), "capped at MaxDelay")
}

func TestConfig_Validate_RejectsZeroAttempts(t *testing.T) {
	cfg := retry.DefaultConfig()
	cfg.MaxAttempts = 0

	err := cfg.Validate()

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestNewRunner_InvalidConfig(t *testing.T) {
	cfg := retry.DefaultConfig()
	cfg.DelayMultiplier = 0.5

	_, err := retry.NewRunner(cfg, nil, nil)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRun_SucceedsFirstTime(t *testing.T) {
	r, log := newRunner(t, fastConfig())
	calls := 0

	got, err := retry.Run(context.Background(), r, "read trip", func(context.Context) (string, error) {
		calls++
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 1, calls)
	entries := log.Query(retry.Filter{})
	require.Len(t, entries, 2)
	assert.Equal(t, retry.StatusSuccess, entries[0].Status)
	assert.Equal(t, retry.StatusStarted, entries[1].Status)
}

func TestRun_RetryableFailure_StopsAfterMaxAttempts(t *testing.T) {
	r, log := newRunner(t, fastConfig())
	calls := 0
	boom := codedError{code: "unavailable"}

	_, err := retry.Run(context.Background(), r, "read stops", func(context.Context) (int, error) {
		calls++
		return 0, boom
	})

	assert.Equal(t, boom, err)
	assert.Equal(t, 3, calls)

	retries := log.Query(retry.Filter{Status: retry.StatusRetry})
	require.Len(t, retries, 2)
	// newest first
	assert.Equal(t, int64(20), retries[0].NextDelayMs)
	assert.Equal(t, int64(10), retries[1].NextDelayMs)

	final := log.Query(retry.Filter{Status: retry.StatusError})
	require.Len(t, final, 1)
	assert.Equal(t, 3, final[0].Attempt)
	assert.Equal(t, retry.KindNetwork, final[0].Kind)
}

func TestRun_WaitsBetweenAttempts(t *testing.T) {
	r, _ := newRunner(t, fastConfig())
	calls := 0

	start := time.Now()
	_, err := retry.Run(context.Background(), r, "slow", func(context.Context) (int, error) {
		calls++
		return 0, codedError{code: "internal"}
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestRun_NonRetryable_SingleAttempt(t *testing.T) {
	r, log := newRunner(t, fastConfig())
	calls := 0

	_, err := retry.Run(context.Background(), r, "write cost", func(context.Context) (int, error) {
		calls++
		return 0, codedError{code: "permission-denied"}
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, log.Query(retry.Filter{Status: retry.StatusRetry}))
}

func TestRun_RecoversOnSecondAttempt(t *testing.T) {
	r, _ := newRunner(t, fastConfig())
	calls := 0

	got, err := retry.Run(context.Background(), r, "flaky", func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("network connection reset")
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 2, calls)
}

func TestRun_ContextCancelledDuringWait(t *testing.T) {
	cfg := fastConfig()
	cfg.InitialDelay = time.Hour
	cfg.MaxDelay = time.Hour
	r, _ := newRunner(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := retry.Run(ctx, r, "stuck", func(context.Context) (int, error) {
		return 0, codedError{code: "unavailable"}
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDo(t *testing.T) {
	r, _ := newRunner(t, fastConfig())

	err := retry.Do(context.Background(), r, "delete", func(context.Context) error {
		return domain.ErrForbidden
	})

	assert.ErrorIs(t, err, domain.ErrForbidden)
}
