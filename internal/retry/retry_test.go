package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/meetfetch/meetfetch/internal/logging"
)

// statusErr is a test error carrying an HTTP status code.
type statusErr struct {
	code int
}

func (e *statusErr) Error() string   { return fmt.Sprintf("status %d", e.code) }
func (e *statusErr) HTTPStatus() int { return e.code }

func TestConfig_ApplyDefaults(t *testing.T) {
	t.Run("applies all defaults when empty", func(t *testing.T) {
		config := &Config{}
		config.ApplyDefaults()

		assert.Equal(t, 3, config.MaxRetries)
		assert.Equal(t, time.Second, config.BaseDelay)
		assert.Equal(t, 30*time.Second, config.MaxDelay)
	})

	t.Run("preserves non-zero values", func(t *testing.T) {
		config := &Config{
			MaxRetries: 5,
			BaseDelay:  2 * time.Second,
			MaxDelay:   60 * time.Second,
		}
		config.ApplyDefaults()

		assert.Equal(t, 5, config.MaxRetries)
		assert.Equal(t, 2*time.Second, config.BaseDelay)
		assert.Equal(t, 60*time.Second, config.MaxDelay)
	})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Class
	}{
		{name: "nil", err: nil, expected: ClassFatal},
		{name: "rate limited 429", err: &statusErr{code: http.StatusTooManyRequests}, expected: ClassRateLimited},
		{name: "service unavailable 503", err: &statusErr{code: http.StatusServiceUnavailable}, expected: ClassTransient},
		{name: "internal error 500", err: &statusErr{code: http.StatusInternalServerError}, expected: ClassTransient},
		{name: "gateway timeout 504", err: &statusErr{code: http.StatusGatewayTimeout}, expected: ClassTransient},
		{name: "permission denied 403", err: &statusErr{code: http.StatusForbidden}, expected: ClassFatal},
		{name: "not found 404", err: &statusErr{code: http.StatusNotFound}, expected: ClassFatal},
		{name: "bad request 400", err: &statusErr{code: http.StatusBadRequest}, expected: ClassFatal},
		{name: "wrapped status code", err: fmt.Errorf("call failed: %w", &statusErr{code: 429}), expected: ClassRateLimited},
		{name: "deadline exceeded", err: context.DeadlineExceeded, expected: ClassTransient},
		{name: "net op error", err: &net.OpError{Op: "dial", Err: errors.New("connection refused")}, expected: ClassTransient},
		{name: "plain error", err: errors.New("boom"), expected: ClassFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.err))
		})
	}
}

func testConfig() Config {
	return Config{
		MaxRetries: 3,
		BaseDelay:  time.Millisecond,
		MaxDelay:   10 * time.Millisecond,
	}
}

func TestExecutor_Success(t *testing.T) {
	e := New(testConfig(), nil)

	callCount := 0
	err := e.Do(context.Background(), "list", func() error {
		callCount++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, callCount, "should succeed on first attempt")
}

func TestExecutor_SuccessAfterRetries(t *testing.T) {
	e := New(testConfig(), nil)

	callCount := 0
	err := e.Do(context.Background(), "list", func() error {
		callCount++
		if callCount < 3 {
			return &statusErr{code: http.StatusServiceUnavailable}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, callCount, "should succeed on 3rd attempt")
}

func TestExecutor_FatalReturnsImmediately(t *testing.T) {
	e := New(testConfig(), nil)

	callCount := 0
	failure := &statusErr{code: http.StatusForbidden}
	err := e.Do(context.Background(), "list", func() error {
		callCount++
		return failure
	})

	require.Error(t, err)
	assert.Same(t, failure, err.(*statusErr))
	assert.Equal(t, 1, callCount, "should not retry fatal errors")
}

func TestExecutor_ExhaustsRetries(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRetries = 2
	e := New(cfg, nil)

	callCount := 0
	failure := &statusErr{code: http.StatusServiceUnavailable}
	err := e.Do(context.Background(), "list", func() error {
		callCount++
		return failure
	})

	require.Error(t, err)
	// The last observed error is returned unchanged, not wrapped.
	assert.Same(t, failure, err.(*statusErr))
	assert.Equal(t, 3, callCount, "should try once + 2 retries = 3 total")
}

func TestExecutor_InvokesExactlyMaxAttempts(t *testing.T) {
	e := New(testConfig(), nil)

	callCount := 0
	err := e.Do(context.Background(), "list", func() error {
		callCount++
		return &statusErr{code: http.StatusServiceUnavailable}
	})

	require.Error(t, err)
	assert.Equal(t, 4, callCount, "1 initial + 3 retries")
}

func TestExecutor_BackoffDoubles(t *testing.T) {
	cfg := Config{
		MaxRetries: 3,
		BaseDelay:  10 * time.Millisecond,
		MaxDelay:   time.Second,
	}
	e := New(cfg, nil)

	start := time.Now()
	_ = e.Do(context.Background(), "list", func() error {
		return &statusErr{code: http.StatusServiceUnavailable}
	})
	duration := time.Since(start)

	// Backoffs: 10ms + 20ms + 40ms = 70ms minimum.
	assert.GreaterOrEqual(t, duration, 70*time.Millisecond)
}

func TestExecutor_MaxDelayCap(t *testing.T) {
	cfg := Config{
		MaxRetries: 2,
		BaseDelay:  20 * time.Millisecond,
		MaxDelay:   25 * time.Millisecond,
	}
	e := New(cfg, nil)

	start := time.Now()
	_ = e.Do(context.Background(), "list", func() error {
		return &statusErr{code: http.StatusServiceUnavailable}
	})
	duration := time.Since(start)

	// Backoffs: 20ms + 25ms (capped from 40ms). Well under 200ms total.
	assert.GreaterOrEqual(t, duration, 45*time.Millisecond)
	assert.Less(t, duration, 200*time.Millisecond)
}

func TestExecutor_ContextCanceled(t *testing.T) {
	cfg := Config{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxDelay:   time.Second,
	}
	e := New(cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	callCount := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := e.Do(ctx, "list", func() error {
		callCount++
		return &statusErr{code: http.StatusServiceUnavailable}
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, callCount, "should stop retrying once context is canceled")
}

func TestExecutor_RetryLogging(t *testing.T) {
	tl := logging.NewTestLogger()
	e := New(testConfig(), tl.Logger)

	calls := 0
	_ = e.Do(context.Background(), "list", func() error {
		calls++
		if calls == 1 {
			return &statusErr{code: http.StatusServiceUnavailable}
		}
		return &statusErr{code: http.StatusTooManyRequests}
	})

	// Transient retries log at info, rate-limit retries at warn.
	tl.AssertLogged(t, zapcore.InfoLevel, "retrying operation after transient error")
	tl.AssertLogged(t, zapcore.WarnLevel, "rate limited")
	tl.AssertLogged(t, zapcore.WarnLevel, "retries exhausted")
}
