// Package retry wraps remote calls with classified-failure retries and
// bounded exponential backoff.
package retry

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/meetfetch/meetfetch/internal/logging"
)

// Config configures retry behavior for remote API calls.
type Config struct {
	// MaxRetries is the maximum number of retry attempts after the first
	// call. Default: 3
	MaxRetries int `koanf:"max_retries"`

	// BaseDelay is the initial backoff duration; attempt n waits
	// BaseDelay * 2^n. Default: 1 second
	BaseDelay time.Duration `koanf:"base_delay"`

	// MaxDelay caps the computed backoff. Default: 30 seconds
	MaxDelay time.Duration `koanf:"max_delay"`
}

// DefaultConfig returns the default retry configuration.
func DefaultConfig() Config {
	return Config{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxDelay:   30 * time.Second,
	}
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	defaults := DefaultConfig()

	if c.MaxRetries == 0 {
		c.MaxRetries = defaults.MaxRetries
	}
	if c.BaseDelay == 0 {
		c.BaseDelay = defaults.BaseDelay
	}
	if c.MaxDelay == 0 {
		c.MaxDelay = defaults.MaxDelay
	}
}

// Validate validates the retry configuration.
func (c *Config) Validate() error {
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be >= 0, got %d", c.MaxRetries)
	}
	if c.BaseDelay < 0 {
		return fmt.Errorf("base_delay must be >= 0, got %s", c.BaseDelay)
	}
	if c.MaxDelay < 0 {
		return fmt.Errorf("max_delay must be >= 0, got %s", c.MaxDelay)
	}
	return nil
}

// Executor retries operations whose failures classify as retryable.
type Executor struct {
	config Config
	logger *logging.Logger
}

// New creates an Executor. A nil logger disables retry logging.
func New(config Config, logger *logging.Logger) *Executor {
	config.ApplyDefaults()
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Executor{config: config, logger: logger}
}

// Do invokes op, retrying transient and rate-limited failures up to
// MaxRetries times with exponential backoff. Fatal failures return
// immediately. After exhausting retries the last observed error is returned
// unchanged, so callers see the original classification.
func (e *Executor) Do(ctx context.Context, name string, op func() error) error {
	var lastErr error
	startTime := time.Now()

	for attempt := 0; attempt <= e.config.MaxRetries; attempt++ {
		err := op()
		if err == nil {
			if attempt > 0 {
				e.logger.Info(ctx, "operation recovered after retries",
					zap.String("operation", name),
					zap.Int("attempts", attempt),
					zap.Duration("total_time", time.Since(startTime)),
				)
			}
			return nil
		}

		lastErr = err

		class := Classify(err)
		if class == ClassFatal {
			return err
		}

		if attempt == e.config.MaxRetries {
			break
		}

		backoff := e.backoff(attempt)

		if class == ClassRateLimited {
			e.logger.Warn(ctx, "rate limited, retrying operation",
				zap.String("operation", name),
				zap.Int("attempt", attempt+1),
				zap.Int("max_attempts", e.config.MaxRetries+1),
				zap.Duration("backoff", backoff),
			)
		} else {
			e.logger.Info(ctx, "retrying operation after transient error",
				zap.String("operation", name),
				zap.Int("attempt", attempt+1),
				zap.Int("max_attempts", e.config.MaxRetries+1),
				zap.Error(err),
				zap.Duration("backoff", backoff),
			)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}

	e.logger.Warn(ctx, "operation failed after all retries exhausted",
		zap.String("operation", name),
		zap.Int("total_attempts", e.config.MaxRetries+1),
		zap.Duration("total_time", time.Since(startTime)),
		zap.Error(lastErr),
	)

	return lastErr
}

// backoff computes the delay for the given zero-based attempt, capped at
// MaxDelay.
func (e *Executor) backoff(attempt int) time.Duration {
	d := e.config.BaseDelay << uint(attempt)
	if d > e.config.MaxDelay || d <= 0 {
		d = e.config.MaxDelay
	}
	return d
}
