package resilience

import (
	"fmt"
	"time"
)

// Config is the retry and circuit breaker policy shared by outbound adapters.
// Zero values fall back to DefaultConfig.
type Config struct {
	RetryMaxAttempts    int
	RetryInitialBackoff time.Duration
	RetryMaxBackoff     time.Duration
	RetryMultiplier     float64

	BreakerEnabled          bool
	BreakerMinRequests      uint32
	BreakerFailureRatio     float64
	BreakerOpenTimeout      time.Duration
	BreakerHalfOpenMaxCalls uint32
}

func DefaultConfig() Config {
	return Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: 100 * time.Millisecond,
		RetryMaxBackoff:     400 * time.Millisecond,
		RetryMultiplier:     2.0,

		BreakerEnabled:          true,
		BreakerMinRequests:      10,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      30 * time.Second,
		BreakerHalfOpenMaxCalls: 2,
	}
}

// Validate rejects values that normalize would silently replace.
func (c Config) Validate() error {
	if c.RetryMaxAttempts < 0 {
		return fmt.Errorf("retry max attempts must be >= 0, got %d", c.RetryMaxAttempts)
	}
	if c.RetryInitialBackoff < 0 || c.RetryMaxBackoff < 0 {
		return fmt.Errorf("retry backoff must be >= 0")
	}
	if c.RetryMultiplier != 0 && c.RetryMultiplier < 1 {
		return fmt.Errorf("retry multiplier must be >= 1, got %v", c.RetryMultiplier)
	}
	if c.BreakerFailureRatio < 0 || c.BreakerFailureRatio > 1 {
		return fmt.Errorf("breaker failure ratio must be within [0,1], got %v", c.BreakerFailureRatio)
	}
	if c.BreakerOpenTimeout < 0 {
		return fmt.Errorf("breaker open timeout must be >= 0")
	}
	return nil
}

func (c Config) normalize() Config {
	out := c
	def := DefaultConfig()

	if out.RetryMaxAttempts <= 0 {
		out.RetryMaxAttempts = def.RetryMaxAttempts
	}
	if out.RetryInitialBackoff <= 0 {
		out.RetryInitialBackoff = def.RetryInitialBackoff
	}
	if out.RetryMaxBackoff <= 0 {
		out.RetryMaxBackoff = def.RetryMaxBackoff
	}
	if out.RetryMaxBackoff < out.RetryInitialBackoff {
		out.RetryMaxBackoff = out.RetryInitialBackoff
	}
	if out.RetryMultiplier < 1.0 {
		out.RetryMultiplier = def.RetryMultiplier
	}

	if out.BreakerMinRequests == 0 {
		out.BreakerMinRequests = def.BreakerMinRequests
	}
	if out.BreakerFailureRatio <= 0 || out.BreakerFailureRatio > 1 {
		out.BreakerFailureRatio = def.BreakerFailureRatio
	}
	if out.BreakerOpenTimeout <= 0 {
		out.BreakerOpenTimeout = def.BreakerOpenTimeout
	}
	if out.BreakerHalfOpenMaxCalls == 0 {
		out.BreakerHalfOpenMaxCalls = def.BreakerHalfOpenMaxCalls
	}

	return out
}
