package resilience

import "time"

// Config tunes retries and breaking. RetryMaxAttempts of 1 disables retries,
// which is what generation calls use: the fallback content is their retry.
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
		RetryMaxAttempts:    1,
		RetryInitialBackoff: 100 * time.Millisecond,
		RetryMaxBackoff:     400 * time.Millisecond,
		RetryMultiplier:     2.0,

		BreakerEnabled:          true,
		BreakerMinRequests:      5,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      30 * time.Second,
		BreakerHalfOpenMaxCalls: 2,
	}
}

// PublishConfig is tuned for broker publishes, which are cheap to repeat.
func PublishConfig() Config {
	cfg := DefaultConfig()
	cfg.RetryMaxAttempts = 3
	cfg.BreakerMinRequests = 10
	return cfg
}

// GenerationConfig makes a single attempt per LLM call. The breaker stays open
// for at least one call timeout before probing the provider again.
func GenerationConfig(breakerEnabled bool, callTimeout time.Duration) Config {
	cfg := DefaultConfig()
	cfg.BreakerEnabled = breakerEnabled
	cfg.BreakerOpenTimeout = max(cfg.BreakerOpenTimeout, callTimeout)
	return cfg
}

func (c Config) normalize() Config {
	def := DefaultConfig()
	out := c
	out.RetryMaxAttempts = orDefault(out.RetryMaxAttempts, def.RetryMaxAttempts)
	out.RetryInitialBackoff = orDefault(out.RetryInitialBackoff, def.RetryInitialBackoff)
	out.RetryMaxBackoff = max(orDefault(out.RetryMaxBackoff, def.RetryMaxBackoff), out.RetryInitialBackoff)
	if out.RetryMultiplier < 1.0 {
		out.RetryMultiplier = def.RetryMultiplier
	}

	out.BreakerMinRequests = orDefault(out.BreakerMinRequests, def.BreakerMinRequests)
	if out.BreakerFailureRatio > 1 {
		out.BreakerFailureRatio = def.BreakerFailureRatio
	}
	out.BreakerFailureRatio = orDefault(out.BreakerFailureRatio, def.BreakerFailureRatio)
	out.BreakerOpenTimeout = orDefault(out.BreakerOpenTimeout, def.BreakerOpenTimeout)
	out.BreakerHalfOpenMaxCalls = orDefault(out.BreakerHalfOpenMaxCalls, def.BreakerHalfOpenMaxCalls)
	return out
}

func orDefault[T ~int | ~int64 | ~uint32 | ~float64](v, def T) T {
	if v <= 0 {
		return def
	}
	return v
}
