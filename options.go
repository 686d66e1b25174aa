package efc

import (
	"log/slog"
	"time"
)

// Config holds the controller configuration.
type Config struct {
	// Logger receives debug and warning records (optional, DefaultLogger if nil)
	Logger *slog.Logger

	// Base is the address of the EFC register block
	Base uint32

	// PollLimit bounds the number of status reads per operation, 0 = unbounded
	PollLimit int

	// PollTimeout bounds the time spent polling status per operation, 0 = unbounded
	PollTimeout time.Duration
}

func defaultConfig() Config {
	return Config{
		Base: Base,
	}
}

// Option is a functional option for configuring the Controller.
type Option func(*Config)

// WithLogger sets the logger used by the controller.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithBase moves the register block, e.g. when a bridge maps it elsewhere.
func WithBase(base uint32) Option {
	return func(c *Config) {
		c.Base = base
	}
}

// WithPollLimit makes program and erase give up with a *PollTimeoutError
// after n status reads that all returned zero. The hardware itself never
// times out; by default the controller waits as long as it takes.
//
// Example:
//
//	c := efc.New(bus, clk, efc.WithPollLimit(1_000_000))
func WithPollLimit(n int) Option {
	return func(c *Config) {
		if n >= 0 {
			c.PollLimit = n
		}
	}
}

// WithPollTimeout is like WithPollLimit but bounds wall time. Useful over a
// bridge where the duration of a status read is known.
func WithPollTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d >= 0 {
			c.PollTimeout = d
		}
	}
}
