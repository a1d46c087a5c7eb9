package verify

import "github.com/YuminosukeSato/pcaffine/pkg/log"

// Option is a function that configures a Checker
type Option func(*Checker)

// WithTolerance sets the absolute tolerance atol
func WithTolerance(atol float64) Option {
	return func(c *Checker) {
		c.atol = atol
	}
}

// WithRelativeTolerance sets the relative tolerance rtol, applied to |converted|
func WithRelativeTolerance(rtol float64) Option {
	return func(c *Checker) {
		c.rtol = rtol
	}
}

// WithBenchmarkRows appends a standard normal float32 sample of n rows,
// named "random", after the caller's samples. Zero disables it.
func WithBenchmarkRows(n int) Option {
	return func(c *Checker) {
		c.benchRows = n
	}
}

// WithSeed sets the seed of the generated benchmark sample
func WithSeed(seed uint64) Option {
	return func(c *Checker) {
		c.seed = seed
	}
}

// WithLogger sets the logger for per-sample results
func WithLogger(l log.Logger) Option {
	return func(c *Checker) {
		c.logger = l
	}
}
