package engine

import "github.com/avi3tal/blueprint/pkg/types"

const (
	defaultMaxSteps = 10000
	defaultTimeout  = 0
)

// NewConfig returns the default pass configuration with opts applied
func NewConfig(opt ...ConfigOption) types.Config {
	cfg := types.Config{
		MaxSteps:  defaultMaxSteps,
		Timeout:   defaultTimeout,
		PureCache: types.PureCacheResolution,
	}
	for _, o := range opt {
		o(&cfg)
	}
	return cfg
}

type ConfigOption func(*types.Config)

// WithMaxSteps sets the maximum number of node executions per pass
func WithMaxSteps(steps int) ConfigOption {
	return func(c *types.Config) {
		c.MaxSteps = steps
	}
}

// WithTimeout sets the pass timeout in seconds
func WithTimeout(timeout int) ConfigOption {
	return func(c *types.Config) {
		c.Timeout = timeout
	}
}

// WithPureCache sets how long pure node values are memoized
func WithPureCache(mode types.PureCache) ConfigOption {
	return func(c *types.Config) {
		c.PureCache = mode
	}
}

// WithDebug enables logging of every status transition
func WithDebug() ConfigOption {
	return func(c *types.Config) {
		c.Debug = true
	}
}
