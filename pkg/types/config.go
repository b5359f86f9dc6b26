package types

// PureCache selects how long a pure node's value is memoized
type PureCache string

const (
	// PureCacheResolution evaluates a pure node at most once per consuming
	// node execution, so setter writes are visible to the next consumer.
	PureCacheResolution PureCache = "resolution"
	// PureCachePass evaluates a pure node at most once per pass.
	PureCachePass PureCache = "pass"
)

// Config represents runtime configuration for a pass
type Config struct {
	MaxSteps  int       // Maximum number of node executions per pass
	Timeout   int       // Timeout in seconds, 0 disables it
	PureCache PureCache // Memoization scope for pure nodes
	Debug     bool      // Log every status transition
}

func (c *Config) Clone() Config {
	return Config{
		MaxSteps:  c.MaxSteps,
		Timeout:   c.Timeout,
		PureCache: c.PureCache,
		Debug:     c.Debug,
	}
}
