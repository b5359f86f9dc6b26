package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/avi3tal/blueprint/internal/logger"
	"github.com/avi3tal/blueprint/internal/telemetry"
	"github.com/avi3tal/blueprint/pkg/types"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

const (
	DriverMemory = "memory"
	DriverFile   = "file"
)

// Config is the blueprintd configuration.
type Config struct {
	Log    logger.Config `yaml:"log" mapstructure:"log"`
	Engine EngineConfig  `yaml:"engine" mapstructure:"engine"`
	Server ServerConfig  `yaml:"server" mapstructure:"server"`
	Store  StoreConfig   `yaml:"store" mapstructure:"store"`

	Telemetry telemetry.Config `yaml:"telemetry" mapstructure:"telemetry"`
}

// EngineConfig bounds and tunes every pass.
type EngineConfig struct {
	MaxSteps       int    `yaml:"max_steps" mapstructure:"max_steps" validate:"min=0"`
	TimeoutSeconds int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds" validate:"min=0"`
	PureCache      string `yaml:"pure_cache" mapstructure:"pure_cache" validate:"oneof=resolution pass"`
	Debug          bool   `yaml:"debug" mapstructure:"debug"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr" validate:"required"`
}

// StoreConfig selects where projects are kept.
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver" validate:"oneof=memory file"`
	Dir    string `yaml:"dir" mapstructure:"dir" validate:"required_if=Driver file"`
}

// PassConfig converts the engine section into a pass configuration
func (c EngineConfig) PassConfig() types.Config {
	return types.Config{
		MaxSteps:  c.MaxSteps,
		Timeout:   c.TimeoutSeconds,
		PureCache: types.PureCache(c.PureCache),
		Debug:     c.Debug,
	}
}

// ApplyDefaults fills every unset field.
func (c *Config) ApplyDefaults() {
	c.Log.ApplyDefaults()
	if c.Engine.MaxSteps == 0 {
		c.Engine.MaxSteps = 10000
	}
	if c.Engine.PureCache == "" {
		c.Engine.PureCache = string(types.PureCacheResolution)
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Store.Driver == "" {
		c.Store.Driver = DriverFile
	}
	if c.Store.Dir == "" {
		c.Store.Dir = defaultStoreDir()
	}
	c.Store.Dir = expandHome(c.Store.Dir)
	c.Telemetry.ApplyDefaults()
}

// Validate checks field constraints and the logging section.
func (c *Config) Validate() error {
	if err := getValidator().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fe.Namespace()+" failed on "+fe.Tag())
			}
			return errors.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return errors.Wrap(err, "invalid config")
	}
	return c.Log.Validate()
}

var (
	validate *validator.Validate
	once     sync.Once
)

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

func defaultStoreDir() string {
	return filepath.Join("~", ".strella")
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
