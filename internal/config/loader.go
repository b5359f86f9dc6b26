package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. BLUEPRINT_ENGINE_MAX_STEPS
const EnvPrefix = "BLUEPRINT"

var searchPaths = []string{
	"./blueprint.yml",
	"./config/blueprint.yml",
	"./cmd/blueprintd/config.yml",
}

// LoaderConfig holds optional file overrides.
type LoaderConfig struct {
	ConfigFile string
	EnvFile    string
}

type LoaderOption func(*LoaderConfig)

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// Load reads defaults, then the YAML config file, then the environment
// (including a .env file), applies defaults and validates the result.
func Load(opt ...LoaderOption) (*Config, error) {
	lc := LoaderConfig{EnvFile: ".env"}
	for _, o := range opt {
		o(&lc)
	}

	v := viper.New()
	setDefaults(v)

	configFile := lc.ConfigFile
	if configFile == "" {
		configFile = findConfigFile()
	} else if !exists(configFile) {
		return nil, errors.Errorf("config file %s not found", configFile)
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", configFile)
		}
	}

	// .env never overrides variables already set in the environment
	if lc.EnvFile != "" && exists(lc.EnvFile) {
		if err := godotenv.Load(lc.EnvFile); err != nil {
			return nil, errors.Wrapf(err, "failed to load env file %s", lc.EnvFile)
		}
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.no_color", false)
	v.SetDefault("log.timestamp", true)
	v.SetDefault("log.caller", false)
	v.SetDefault("engine.max_steps", 10000)
	v.SetDefault("engine.timeout_seconds", 0)
	v.SetDefault("engine.pure_cache", "resolution")
	v.SetDefault("engine.debug", false)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("store.driver", DriverFile)
	v.SetDefault("store.dir", defaultStoreDir())
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "blueprintd")
	v.SetDefault("telemetry.endpoint", "")
	v.SetDefault("telemetry.insecure", true)
	v.SetDefault("telemetry.sample_rate", 1.0)
	v.SetDefault("telemetry.metric_interval_seconds", 15)
}

func findConfigFile() string {
	for _, path := range searchPaths {
		if exists(path) {
			return path
		}
	}
	return ""
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
