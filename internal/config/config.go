// Package config loads the bloomcheck driver configuration from flags,
// BLOOMCHECK_* environment variables and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kwertop/bloomset/internal/logging"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the top level driver configuration.
type Config struct {
	Words    string         `mapstructure:"words" validate:"required"`
	Filter   FilterConfig   `mapstructure:"filter"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Evaluate EvaluateConfig `mapstructure:"evaluate"`
	Log      logging.Config `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// FilterConfig sizes the filter. A zero Capacity means the number of words read.
type FilterConfig struct {
	Backend           string  `mapstructure:"backend" validate:"oneof=memory redis"`
	Capacity          uint    `mapstructure:"capacity"`
	FalsePositiveRate float64 `mapstructure:"false_positive_rate" validate:"gt=0,lt=1"`
	Hash              string  `mapstructure:"hash" validate:"oneof=murmur3 murmur3x64 xxh3 metro"`
}

// RedisConfig is used when Filter.Backend is "redis".
type RedisConfig struct {
	URI  string `mapstructure:"uri"`
	Key  string `mapstructure:"key"`
	Keep bool   `mapstructure:"keep"` // leave the filter in Redis after the run
}

// EvaluateConfig controls how absent candidates are generated and queried.
type EvaluateConfig struct {
	Mode    string `mapstructure:"mode" validate:"oneof=reversed random"`
	Samples int    `mapstructure:"samples" validate:"gte=1"`
	Length  int    `mapstructure:"length" validate:"gte=1"`
	Workers int    `mapstructure:"workers" validate:"gte=1"`
	Seed    int64  `mapstructure:"seed"`
}

// MetricsConfig names a Prometheus textfile to write after the run.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

var defaults = map[string]any{
	"words":                      "words.txt",
	"filter.backend":             "memory",
	"filter.capacity":            0,
	"filter.false_positive_rate": 0.01,
	"filter.hash":                "murmur3",
	"redis.uri":                  "",
	"redis.key":                  "bloomcheck",
	"redis.keep":                 false,
	"evaluate.mode":              "reversed",
	"evaluate.samples":           100000,
	"evaluate.length":            8,
	"evaluate.workers":           4,
	"evaluate.seed":              1,
	"log.level":                  "info",
	"log.format":                 "json",
	"log.file":                   "",
	"log.max_size":               100,
	"log.max_backups":            3,
	"log.max_age":                7,
	"log.compress":               false,
	"metrics.textfile":           "",
}

// flagKeys maps command line flags onto configuration keys.
var flagKeys = map[string]string{
	"words":     "words",
	"backend":   "filter.backend",
	"capacity":  "filter.capacity",
	"fp-rate":   "filter.false_positive_rate",
	"hash":      "filter.hash",
	"redis-uri": "redis.uri",
	"redis-key": "redis.key",
	"mode":      "evaluate.mode",
	"samples":   "evaluate.samples",
	"workers":   "evaluate.workers",
	"seed":      "evaluate.seed",
	"log-level": "log.level",
	"metrics":   "metrics.textfile",
}

// NewFlagSet declares the bloomcheck command line flags.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("config", "", "path to a YAML configuration file")
	fs.String("words", "words.txt", "word list, one member per line")
	fs.String("backend", "memory", "filter storage: memory or redis")
	fs.Uint("capacity", 0, "expected number of members, 0 uses the number of words")
	fs.Float64("fp-rate", 0.01, "target false positive probability")
	fs.String("hash", "murmur3", "hash family: murmur3, murmur3x64, xxh3 or metro")
	fs.String("redis-uri", "", "redis:// URI for the redis backend")
	fs.String("redis-key", "bloomcheck", "redis key of the filter")
	fs.String("mode", "reversed", "absent candidates: reversed words or random strings")
	fs.Int("samples", 100000, "number of random candidates")
	fs.Int("workers", 4, "concurrent query workers")
	fs.Int64("seed", 1, "seed for random candidates")
	fs.String("log-level", "info", "debug, info, warn or error")
	fs.String("metrics", "", "write Prometheus metrics to this textfile")
	return fs
}

// Load parses args with fs and resolves the configuration. Flags override
// environment variables, which override the config file, which overrides
// the defaults.
func Load(fs *pflag.FlagSet, args []string) (*Config, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return nil, fmt.Errorf("bloomset: binding flag %q: %w", flag, err)
		}
	}
	v.SetEnvPrefix("BLOOMCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("bloomset: reading config %q: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("bloomset: decoding config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and the redis backend requirements.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("bloomset: invalid config: %w", err)
	}
	if cfg.Filter.Backend == "redis" {
		if cfg.Redis.URI == "" {
			return errors.New("bloomset: invalid config: redis.uri is required for the redis backend")
		}
		if cfg.Redis.Key == "" {
			return errors.New("bloomset: invalid config: redis.key is required for the redis backend")
		}
	}
	return nil
}
