package config

import (
	"log/slog"
	"net"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/viper"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// DefaultTimeoutMS is the per-attempt timeout applied when the configured
// value is absent, non-numeric, or non-positive.
const DefaultTimeoutMS = 500

type ServerConfig struct {
	Address     string `mapstructure:"address"`
	Environment string `mapstructure:"environment"`
}

type FailoverConfig struct {
	Origins string `mapstructure:"origins"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Failover FailoverConfig `mapstructure:"failover"`
	Logging  LoggingConfig  `mapstructure:"logging"`

	// Read through viper getters rather than Unmarshal so the flat env
	// surface (TIMEOUT_MS=abc, RANDOM_SELECTION=yes) degrades to the
	// defaults instead of failing startup.
	timeoutMS int
	random    bool
}

func Load() (*Config, error) {
	viper.SetDefault("server.environment", EnvDev)
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("failover.timeout_ms", DefaultTimeoutMS)
	viper.SetDefault("failover.random", false)
	viper.SetDefault("logging.level", LogLevelInfo)

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// The flat names are the original deployment surface; the prefixed
	// forms come from the key replacer.
	viper.BindEnv("failover.origins", "FAILOVER_ORIGINS", "ORIGINS")
	viper.BindEnv("failover.timeout_ms", "FAILOVER_TIMEOUT_MS", "TIMEOUT_MS")
	viper.BindEnv("failover.random", "FAILOVER_RANDOM", "RANDOM_SELECTION")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Error("failed to read config file", slog.String("error", err.Error()))
			return nil, err
		}
		slog.Info("config file not found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", slog.String("file", viper.ConfigFileUsed()))
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		slog.Error("failed to unmarshal config", slog.String("error", err.Error()))
		return nil, err
	}

	cfg.timeoutMS = viper.GetInt("failover.timeout_ms")
	if cfg.timeoutMS <= 0 {
		slog.Warn("invalid or missing attempt timeout, using default",
			slog.String("value", viper.GetString("failover.timeout_ms")),
			slog.Int("default_ms", DefaultTimeoutMS))
		cfg.timeoutMS = DefaultTimeoutMS
	}

	cfg.random = viper.GetBool("failover.random")

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return nil, err
	}

	return &cfg, nil
}

// Timeout returns the per-attempt timeout. This bounds a single origin
// attempt, not the whole request: worst case latency is timeout multiplied
// by the number of configured origins.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.timeoutMS) * time.Millisecond
}

// RandomSelection reports whether origins are drawn in random order
// instead of configuration order.
func (c *Config) RandomSelection() bool {
	return c.random
}

// Origins parses the comma-separated origin list, trimming whitespace and
// dropping empty entries. Order is preserved.
func (c *Config) Origins() []string {
	var origins []string

	for _, entry := range strings.Split(c.Failover.Origins, ",") {
		entry = strings.TrimSpace(entry)
		if entry != "" {
			origins = append(origins, entry)
		}
	}

	return origins
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Server,
			validation.Required,
			validation.By(func(value interface{}) error {
				sc, ok := value.(ServerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ServerConfig")
				}
				return validation.ValidateStruct(&sc,
					validation.Field(&sc.Environment,
						validation.Required,
						validation.In(EnvDev, EnvStaging, EnvProd),
					),
					validation.Field(&sc.Address,
						validation.Required,
						validation.By(validateHostPort),
					),
				)
			}),
		),
		validation.Field(&c.Logging,
			validation.Required,
			validation.By(func(value interface{}) error {
				lc, ok := value.(LoggingConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a LoggingConfig")
				}
				return validation.ValidateStruct(&lc,
					validation.Field(&lc.Level,
						validation.Required,
						validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
					),
				)
			}),
		),
		validation.Field(&c.Failover,
			validation.Required,
			validation.By(func(value interface{}) error {
				fc, ok := value.(FailoverConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a FailoverConfig")
				}
				return validateOriginList(fc.Origins)
			}),
		),
	)
}

func validateHostPort(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}

	if port == "" {
		return validation.NewError("validation_invalid_port", "port cannot be empty")
	}

	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}

	return nil
}

func validateOriginList(raw string) error {
	entries := strings.Split(raw, ",")

	seen := 0
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		seen++

		if err := validateOrigin(entry); err != nil {
			return err
		}
	}

	if seen == 0 {
		return validation.NewError("validation_empty_origins", "at least one origin is required")
	}

	return nil
}

func validateOrigin(entry string) error {
	if strings.Contains(entry, "://") {
		return validation.NewError("validation_origin_scheme", "origins are host[:port], without a scheme")
	}

	host := entry
	if strings.Contains(entry, ":") {
		var port string
		var err error

		host, port, err = net.SplitHostPort(entry)
		if err != nil {
			return validation.NewError("validation_invalid_origin", "must be host or host:port")
		}
		if port == "" {
			return validation.NewError("validation_invalid_origin_port", "port cannot be empty")
		}
	}

	if err := is.Host.Validate(host); err != nil {
		return validation.NewError("validation_invalid_origin_host", "invalid origin host")
	}

	return nil
}
