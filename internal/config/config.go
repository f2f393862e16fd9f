package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config is the service configuration, populated from the environment.
type Config struct {
	Environment string `env:"ENV" envDefault:"development"`
	HTTP        struct {
		Port            int           `env:"HTTP_PORT" envDefault:"8080"`
		ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
		WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
		IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
		ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	}
	Logging struct {
		Level  string `env:"LOG_LEVEL" envDefault:"info"`
		Format string `env:"LOG_FORMAT" envDefault:"json"`
		Output string `env:"LOG_OUTPUT" envDefault:"stderr"`
	}
	Optimization struct {
		// Defaults applied to requests that omit the corresponding field.
		Step          float64 `env:"OPT_STEP" envDefault:"0.1"`
		Tolerance     float64 `env:"OPT_TOLERANCE" envDefault:"1e-6"`
		MaxIterations int     `env:"OPT_MAX_ITERATIONS" envDefault:"1000"`
		Runs          int     `env:"OPT_RUNS" envDefault:"5"`
		SampleMin     float64 `env:"OPT_SAMPLE_MIN" envDefault:"-2"`
		SampleMax     float64 `env:"OPT_SAMPLE_MAX" envDefault:"4"`
	}
}

// Load parses the configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Development runs want chatty logs unless told otherwise.
	if cfg.Environment == "development" && cfg.Logging.Level == "" {
		cfg.Logging.Level = "debug"
	}

	return cfg, nil
}
