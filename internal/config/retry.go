package config

import (
	"time"

	"github.com/lewisedginton/adk_webui/pkg/httpretry"
)

// RetryConfig is the model client's retry policy for transient upstream errors.
type RetryConfig struct {
	Attempts     int           `env:"RETRY_ATTEMPTS" yaml:"attempts" default:"5"`
	InitialDelay time.Duration `env:"RETRY_INITIAL_DELAY" yaml:"initial_delay" default:"1s"`
	ExpBase      float64       `env:"RETRY_EXP_BASE" yaml:"exp_base" default:"7"`
	MaxDelay     time.Duration `env:"RETRY_MAX_DELAY" yaml:"max_delay" default:"60s"`
	Jitter       float64       `env:"RETRY_JITTER" yaml:"jitter" default:"0.5"`
	StatusCodes  []int         `env:"RETRY_STATUS_CODES" yaml:"status_codes" default:"429,500,503,504"`
}

// HTTPRetry converts the config into a transport policy.
func (r RetryConfig) HTTPRetry() httpretry.Config {
	return httpretry.Config{
		Attempts:     r.Attempts,
		InitialDelay: r.InitialDelay,
		Multiplier:   r.ExpBase,
		MaxDelay:     r.MaxDelay,
		Jitter:       r.Jitter,
		StatusCodes:  r.StatusCodes,
	}
}
