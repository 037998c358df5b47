package internal

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config   *Config
	registry *prometheus.Registry
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithRegistry sets the Prometheus registry metrics are registered with
// and served from. A fresh registry is used when unset.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(a *application) {
		a.registry = reg
	}
}
