package internal

import (
	"fmt"
	"log/slog"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/modeler/internal/model"
)

var localeRe = regexp.MustCompile(`^[a-zA-Z]{2}(_[a-zA-Z]{2})?$`)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App         ApplicationConfig `yaml:"app"`
	Metastore   MetastoreConfig   `yaml:"metastore"`
	Annotations AnnotationsConfig `yaml:"annotations"`
	Auth        AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Metastore.Validate(); err != nil {
		return err
	}
	if err := c.Annotations.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
	// Locale selects the language of generated display names.
	Locale string `yaml:"locale"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.Locale == "" {
		c.Locale = model.DefaultLocale
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Locale, validation.Match(localeRe)),
	); err != nil {
		return err
	}
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// MetastoreConfig holds the SQLite metadata store configuration.
type MetastoreConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the metadata store configuration.
func (c *MetastoreConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AnnotationsConfig points at a directory of YAML annotation group files.
// An empty Dir disables file loading.
type AnnotationsConfig struct {
	Dir   string `yaml:"dir"`
	Watch bool   `yaml:"watch"`
}

// Validate validates the annotations configuration.
func (c *AnnotationsConfig) Validate() error {
	if c.Watch && c.Dir == "" {
		return fmt.Errorf("annotations: watch is enabled but dir is empty")
	}
	return nil
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
			Locale: model.DefaultLocale,
		},
		Metastore: MetastoreConfig{
			Path: "./modeler.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
