// Package config reads the modeler's YAML settings file. Environment
// references such as ${APP_AUTH_TOKEN} are expanded before decoding, and
// ${NAME:-fallback} supplies a value when NAME is unset or empty.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Validator is implemented by settings types that check themselves after
// decoding.
type Validator interface {
	Validate() error
}

// Load decodes filename into target. Keys that target does not declare are
// rejected so a misspelt setting fails at startup instead of being ignored.
func Load[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("read config %s: %w", filename, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader([]byte(Expand(string(data)))))
	dec.KnownFields(true)
	if err := dec.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", filename, err)
	}

	if v, ok := any(target).(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("invalid config %s: %w", filename, err)
		}
	}
	return nil
}

// LoadWithDefaults loads filename, or defaultFile when filename is missing.
func LoadWithDefaults[T any](filename, defaultFile string, target *T) error {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		if defaultFile != "" {
			return Load(defaultFile, target)
		}
		return fmt.Errorf("config file not found: %s", filename)
	}
	return Load(filename, target)
}

// Expand replaces $NAME, ${NAME} and ${NAME:-fallback} from the environment.
func Expand(s string) string {
	return os.Expand(s, func(ref string) string {
		name, fallback, hasFallback := strings.Cut(ref, ":-")
		if v := os.Getenv(name); v != "" || !hasFallback {
			return v
		}
		return fallback
	})
}
