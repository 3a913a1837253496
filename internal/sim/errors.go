package sim

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration is matched by every configuration violation.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// ConfigError describes a single out-of-range configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfiguration }
