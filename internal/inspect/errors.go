package inspect

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateInspection is returned when registering a name twice.
	ErrDuplicateInspection = errors.New("duplicate inspection")
	// ErrUnknownInspection is returned when a plan names an unregistered
	// inspection.
	ErrUnknownInspection = errors.New("unknown inspection")
	// ErrInvalidConfiguration is matched by every ConfigError.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// ConfigError reports an option an inspection could not accept.
type ConfigError struct {
	Inspection string
	Err        error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("inspection %s: invalid configuration: %v", e.Inspection, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrInvalidConfiguration) hold for any ConfigError.
func (e *ConfigError) Is(target error) bool { return target == ErrInvalidConfiguration }
