package columns

import (
	"errors"
	"fmt"
)

// ErrInvalidField is wrapped by every customization validation failure.
var ErrInvalidField = errors.New("invalid field rule")

// ConfigError reports a malformed customization. Resolution aborts on the
// first one; a broken column set is never rendered.
type ConfigError struct {
	Index  int    // position in the customization list
	Key    string // target key, if any
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("invalid field rule #%d (%s): %s", e.Index, e.Key, e.Reason)
	}
	return fmt.Sprintf("invalid field rule #%d: %s", e.Index, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidField
}
