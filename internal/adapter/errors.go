package adapter

import "errors"

// ConfigError marks a run failure caused by job configuration (missing
// credentials, missing required selector, unknown adapter key) rather than
// by the site. It terminates only the run that hit it.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return "adapter config: " + e.Reason }

func configErr(reason string) error { return &ConfigError{Reason: reason} }

func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
