package debugconfig

import (
	"errors"

	"github.com/rs/zerolog"
)

// Load parses, binds and validates a debug mode configuration document.
// Every failure is reported through logger and collapses to a nil config;
// the caller never has to distinguish failure modes. An empty document, or
// one that resolves to null, yields nil without an error being logged.
func Load(raw string, logger zerolog.Logger) *Config {
	root, err := parseDocument(raw)
	if err != nil {
		logger.Error().Err(err).Msg("could not parse lambda debug mode configuration")
		return nil
	}
	if root == nil {
		return nil
	}

	cfg, err := bind(root)
	if err != nil {
		var dup *DuplicateConfigError
		if errors.As(err, &dup) {
			logger.Error().Err(err).Msg("invalid lambda debug mode configuration")
		} else {
			logger.Error().Err(err).Msg("unable to bind lambda debug mode configuration")
		}
		return nil
	}

	if err := Validate(cfg); err != nil {
		logger.Error().Err(err).Msg("invalid lambda debug mode configuration")
		return nil
	}
	return cfg
}
