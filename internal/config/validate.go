package config

import (
	"path/filepath"
	"strings"
	"unicode"

	"git.home.luguber.info/inful/hugoify/internal/foundation"
)

var configValidator = foundation.NewValidatorChain(
	required("input_dir", func(c *Config) string { return c.InputDir }),
	required("output_dir", func(c *Config) string { return c.OutputDir }),
	distinctDirs,
	identifierSuffix,
)

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	return configValidator.Validate(c).ToError()
}

func required(field string, get func(*Config) string) foundation.Validator[*Config] {
	return func(c *Config) foundation.ValidationResult {
		if strings.TrimSpace(get(c)) == "" {
			return foundation.Invalid(foundation.NewValidationError(field, "required", "must not be empty"))
		}
		return foundation.Valid()
	}
}

func distinctDirs(c *Config) foundation.ValidationResult {
	if c.InputDir != "" && cleanPath(c.InputDir) == cleanPath(c.OutputDir) {
		return foundation.Invalid(foundation.NewValidationError("output_dir", "distinct",
			"must differ from input_dir"))
	}
	return foundation.Valid()
}

// identifierSuffix rejects suffixes no C++ class name could end with.
func identifierSuffix(c *Config) foundation.ValidationResult {
	for _, r := range c.ExceptionSuffix {
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return foundation.Invalid(foundation.NewValidationError("exception_suffix", "identifier",
				"must contain only letters, digits and underscores"))
		}
	}
	return foundation.Valid()
}

func cleanPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
