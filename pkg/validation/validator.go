package validation

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidHostName is wrapped by every host name rejection.
var ErrInvalidHostName = errors.New("invalid host name")

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// MaxHostNameLength bounds host names written into topology files
	MaxHostNameLength = 32

	// Host names appear as bare tokens in topology files ("h1:d2 delay=10ms"),
	// so they are restricted to the token alphabet of that grammar.
	hostNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)
)

func init() {
	validate = validator.New()
}

// Struct validates v using its `validate` struct tags.
func Struct(v any) error {
	if v == nil {
		return errors.New("value cannot be nil")
	}
	if err := validate.Struct(v); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateHostName checks that a host name can be written to and parsed back
// from a topology file.
func ValidateHostName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: cannot be empty", ErrInvalidHostName)
	}
	if len(name) > MaxHostNameLength {
		return fmt.Errorf("%w: '%s' exceeds maximum length of %d characters", ErrInvalidHostName, name, MaxHostNameLength)
	}
	if !hostNamePattern.MatchString(name) {
		return fmt.Errorf("%w: '%s' must start with a letter, followed by alphanumeric or underscore", ErrInvalidHostName, name)
	}
	return nil
}

// ValidateHostNames validates every name and rejects duplicates.
func ValidateHostNames(names []string) error {
	seen := make(map[string]struct{}, len(names))
	for i, name := range names {
		if err := ValidateHostName(name); err != nil {
			return fmt.Errorf("hosts[%d]: %w", i, err)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("hosts[%d]: duplicate host name '%s'", i, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Namespace()
		param := e.Param()

		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min", "gte":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "max", "lte":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "gt":
			return fmt.Errorf("%s: must be greater than %s", field, param)
		case "oneof":
			return fmt.Errorf("%s: must be one of [%s]", field, param)
		case "dive":
			return fmt.Errorf("%s: invalid element in array", field)
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}

	return err
}
