package config

import (
	"embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaFS embed.FS

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString("config validation failed:\n")
	for _, err := range e {
		sb.WriteString(fmt.Sprintf("  %s: %s\n", err.Field, err.Message))
	}
	return sb.String()
}

// Validator validates configuration against the embedded CUE schema.
type Validator struct {
	ctx    *cue.Context
	schema cue.Value
}

// NewValidator creates a new configuration validator.
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()

	schemaData, err := schemaFS.ReadFile("schema.cue")
	if err != nil {
		return nil, fmt.Errorf("reading embedded schema: %w", err)
	}

	schema := ctx.CompileBytes(schemaData, cue.Filename("schema.cue"))
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling schema: %w", schema.Err())
	}

	return &Validator{
		ctx:    ctx,
		schema: schema.LookupPath(cue.ParsePath("#Config")),
	}, nil
}

// Validate validates the given configuration. Schema violations and
// missing run settings are reported together.
func (v *Validator) Validate(cfg *Config) error {
	var errs ValidationErrors

	val := v.ctx.Encode(cfg)
	if val.Err() != nil {
		return fmt.Errorf("encoding config: %w", val.Err())
	}
	if err := v.schema.Unify(val).Validate(cue.Concrete(true)); err != nil {
		for _, e := range cueerrors.Errors(err) {
			field := strings.Join(e.Path(), ".")
			if field == "" {
				field = "config"
			}
			format, args := e.Msg()
			errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
		}
	}

	if len(cfg.SolveYear) == 0 {
		errs = append(errs, ValidationError{Field: "solve_year", Message: "is required"})
	}
	if len(cfg.WeatherYear) == 0 {
		errs = append(errs, ValidationError{Field: "weather_year", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ValidateFile validates a configuration file at the given path.
func (v *Validator) ValidateFile(path string) error {
	loader := NewLoader()
	cfg, err := loader.LoadWithDefaults(path)
	if err != nil {
		return fmt.Errorf("loading config file: %w", err)
	}

	return v.Validate(cfg)
}
