package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/zero-day-ai/graphmap/internal/types"
)

// ConfigValidator validates configuration values.
type ConfigValidator interface {
	Validate(cfg *Config) error
}

type structValidator struct {
	validate *validator.Validate
}

// NewValidator returns a ConfigValidator backed by struct tags plus the
// per-section Validate methods. Problems are reported by config file key,
// e.g. "loader.workers".
func NewValidator() ConfigValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return &structValidator{validate: v}
}

// Validate reports every problem in cfg at once as a
// CONFIG_VALIDATION_FAILED error.
func (v *structValidator) Validate(cfg *Config) error {
	if cfg == nil {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "configuration is nil")
	}

	var problems []string
	if err := v.validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return types.WrapError(types.CONFIG_VALIDATION_FAILED, "validation error", err)
		}
		for _, fe := range fieldErrs {
			problems = append(problems, describeFieldError(fe))
		}
	}

	sections := []struct {
		name string
		err  error
	}{
		{"store", cfg.Store.Validate()},
		{"logging", cfg.Logging.Validate()},
		{"tracing", cfg.Tracing.Validate()},
		{"metrics", cfg.Metrics.Validate()},
	}
	for _, s := range sections {
		if s.err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", s.name, s.err))
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return types.NewError(types.CONFIG_VALIDATION_FAILED,
		"configuration validation failed:\n  - "+strings.Join(problems, "\n  - "))
}

func describeFieldError(fe validator.FieldError) string {
	key := fieldKey(fe.Namespace())
	switch fe.Tag() {
	case "required":
		return key + " is required"
	case "required_unless":
		return fmt.Sprintf("%s is required unless %s", key, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s (got: %v)", key, fe.Param(), fe.Value())
	case "max":
		return fmt.Sprintf("%s must be at most %s (got: %v)", key, fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s] (got: %v)", key, fe.Param(), fe.Value())
	}
	return fmt.Sprintf("%s failed %q (got: %v)", key, fe.Tag(), fe.Value())
}

// fieldKey drops the root struct name from a validator namespace:
// "Config.loader.workers" becomes "loader.workers".
func fieldKey(namespace string) string {
	_, key, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}
	return key
}
