package config

import (
	"errors"
	"io/fs"
	"os"
	"regexp"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/zero-day-ai/graphmap/internal/types"
)

// ConfigLoader reads a YAML config file into a validated Config.
type ConfigLoader interface {
	Load(path string) (*Config, error)
	LoadWithDefaults(path string) (*Config, error)
}

type yamlLoader struct {
	validator ConfigValidator
}

// NewConfigLoader returns a ConfigLoader that checks results with validator.
func NewConfigLoader(validator ConfigValidator) ConfigLoader {
	return &yamlLoader{validator: validator}
}

// Load overlays the file at path on DefaultConfig, so sections the file
// omits keep their defaults. String values may reference environment
// variables as ${NAME}; unset variables are left as written.
//
// A missing file is CONFIG_NOT_FOUND, unreadable YAML or mistyped values
// are CONFIG_PARSE_FAILED and rule violations CONFIG_VALIDATION_FAILED.
func (l *yamlLoader) Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, types.WrapError(types.CONFIG_NOT_FOUND, "config file "+path+" does not exist", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, types.WrapError(types.CONFIG_PARSE_FAILED, "failed to read config file", err)
	}

	cfg := DefaultConfig()
	settings, _ := expandEnv(v.AllSettings()).(map[string]any)
	if err := overlay(cfg, settings); err != nil {
		return nil, types.WrapError(types.CONFIG_PARSE_FAILED, "failed to unmarshal config", err)
	}
	if err := l.validator.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadWithDefaults is Load, except that a missing file yields DefaultConfig.
func (l *yamlLoader) LoadWithDefaults(path string) (*Config, error) {
	cfg, err := l.Load(path)
	if types.CodeOf(err) != types.CONFIG_NOT_FOUND {
		return cfg, err
	}
	cfg = DefaultConfig()
	if err := l.validator.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// overlay decodes settings onto cfg. Interpolated strings still convert to
// numbers, booleans and durations.
func overlay(cfg *Config, settings map[string]any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	return dec.Decode(settings)
}

var envRef = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnv replaces ${NAME} references in every string of a decoded YAML
// tree.
func expandEnv(node any) any {
	switch n := node.(type) {
	case string:
		return expandString(n)
	case map[string]any:
		out := make(map[string]any, len(n))
		for k, v := range n {
			out[k] = expandEnv(v)
		}
		return out
	case []any:
		out := make([]any, len(n))
		for i, v := range n {
			out[i] = expandEnv(v)
		}
		return out
	}
	return node
}

func expandString(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		if value := os.Getenv(envRef.FindStringSubmatch(ref)[1]); value != "" {
			return value
		}
		return ref
	})
}
