package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "PZWATCH_"

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if PZWATCH_CONFIG is set
//  3. env (prefix PZWATCH_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// PZWATCH_FTP_HOST -> ftp_host (flat keys matching the koanf tags).
	// List settings take comma separated values: PZWATCH_WEEKLY_SKILLS=Aiming,Cooking.
	lists := listKeys()
	envProvider := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, any) {
		key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		if _, ok := lists[key]; ok {
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	if _, err := cfg.Location(); err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %w", ErrInvalidConfig, cfg.Timezone, err)
	}
	return &cfg, nil
}

// listKeys returns the koanf keys of slice-typed Config fields.
func listKeys() map[string]struct{} {
	keys := make(map[string]struct{})
	t := reflect.TypeOf(Config{})
	for i := range t.NumField() {
		f := t.Field(i)
		if f.Type.Kind() != reflect.Slice {
			continue
		}
		if name := strings.Split(f.Tag.Get("koanf"), ",")[0]; name != "" {
			keys[name] = struct{}{}
		}
	}
	return keys
}

// splitList splits a comma separated value, dropping blank items.
func splitList(value string) []string {
	items := make([]string, 0, strings.Count(value, ",")+1)
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Validate checks cfg. Missing required settings are reported together in a
// *MissingError; any other violation is wrapped in ErrInvalidConfig.
func Validate(cfg *Config) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.Split(f.Tag.Get("koanf"), ",")[0]
	})

	err := v.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	var missing, invalid []string
	for _, fe := range verrs {
		name := EnvPrefix + strings.ToUpper(fe.Field())
		switch fe.Tag() {
		case "required", "required_if", "required_unless":
			missing = append(missing, name)
		default:
			invalid = append(invalid, fmt.Sprintf("%s (%s=%v)", name, fe.Tag(), fe.Value()))
		}
	}
	if len(missing) > 0 {
		return &MissingError{Keys: missing}
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(invalid, "; "))
}
