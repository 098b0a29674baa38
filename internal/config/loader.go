package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment variable prefix for r2x configuration.
const envPrefix = "R2X"

// Loader handles loading and merging configuration from multiple sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	v := viper.New()

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("run_folder", "R2X_RUN_FOLDER")
	_ = v.BindEnv("solve_year", "R2X_SOLVE_YEAR")
	_ = v.BindEnv("weather_year", "R2X_WEATHER_YEAR")
	_ = v.BindEnv("case_name", "R2X_CASE_NAME")
	_ = v.BindEnv("scenario", "R2X_SCENARIO")
	_ = v.BindEnv("catalogue", "R2X_CATALOGUE")
	_ = v.BindEnv("defaults", "R2X_DEFAULTS")

	return &Loader{v: v}
}

// Set overrides a key, typically from a command-line flag. Set values take
// precedence over environment and file values.
func (l *Loader) Set(key string, value any) {
	l.v.Set(key, value)
}

// Load loads configuration from the given file path.
// If configFile is empty, it uses the default config file path.
// Environment variables take precedence over file values.
func (l *Loader) Load(configFile string) (*Config, error) {
	if configFile == "" {
		resolved, err := ResolveConfigPath("")
		if err != nil {
			return nil, fmt.Errorf("getting config file path: %w", err)
		}
		configFile = resolved.Value
	}

	expandedPath, err := ExpandPath(configFile)
	if err != nil {
		return nil, fmt.Errorf("expanding config path: %w", err)
	}

	l.v.SetConfigFile(expandedPath)
	l.v.SetConfigType("yaml")

	// A missing file is fine: defaults and env vars still apply.
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		yearsHook,
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := l.v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// LoadWithDefaults loads configuration and applies defaults.
func (l *Loader) LoadWithDefaults(configFile string) (*Config, error) {
	cfg, err := l.Load(configFile)
	if err != nil {
		return nil, err
	}

	return cfg.WithDefaults(), nil
}

// ConfigFileUsed returns the file viper read, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

var yearsType = reflect.TypeOf(Years{})

// yearsHook accepts a single year, a comma separated string or a list.
func yearsHook(from, to reflect.Type, data any) (any, error) {
	if to != yearsType {
		return data, nil
	}
	switch x := data.(type) {
	case int:
		return Years{x}, nil
	case int64:
		return Years{int(x)}, nil
	case float64:
		return Years{int(x)}, nil
	case string:
		var out Years
		for _, part := range strings.Split(x, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			y, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("invalid year %q", part)
			}
			out = append(out, y)
		}
		return out, nil
	}
	return data, nil
}

// LoadDotEnv loads KEY=value files into the environment. Missing files are
// skipped and variables already set are not overwritten.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// ConfigFileExists checks if the config file exists.
func ConfigFileExists(configFile string) (bool, error) {
	if configFile == "" {
		resolved, err := ResolveConfigPath("")
		if err != nil {
			return false, err
		}
		configFile = resolved.Value
	}

	expandedPath, err := ExpandPath(configFile)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(expandedPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}
