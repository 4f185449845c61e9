// Package config loads drift-notify settings.
//
// Sources are layered, later ones winning: built-in defaults, the global
// file ($XDG_CONFIG_HOME/drift-notify/config.yaml), the local file passed
// with --config, a .env file, and DRIFT_NOTIFY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "DRIFT_NOTIFY_"

// FallbackAppName is used when no app name is configured and the working
// directory is not a Go module.
const FallbackAppName = "drift-notify"

// Config holds resolved settings.
type Config struct {
	AppName          string        `koanf:"app_name" validate:"required"`
	Icon             string        `koanf:"icon"`
	Lang             string        `koanf:"lang" validate:"omitempty,bcp47_language_tag"`
	Dir              string        `koanf:"dir" validate:"omitempty,oneof=auto ltr rtl"`
	PermissionFile   string        `koanf:"permission_file"`
	AssumePermission string        `koanf:"assume_permission" validate:"omitempty,oneof=granted denied default"`
	RequestTimeout   time.Duration `koanf:"request_timeout" validate:"min=0"`
	Wait             time.Duration `koanf:"wait" validate:"min=0"`
}

// Options locates the configuration sources. Empty fields select defaults.
type Options struct {
	// LocalPath is the --config file. It must exist when set.
	LocalPath string
	// GlobalPath overrides the global file location.
	GlobalPath string
	// EnvFile is the dotenv file; a missing file is ignored.
	EnvFile string
	// WorkDir is searched for go.mod to derive the default app name.
	WorkDir string
}

// Defaults returns the built-in values. app_name is filled in by Load.
func Defaults() map[string]any {
	return map[string]any{
		"request_timeout": "2m",
		"wait":            "0s",
		"dir":             "auto",
	}
}

// Load resolves the configuration.
func Load(opts Options) (*Config, error) {
	k := koanf.New(".")

	for key, value := range Defaults() {
		k.Set(key, value)
	}
	k.Set("app_name", DefaultAppName(opts.WorkDir))

	globalPath := opts.GlobalPath
	if globalPath == "" {
		globalPath = GlobalPath()
	}
	if globalPath != "" {
		if _, err := os.Stat(globalPath); err == nil {
			if err := k.Load(file.Provider(globalPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load global config: %w", err)
			}
		}
	}

	if opts.LocalPath != "" {
		if err := k.Load(file.Provider(opts.LocalPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", opts.LocalPath, err)
		}
	}

	if opts.EnvFile != "" {
		vars, err := godotenv.Read(opts.EnvFile)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", opts.EnvFile, err)
		}
		for name, value := range vars {
			if strings.HasPrefix(name, EnvPrefix) {
				k.Set(envKey(name), value)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	cfg.PermissionFile = expandHome(cfg.PermissionFile)
	cfg.Icon = expandHome(cfg.Icon)
	return &cfg, nil
}

var validate = validator.New()

// Validate checks cfg.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// GlobalPath returns the global config file location, or "" when no config
// directory can be determined.
func GlobalPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		if dir, err = os.UserConfigDir(); err != nil {
			return ""
		}
	}
	return filepath.Join(dir, "drift-notify", "config.yaml")
}

// envKey converts DRIFT_NOTIFY_REQUEST_TIMEOUT to request_timeout.
func envKey(name string) string {
	return strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
}

// DefaultAppName derives the app name from the module path of the go.mod in
// dir: the last path element, without a major version suffix.
func DefaultAppName(dir string) string {
	if dir == "" {
		var err error
		if dir, err = os.Getwd(); err != nil {
			return FallbackAppName
		}
	}
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return FallbackAppName
	}
	modPath := modfile.ModulePath(data)
	if modPath == "" {
		return FallbackAppName
	}
	prefix, _, ok := module.SplitPathVersion(modPath)
	if !ok {
		prefix = modPath
	}
	parts := strings.Split(prefix, "/")
	if name := parts[len(parts)-1]; name != "" {
		return name
	}
	return FallbackAppName
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
