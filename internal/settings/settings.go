// SPDX-License-Identifier: MPL-2.0

package settings

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "mrp"
	// SettingsFileName is the name of the settings file (without extension).
	SettingsFileName = "config"
	// SettingsFileExt is the settings file extension.
	SettingsFileExt = "toml"
)

type (
	// Settings holds tool-level configuration.
	Settings struct {
		// DefaultAdapter is the runtime adapter used when a run config
		// does not set runtime.spec.
		DefaultAdapter string `mapstructure:"default_adapter"`

		// Stage configures the file stager.
		Stage StageSettings `mapstructure:"stage"`

		// UI configures terminal output behavior.
		UI UISettings `mapstructure:"ui"`
	}

	// StageSettings configures file staging.
	StageSettings struct {
		// Dir overrides the staging directory. Empty means a fresh
		// temp directory per run.
		Dir string `mapstructure:"dir"`
		// HTTPTimeoutSeconds bounds each HTTP(S) download.
		HTTPTimeoutSeconds int `mapstructure:"http_timeout_seconds"`
		// Concurrency bounds parallel downloads per run.
		Concurrency int `mapstructure:"concurrency"`
	}

	// UISettings configures terminal output behavior.
	UISettings struct {
		// Verbose enables debug-level diagnostics.
		Verbose bool `mapstructure:"verbose"`
	}
)

// DefaultSettings returns the built-in defaults.
func DefaultSettings() *Settings {
	return &Settings{
		DefaultAdapter: "process",
		Stage: StageSettings{
			HTTPTimeoutSeconds: 60,
			Concurrency:        4,
		},
	}
}

// SettingsDir returns the mrp configuration directory using
// platform-specific conventions: Windows uses %APPDATA%, macOS uses
// ~/Library/Application Support, and Linux/others use $XDG_CONFIG_HOME
// (defaulting to ~/.config).
func SettingsDir() (string, error) {
	if settingsDirOverride != "" {
		return settingsDirOverride, nil
	}

	var dir string

	switch runtime.GOOS {
	case "windows":
		dir = os.Getenv("APPDATA")
		if dir == "" {
			dir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		dir = os.Getenv("XDG_CONFIG_HOME")
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			dir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(dir, AppName), nil
}

// loadWithOptions performs option-driven settings loading without touching
// package-level cache state. Callers that want caching wrap this function.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Settings, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load settings canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()

	defaults := DefaultSettings()
	v.SetDefault("default_adapter", defaults.DefaultAdapter)
	v.SetDefault("stage.dir", defaults.Stage.Dir)
	v.SetDefault("stage.http_timeout_seconds", defaults.Stage.HTTPTimeoutSeconds)
	v.SetDefault("stage.concurrency", defaults.Stage.Concurrency)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath := ""

	if opts.SettingsFilePath != "" {
		// An explicit --config path is used exclusively and must exist.
		if !fileExists(opts.SettingsFilePath) {
			return nil, "", fmt.Errorf("settings file not found: %s", opts.SettingsFilePath)
		}
		v.SetConfigFile(opts.SettingsFilePath)
		if err := v.ReadInConfig(); err != nil {
			return nil, "", fmt.Errorf("failed to read settings file %s: %w", opts.SettingsFilePath, err)
		}
		resolvedPath = opts.SettingsFilePath
	} else {
		dir, err := settingsDirWithOverride(opts.SettingsDirPath)
		if err != nil {
			return nil, "", err
		}

		path := filepath.Join(dir, SettingsFileName+"."+SettingsFileExt)
		if fileExists(path) {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, "", fmt.Errorf("failed to read settings file %s: %w", path, err)
			}
			resolvedPath = path
		}
		// No settings file means defaults only (not an error).
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, "", fmt.Errorf("failed to parse settings: %w", err)
	}

	if s.Stage.Concurrency < 1 {
		return nil, "", fmt.Errorf("stage.concurrency must be at least 1, got %d", s.Stage.Concurrency)
	}
	if s.Stage.HTTPTimeoutSeconds < 1 {
		return nil, "", fmt.Errorf("stage.http_timeout_seconds must be at least 1, got %d", s.Stage.HTTPTimeoutSeconds)
	}

	return &s, resolvedPath, nil
}

func settingsDirWithOverride(dirPath string) (string, error) {
	if dirPath != "" {
		return dirPath, nil
	}
	return SettingsDir()
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}
