// Package config provides configuration management for keysim runs.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Mode selects which payload variant a configuration carries
type Mode string

const (
	ModeText Mode = "text"
	ModeFile Mode = "file"
)

// TargetOS is the operating system that will reconstruct a transferred file
type TargetOS string

const (
	TargetLinux   TargetOS = "linux"
	TargetWindows TargetOS = "windows"
)

const (
	// DefaultDelay is the default pause between keystrokes, in seconds
	DefaultDelay = 0.01

	// DefaultCountdown is the default countdown before typing starts, in seconds
	DefaultCountdown = 5
)

// Config represents a single keysim run configuration.
// Mode decides which of the variant fields are meaningful.
type Config struct {
	// Mode is either "text" or "file"
	Mode Mode `json:"mode" toml:"mode" yaml:"mode"`

	// TextToType is the payload for text mode
	TextToType string `json:"text_to_type,omitempty" toml:"text_to_type,omitempty" yaml:"text_to_type,omitempty"`

	// FilePath is the source file for file mode
	FilePath string `json:"file_path,omitempty" toml:"file_path,omitempty" yaml:"file_path,omitempty"`

	// TargetOS is the OS the reconstruction script is written for (file mode)
	TargetOS TargetOS `json:"target_os,omitempty" toml:"target_os,omitempty" yaml:"target_os,omitempty"`

	// OutputFilename is the name of the rebuilt file on the target (file mode)
	OutputFilename string `json:"output_filename,omitempty" toml:"output_filename,omitempty" yaml:"output_filename,omitempty"`

	// DelayBetweenKeystrokes is the per-keystroke delay in seconds
	DelayBetweenKeystrokes float64 `json:"delay_between_keystrokes" toml:"delay_between_keystrokes" yaml:"delay_between_keystrokes"`

	// CountdownBeforeStart is the countdown before typing, in seconds
	CountdownBeforeStart int `json:"countdown_before_start" toml:"countdown_before_start" yaml:"countdown_before_start"`
}

// ConfigError describes a malformed or missing configuration field
type ConfigError struct {
	Field string
	Msg   string
	Err   error
}

func (e *ConfigError) Error() string {
	msg := e.Msg
	if e.Field != "" {
		msg = fmt.Sprintf("'%s' %s", e.Field, e.Msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("config: %s: %v", msg, e.Err)
	}
	return "config: " + msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

// NewText returns a text-mode configuration with default timing
func NewText(text string) *Config {
	return &Config{
		Mode:                   ModeText,
		TextToType:             text,
		DelayBetweenKeystrokes: DefaultDelay,
		CountdownBeforeStart:   DefaultCountdown,
	}
}

// NewFile returns a file-mode configuration with default timing.
// An empty output name falls back to the source file's base name.
func NewFile(path string, target TargetOS, output string) *Config {
	if output == "" {
		output = filepath.Base(path)
	}
	if target == "" {
		target = TargetLinux
	}
	return &Config{
		Mode:                   ModeFile,
		FilePath:               path,
		TargetOS:               target,
		OutputFilename:         output,
		DelayBetweenKeystrokes: DefaultDelay,
		CountdownBeforeStart:   DefaultCountdown,
	}
}

// Delay returns DelayBetweenKeystrokes as a duration
func (c *Config) Delay() time.Duration {
	return time.Duration(c.DelayBetweenKeystrokes * float64(time.Second))
}

// Validate checks that exactly one variant is populated and timings are non-negative
func (c *Config) Validate() error {
	if c.DelayBetweenKeystrokes < 0 {
		return &ConfigError{Field: "delay_between_keystrokes", Msg: "must be non-negative"}
	}
	if c.CountdownBeforeStart < 0 {
		return &ConfigError{Field: "countdown_before_start", Msg: "must be a non-negative integer"}
	}

	switch c.Mode {
	case ModeText:
		if c.FilePath != "" {
			return &ConfigError{Field: "file_path", Msg: "is not allowed in text mode"}
		}
	case ModeFile:
		if c.TextToType != "" {
			return &ConfigError{Field: "text_to_type", Msg: "is not allowed in file mode"}
		}
		if c.FilePath == "" {
			return &ConfigError{Field: "file_path", Msg: "must not be empty"}
		}
		if c.TargetOS != TargetLinux && c.TargetOS != TargetWindows {
			return &ConfigError{Field: "target_os", Msg: "must be 'windows' or 'linux'"}
		}
		if c.OutputFilename == "" {
			return &ConfigError{Field: "output_filename", Msg: "must not be empty"}
		}
	case "":
		return &ConfigError{Field: "mode", Msg: "is missing"}
	default:
		return &ConfigError{Field: "mode", Msg: "must be 'text' or 'file'"}
	}
	return nil
}

// DefaultPath returns the per-user configuration file location
func DefaultPath() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "keysim")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		configDir = filepath.Join(appData, "keysim")
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, ".config", "keysim")
	}

	return filepath.Join(configDir, "config.json"), nil
}

// Save writes the configuration as indented JSON, creating parent directories
func Save(path string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	slog.Debug("Config: saving configuration", "path", path, "bytes", len(data))
	return os.WriteFile(path, append(data, '\n'), 0644)
}
