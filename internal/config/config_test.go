package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadTextConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.json", `{
		"mode": "text",
		"text_to_type": "hello",
		"delay_between_keystrokes": 0.05,
		"countdown_before_start": 2
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ModeText, cfg.Mode)
	assert.Equal(t, "hello", cfg.TextToType)
	assert.Equal(t, 0.05, cfg.DelayBetweenKeystrokes)
	assert.Equal(t, 2, cfg.CountdownBeforeStart)
	assert.Equal(t, 50*time.Millisecond, cfg.Delay())
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`{"mode": "text", "text_to_type": "x"}`), FormatJSON, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultDelay, cfg.DelayBetweenKeystrokes)
	assert.Equal(t, DefaultCountdown, cfg.CountdownBeforeStart)
}

func TestLoadFileConfigResolvesRelativePath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "payload.bin", "data")
	path := writeFile(t, dir, "config.json", `{
		"mode": "file",
		"file_path": "payload.bin",
		"target_os": "windows",
		"output_filename": "out.bin"
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ModeFile, cfg.Mode)
	assert.Equal(t, filepath.Join(dir, "payload.bin"), cfg.FilePath)
	assert.Equal(t, TargetWindows, cfg.TargetOS)
	assert.Equal(t, "out.bin", cfg.OutputFilename)
}

func TestLoadFileConfigDefaultsToLinux(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "payload.bin", "data")

	cfg, err := Parse([]byte(`{"mode": "file", "file_path": "payload.bin", "output_filename": "o"}`), FormatJSON, dir)
	require.NoError(t, err)
	assert.Equal(t, TargetLinux, cfg.TargetOS)
}

func TestLoadTOMLAndYAML(t *testing.T) {
	dir := t.TempDir()
	tomlPath := writeFile(t, dir, "config.toml", `
mode = "text"
text_to_type = "from toml"
delay_between_keystrokes = 0.2
countdown_before_start = 1
`)
	yamlPath := writeFile(t, dir, "config.yaml", `
mode: text
text_to_type: from yaml
delay_between_keystrokes: 0.2
countdown_before_start: 1
`)

	fromTOML, err := Load(tomlPath)
	require.NoError(t, err)
	assert.Equal(t, "from toml", fromTOML.TextToType)
	assert.Equal(t, 1, fromTOML.CountdownBeforeStart)

	fromYAML, err := Load(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "from yaml", fromYAML.TextToType)
	assert.Equal(t, fromTOML.DelayBetweenKeystrokes, fromYAML.DelayBetweenKeystrokes)
}

func TestParseErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name  string
		data  string
		field string
	}{
		{"invalid mode", `{"mode": "invalid"}`, "mode"},
		{"missing mode", `{"text_to_type": "x"}`, ""},
		{"negative delay", `{"mode": "text", "delay_between_keystrokes": -1}`, "delay_between_keystrokes"},
		{"negative countdown", `{"mode": "text", "countdown_before_start": -3}`, "countdown_before_start"},
		{"fractional countdown", `{"mode": "text", "countdown_before_start": 1.5}`, "countdown_before_start"},
		{"bad target", `{"mode": "file", "file_path": "a", "output_filename": "b", "target_os": "mac"}`, "target_os"},
		{"missing output", `{"mode": "file", "file_path": "a"}`, ""},
		{"missing source file", `{"mode": "file", "file_path": "nope.bin", "output_filename": "b"}`, "file_path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), FormatJSON, dir)
			require.Error(t, err)

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr), "expected *ConfigError, got %T", err)
			if tt.field != "" {
				assert.Equal(t, tt.field, cfgErr.Field)
			}
		})
	}
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse([]byte(`{}`), FormatJSON, "")
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Error(), "empty")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFormatFromPath(t *testing.T) {
	f, err := FormatFromPath("a.YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = FormatFromPath("a.ini")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, NewText("").Validate())

	cfg := NewText("x")
	cfg.DelayBetweenKeystrokes = -0.1
	assert.Error(t, cfg.Validate())

	cfg = NewFile("/tmp/a.bin", "", "")
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "a.bin", cfg.OutputFilename)
	assert.Equal(t, TargetLinux, cfg.TargetOS)

	cfg.TextToType = "both"
	assert.Error(t, cfg.Validate())

	assert.Error(t, (&Config{}).Validate())
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	require.NoError(t, Save(path, NewText("round trip")))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "round trip", cfg.TextToType)
	assert.Equal(t, DefaultCountdown, cfg.CountdownBeforeStart)
}
