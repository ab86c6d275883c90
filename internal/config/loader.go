package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Format is the on-disk encoding of a configuration file
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

//go:embed config.schema.json
var schemaJSON string

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.CompileString("config.schema.json", schemaJSON)
})

// FormatFromPath infers the configuration format from a file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", "":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", &ConfigError{Msg: fmt.Sprintf("unsupported config format %q", filepath.Ext(path))}
	}
}

// Load reads, validates and decodes a configuration file.
// A relative file_path is resolved against the config file's directory.
func Load(path string) (*Config, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &ConfigError{Msg: "config file not found: " + path, Err: err}
	}
	if err != nil {
		return nil, &ConfigError{Msg: "reading config file " + path, Err: err}
	}

	return Parse(data, format, filepath.Dir(path))
}

// Parse decodes configuration data in the given format
func Parse(data []byte, format Format, baseDir string) (*Config, error) {
	raw := map[string]any{}
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &raw)
	case FormatTOML:
		err = toml.Unmarshal(data, &raw)
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	default:
		return nil, &ConfigError{Msg: fmt.Sprintf("unsupported config format %q", format)}
	}
	if err != nil {
		return nil, &ConfigError{Msg: fmt.Sprintf("parsing %s", format), Err: err}
	}
	if len(raw) == 0 {
		return nil, &ConfigError{Msg: "configuration is empty"}
	}

	doc, err := normalize(raw)
	if err != nil {
		return nil, err
	}

	schema, err := compileSchema()
	if err != nil {
		return nil, fmt.Errorf("compiling config schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, schemaError(err)
	}

	return fromMap(doc.(map[string]any), baseDir)
}

// normalize round-trips a decoded document through JSON so TOML and YAML
// values share the json.Number representation the schema validator expects
func normalize(raw map[string]any) (any, error) {
	buf, err := json.Marshal(raw)
	if err != nil {
		return nil, &ConfigError{Msg: "configuration contains unsupported values", Err: err}
	}
	dec := json.NewDecoder(bytes.NewReader(buf))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, &ConfigError{Msg: "configuration contains unsupported values", Err: err}
	}
	return doc, nil
}

func schemaError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &ConfigError{Msg: "schema validation failed", Err: err}
	}
	leaf := ve
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	return &ConfigError{
		Field: strings.TrimPrefix(leaf.InstanceLocation, "/"),
		Msg:   leaf.Message,
	}
}

func fromMap(doc map[string]any, baseDir string) (*Config, error) {
	cfg := &Config{
		Mode:                   Mode(stringField(doc, "mode")),
		DelayBetweenKeystrokes: DefaultDelay,
		CountdownBeforeStart:   DefaultCountdown,
	}

	if n, ok := doc["delay_between_keystrokes"].(json.Number); ok {
		delay, err := n.Float64()
		if err != nil {
			return nil, &ConfigError{Field: "delay_between_keystrokes", Msg: "must be a number", Err: err}
		}
		cfg.DelayBetweenKeystrokes = delay
	}
	if n, ok := doc["countdown_before_start"].(json.Number); ok {
		countdown, err := n.Float64()
		if err != nil || countdown != math.Trunc(countdown) {
			return nil, &ConfigError{Field: "countdown_before_start", Msg: "must be an integer", Err: err}
		}
		cfg.CountdownBeforeStart = int(countdown)
	}

	switch cfg.Mode {
	case ModeText:
		cfg.TextToType = stringField(doc, "text_to_type")
	case ModeFile:
		path := stringField(doc, "file_path")
		if baseDir != "" && !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		if _, err := os.Stat(path); err != nil {
			return nil, &ConfigError{Field: "file_path", Msg: "points to a missing file: " + path, Err: err}
		}
		cfg.FilePath = path
		cfg.TargetOS = TargetOS(stringField(doc, "target_os"))
		if cfg.TargetOS == "" {
			cfg.TargetOS = TargetLinux
		}
		cfg.OutputFilename = stringField(doc, "output_filename")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func stringField(doc map[string]any, key string) string {
	s, _ := doc[key].(string)
	return s
}
