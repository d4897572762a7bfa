package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"

	"github.com/kobzarvs/linetrack/internal/charset"
)

type DocumentOptions struct {
	Encoding string `toml:"encoding"`
	// Capacity is the initial gap buffer size for document bytes.
	Capacity int `toml:"capacity"`
	// LineCapacity is the initial number of line records.
	LineCapacity int `toml:"line-capacity"`
}

type LogOptions struct {
	Debug bool   `toml:"debug"`
	File  string `toml:"file"`
}

type Config struct {
	Document DocumentOptions `toml:"document"`
	Log      LogOptions      `toml:"log"`
}

func Default() Config {
	return Config{
		Document: DocumentOptions{
			Encoding:     "utf-8",
			Capacity:     4096,
			LineCapacity: 256,
		},
	}
}

// Load reads config.toml from ConfigDir and merges it over Default. A
// missing file is not an error.
func Load() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Default(), err
	}
	return LoadFile(path)
}

// LoadFile reads the given file and merges it over Default.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	var userCfg Config
	if _, err := toml.Decode(string(data), &userCfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}

	if userCfg.Document.Encoding != "" {
		cfg.Document.Encoding = userCfg.Document.Encoding
	}
	if userCfg.Document.Capacity != 0 {
		cfg.Document.Capacity = userCfg.Document.Capacity
	}
	if userCfg.Document.LineCapacity != 0 {
		cfg.Document.LineCapacity = userCfg.Document.LineCapacity
	}
	if userCfg.Log.Debug {
		cfg.Log.Debug = userCfg.Log.Debug
	}
	if userCfg.Log.File != "" {
		cfg.Log.File = userCfg.Log.File
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var err error
	if _, lerr := charset.Lookup(c.Document.Encoding); lerr != nil {
		err = multierr.Append(err, fmt.Errorf("document.encoding: %w", lerr))
	}
	if c.Document.Capacity < 0 {
		err = multierr.Append(err, errors.New("document.capacity must not be negative"))
	}
	if c.Document.LineCapacity < 0 {
		err = multierr.Append(err, errors.New("document.line-capacity must not be negative"))
	}
	return err
}

// Codec resolves the configured encoding.
func (c Config) Codec() (charset.Codec, error) {
	return charset.Lookup(c.Document.Encoding)
}

func ConfigDir() (string, error) {
	if v := os.Getenv("LINETRACK_CONFIG_HOME"); v != "" {
		return v, nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "linetrack"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "linetrack"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}
