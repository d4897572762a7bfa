package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileType assigns an encoding to files by extension or base name.
type FileType struct {
	Name      string   `toml:"name"`
	FileTypes []string `toml:"file-types"`
	Encoding  string   `toml:"encoding"`
}

type Encodings struct {
	FileTypes []FileType `toml:"file-type"`
}

// Match returns the first rule whose file types cover path, or nil.
func (e Encodings) Match(path string) *FileType {
	base := filepath.Base(path)
	baseLower := strings.ToLower(base)
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(base), "."))
	for i := range e.FileTypes {
		ft := &e.FileTypes[i]
		for _, pattern := range ft.FileTypes {
			p := strings.ToLower(pattern)
			if p == ext || p == baseLower {
				return ft
			}
			if strings.HasPrefix(p, ".") && strings.TrimPrefix(p, ".") == ext {
				return ft
			}
		}
	}
	return nil
}

// EncodingFor returns the encoding for path, falling back to def.
func (e Encodings) EncodingFor(path, def string) string {
	if ft := e.Match(path); ft != nil && ft.Encoding != "" {
		return ft.Encoding
	}
	return def
}

func LoadEncodings() (Encodings, error) {
	path, err := EncodingsPath()
	if err != nil {
		return Encodings{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Encodings{}, nil
		}
		return Encodings{}, err
	}

	var cfg Encodings
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Encodings{}, err
	}
	return cfg, nil
}

func EncodingsPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "encodings.toml"), nil
}
