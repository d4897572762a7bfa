// Package script reads edit scripts: an initial text plus a list of inserts
// and deletes to replay against a buffer. Scripts are TOML or YAML.
package script

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/kobzarvs/linetrack/internal/charset"
	"github.com/kobzarvs/linetrack/internal/document"
	"github.com/kobzarvs/linetrack/internal/textbuf"
)

var (
	ErrFormat  = errors.New("unsupported script format")
	ErrInvalid = errors.New("invalid edit")
)

const (
	OpInsert = "insert"
	OpDelete = "delete"
)

// Edit is one step. Pos and Length count bytes unless Chars is set.
type Edit struct {
	Op     string `toml:"op" yaml:"op"`
	Pos    int    `toml:"pos" yaml:"pos"`
	Text   string `toml:"text" yaml:"text"`
	Length int    `toml:"length" yaml:"length"`
	Chars  bool   `toml:"chars" yaml:"chars"`
}

func (e Edit) String() string {
	unit := "byte"
	if e.Chars {
		unit = "char"
	}
	if e.Op == OpInsert {
		return fmt.Sprintf("insert %q at %s %d", e.Text, unit, e.Pos)
	}
	return fmt.Sprintf("delete %d at %s %d", e.Length, unit, e.Pos)
}

type Script struct {
	Encoding string `toml:"encoding" yaml:"encoding"`
	Text     string `toml:"text" yaml:"text"`
	Edits    []Edit `toml:"edit" yaml:"edit"`
}

// Load reads a script, picking the decoder from the file extension.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes data in the format named by ext (".toml", ".yaml", ".yml").
func Parse(data []byte, ext string) (*Script, error) {
	var s Script
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "toml":
		if _, err := toml.Decode(string(data), &s); err != nil {
			return nil, err
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrFormat, ext)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks every edit on its own; ranges are checked when applied.
func (s *Script) Validate() error {
	var err error
	for i, e := range s.Edits {
		switch e.Op {
		case OpInsert:
			if e.Length != 0 {
				err = multierr.Append(err, fmt.Errorf("edit %d: %w: insert takes text, not length", i, ErrInvalid))
			}
		case OpDelete:
			if e.Text != "" {
				err = multierr.Append(err, fmt.Errorf("edit %d: %w: delete takes length, not text", i, ErrInvalid))
			}
			if e.Length < 0 {
				err = multierr.Append(err, fmt.Errorf("edit %d: %w: negative length %d", i, ErrInvalid, e.Length))
			}
		default:
			err = multierr.Append(err, fmt.Errorf("edit %d: %w: unknown op %q", i, ErrInvalid, e.Op))
		}
		if e.Pos < 0 {
			err = multierr.Append(err, fmt.Errorf("edit %d: %w: negative pos %d", i, ErrInvalid, e.Pos))
		}
	}
	return err
}

// Apply runs the edits against b in order. It stops at the first failing
// edit and reports its index.
func (s *Script) Apply(b *textbuf.Buffer, each func(i int, e Edit)) error {
	for i, e := range s.Edits {
		if err := apply(b, e); err != nil {
			return fmt.Errorf("edit %d (%s): %w", i, e, err)
		}
		if each != nil {
			each(i, e)
		}
	}
	return nil
}

// Buffer builds a buffer holding the script's initial text, encoded with
// the script's encoding.
func (s *Script) Buffer(opts ...textbuf.Option) (*textbuf.Buffer, error) {
	codec, err := charset.Lookup(s.Encoding)
	if err != nil {
		return nil, err
	}
	raw, err := codec.Encode(s.Text)
	if err != nil {
		return nil, err
	}
	return textbuf.New(document.FromBytes(raw), codec, opts...), nil
}

func apply(b *textbuf.Buffer, e Edit) error {
	var text string
	if e.Op == OpInsert {
		raw, err := b.Codec().Encode(e.Text)
		if err != nil {
			return err
		}
		text = string(raw)
	}
	switch {
	case e.Op == OpInsert && e.Chars:
		return b.InsertAtChar(e.Pos, text)
	case e.Op == OpInsert:
		return b.Insert(e.Pos, text)
	case e.Op == OpDelete && e.Chars:
		return b.DeleteChars(e.Pos, e.Length)
	case e.Op == OpDelete:
		return b.Delete(e.Pos, e.Length)
	}
	return fmt.Errorf("%w: unknown op %q", ErrInvalid, e.Op)
}
