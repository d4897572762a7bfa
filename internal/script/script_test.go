package script

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/multierr"

	"github.com/kobzarvs/linetrack/internal/charset"
	"github.com/kobzarvs/linetrack/internal/document"
)

const tomlScript = `
encoding = "utf-8"
text = "alpha\nbeta\n"

[[edit]]
op = "insert"
pos = 6
text = "gämma\n"

[[edit]]
op = "delete"
pos = 0
length = 2
chars = true
`

const yamlScript = `
encoding: utf-8
text: "alpha\nbeta\n"
edit:
  - op: insert
    pos: 6
    text: "gämma\n"
  - op: delete
    pos: 0
    length: 2
    chars: true
`

func TestParseFormatsAgree(t *testing.T) {
	fromTOML, err := Parse([]byte(tomlScript), ".toml")
	if err != nil {
		t.Fatalf("toml: %v", err)
	}
	fromYAML, err := Parse([]byte(yamlScript), ".yml")
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if fromTOML.Text != fromYAML.Text || fromTOML.Encoding != fromYAML.Encoding {
		t.Fatalf("header mismatch: %+v vs %+v", fromTOML, fromYAML)
	}
	if len(fromTOML.Edits) != 2 || len(fromYAML.Edits) != 2 {
		t.Fatalf("edits: toml=%d yaml=%d, want 2", len(fromTOML.Edits), len(fromYAML.Edits))
	}
	for i := range fromTOML.Edits {
		if fromTOML.Edits[i] != fromYAML.Edits[i] {
			t.Fatalf("edit %d: %+v vs %+v", i, fromTOML.Edits[i], fromYAML.Edits[i])
		}
	}
}

func TestApply(t *testing.T) {
	s, err := Parse([]byte(tomlScript), "toml")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	b, err := s.Buffer()
	if err != nil {
		t.Fatalf("Buffer error: %v", err)
	}
	var seen []int
	if err := s.Apply(b, func(i int, _ Edit) { seen = append(seen, i) }); err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if got := b.Text(); got != "pha\ngämma\nbeta\n" {
		t.Fatalf("Text = %q", got)
	}
	if len(seen) != 2 {
		t.Fatalf("callback ran %d times, want 2", len(seen))
	}
	if b.LineCount() != 4 || b.LineStart(2) != 10 {
		t.Fatalf("LineCount=%d LineStart(2)=%d", b.LineCount(), b.LineStart(2))
	}
}

func TestApplyEncodesInsertedText(t *testing.T) {
	s := &Script{
		Encoding: "shift_jis",
		Text:     "日本\n",
		Edits:    []Edit{{Op: OpInsert, Pos: 1, Text: "語", Chars: true}},
	}
	b, err := s.Buffer()
	if err != nil {
		t.Fatalf("Buffer error: %v", err)
	}
	if err := s.Apply(b, nil); err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if got := b.Text(); got != "日語本\n" {
		t.Fatalf("Text = %q", got)
	}
	if b.CharLength() != 4 || b.Document().ByteLength() != 7 {
		t.Fatalf("CharLength=%d bytes=%d", b.CharLength(), b.Document().ByteLength())
	}
}

func TestApplyStopsAtBadEdit(t *testing.T) {
	s := &Script{
		Text: "abc",
		Edits: []Edit{
			{Op: OpDelete, Pos: 0, Length: 1},
			{Op: OpDelete, Pos: 5, Length: 1},
			{Op: OpInsert, Pos: 0, Text: "never"},
		},
	}
	b, err := s.Buffer()
	if err != nil {
		t.Fatalf("Buffer error: %v", err)
	}
	if err := s.Apply(b, nil); err == nil {
		t.Fatalf("Apply succeeded, want error")
	}
	if got := b.Text(); got != "bc" {
		t.Fatalf("Text = %q, want %q", got, "bc")
	}
}

func TestValidate(t *testing.T) {
	s := &Script{Edits: []Edit{
		{Op: "move"},
		{Op: OpInsert, Length: 3},
		{Op: OpDelete, Pos: -1, Length: -2},
	}}
	err := s.Validate()
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
	if n := len(multierr.Errors(err)); n != 4 {
		t.Fatalf("got %d errors, want 4: %v", n, err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "edits.yaml")
	if err := os.WriteFile(path, []byte(yamlScript), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(s.Edits) != 2 {
		t.Fatalf("edits = %d, want 2", len(s.Edits))
	}

	if _, err := Parse([]byte("{}"), ".json"); !errors.Is(err, ErrFormat) {
		t.Fatalf("err = %v, want ErrFormat", err)
	}
	if _, err := Load(filepath.Join(dir, "missing.toml")); err == nil {
		t.Fatalf("Load of missing file succeeded")
	}
}

func TestUnknownEncoding(t *testing.T) {
	s := &Script{Encoding: "klingon"}
	if _, err := s.Buffer(); !errors.Is(err, charset.ErrUnknown) {
		t.Fatalf("err = %v, want charset.ErrUnknown", err)
	}
}

func TestApplyRejectsByteEditInsideCharacter(t *testing.T) {
	s := &Script{
		Text: "añb\n",
		Edits: []Edit{
			{Op: OpInsert, Pos: 0, Text: ">"},
			{Op: OpInsert, Pos: 3, Text: "x"},
		},
	}
	b, err := s.Buffer()
	if err != nil {
		t.Fatalf("Buffer error: %v", err)
	}
	if err := s.Apply(b, nil); !errors.Is(err, document.ErrRange) {
		t.Fatalf("err = %v, want ErrRange", err)
	}
	if got := b.Text(); got != ">añb\n" {
		t.Fatalf("Text = %q", got)
	}
	if b.CharLength() != 5 {
		t.Fatalf("CharLength = %d, want 5", b.CharLength())
	}
}
