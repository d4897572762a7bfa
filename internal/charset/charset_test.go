package charset

import (
	"errors"
	"testing"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
)

func TestUTF8Codec(t *testing.T) {
	b := []byte("aé日\n")
	if got := UTF8.CharCount(b); got != 4 {
		t.Fatalf("CharCount = %d, want 4", got)
	}
	if got := UTF8.NextChar(b[1:]); got != 2 {
		t.Fatalf("NextChar(é) = %d, want 2", got)
	}
	if got := UTF8.NextChar(b[3:]); got != 3 {
		t.Fatalf("NextChar(日) = %d, want 3", got)
	}
	if got := UTF8.NextChar(nil); got != 0 {
		t.Fatalf("NextChar(nil) = %d, want 0", got)
	}
}

func TestUTF8MalformedBytesProgress(t *testing.T) {
	b := []byte{0xe6, 0x97, 'x', 0xff}
	if got := UTF8.CharCount(b); got != 4 {
		t.Fatalf("CharCount = %d, want 4", got)
	}
	if got := UTF8.NextChar(b); got != 1 {
		t.Fatalf("NextChar(truncated) = %d, want 1", got)
	}
}

func TestLookupLatin1IsTrueLatin1(t *testing.T) {
	c, err := Lookup("Latin1")
	if err != nil {
		t.Fatalf("Lookup error: %v", err)
	}
	if c.Name() != "iso-8859-1" {
		t.Fatalf("Name = %q, want iso-8859-1", c.Name())
	}
	b := []byte{'c', 'a', 'f', 0xe9, 0x80}
	if got := c.CharCount(b); got != 5 {
		t.Fatalf("CharCount = %d, want 5", got)
	}
	if got := c.Decode(b[:4]); got != "café" {
		t.Fatalf("Decode = %q, want %q", got, "café")
	}
}

func TestLookupWindows1252(t *testing.T) {
	c, err := Lookup("cp1252")
	if err != nil {
		t.Fatalf("Lookup error: %v", err)
	}
	if c.Name() != "windows-1252" {
		t.Fatalf("Name = %q, want windows-1252", c.Name())
	}
	if got := c.Decode([]byte{0x80}); got != "€" {
		t.Fatalf("Decode(0x80) = %q, want €", got)
	}
	if got := c.NextChar([]byte{0x80, 0x80}); got != 1 {
		t.Fatalf("NextChar = %d, want 1", got)
	}
}

func TestShiftJIS(t *testing.T) {
	c, err := Lookup("shift_jis")
	if err != nil {
		t.Fatalf("Lookup error: %v", err)
	}
	b, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte("日本a"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(b) != 5 {
		t.Fatalf("encoded length = %d, want 5", len(b))
	}
	if got := c.CharCount(b); got != 3 {
		t.Fatalf("CharCount = %d, want 3", got)
	}
	if got := c.NextChar(b); got != 2 {
		t.Fatalf("NextChar = %d, want 2", got)
	}
	if got := c.NextChar(b[:1]); got != 1 {
		t.Fatalf("NextChar(truncated) = %d, want 1", got)
	}
	if got := c.Decode(b); got != "日本a" {
		t.Fatalf("Decode = %q", got)
	}
}

func TestEUCKR(t *testing.T) {
	c, err := Lookup("euc-kr")
	if err != nil {
		t.Fatalf("Lookup error: %v", err)
	}
	b, err := korean.EUCKR.NewEncoder().Bytes([]byte("한글\n"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got := c.CharCount(b); got != 3 {
		t.Fatalf("CharCount = %d, want 3", got)
	}
}

func TestLookupErrors(t *testing.T) {
	if _, err := Lookup("no-such-charset"); !errors.Is(err, ErrUnknown) {
		t.Fatalf("err = %v, want ErrUnknown", err)
	}
	for _, name := range []string{"utf-16le", "utf-16be", "iso-2022-jp", "csiso2022jp"} {
		if _, err := Lookup(name); !errors.Is(err, ErrUnsupported) {
			t.Fatalf("Lookup(%q) err = %v, want ErrUnsupported", name, err)
		}
	}
	c, err := Lookup("")
	if err != nil || c != UTF8 {
		t.Fatalf("Lookup(\"\") = %v, %v; want UTF8", c, err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	for _, name := range []string{"utf-8", "euc-kr", "shift_jis", "latin1"} {
		c, err := Lookup(name)
		if err != nil {
			t.Fatalf("Lookup(%q) error: %v", name, err)
		}
		text := "line one\nline two\n"
		switch name {
		case "euc-kr":
			text = "한글\nabc"
		case "shift_jis":
			text = "日本\nabc"
		case "latin1":
			text = "café\n"
		}
		b, err := c.Encode(text)
		if err != nil {
			t.Fatalf("%s: Encode error: %v", name, err)
		}
		if got := c.Decode(b); got != text {
			t.Fatalf("%s: round trip = %q, want %q", name, got, text)
		}
	}
}
