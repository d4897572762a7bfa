// Package charset provides the character codecs used to measure byte ranges
// in decoded characters. Every codec here is ASCII compatible, so a '\n' byte
// always terminates a line regardless of the encoding.
package charset

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	gdencoding "github.com/gdamore/encoding"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

var (
	ErrUnknown     = errors.New("unknown encoding")
	ErrUnsupported = errors.New("encoding is not ASCII compatible")
)

// maxCharBytes is the longest byte sequence any supported encoding uses for
// a single character (GB18030 four-byte form).
const maxCharBytes = 4

// Codec counts and steps over characters in encoded bytes.
type Codec interface {
	Name() string
	// CharCount returns the number of characters in b. Malformed bytes
	// count as one character each.
	CharCount(b []byte) int
	// NextChar returns the byte width of the first character in b. It is
	// at least 1 for non-empty input and 0 for empty input.
	NextChar(b []byte) int
	// Decode converts b to a Go (UTF-8) string.
	Decode(b []byte) string
	// Encode converts a Go string to this encoding.
	Encode(s string) ([]byte, error)
}

// UTF8 is the default codec.
var UTF8 Codec = utf8Codec{}

type utf8Codec struct{}

func (utf8Codec) Name() string { return "utf-8" }

func (utf8Codec) CharCount(b []byte) int { return utf8.RuneCount(b) }

func (utf8Codec) NextChar(b []byte) int {
	if len(b) == 0 {
		return 0
	}
	_, size := utf8.DecodeRune(b)
	return size
}

func (utf8Codec) Decode(b []byte) string { return string(b) }

func (utf8Codec) Encode(s string) ([]byte, error) { return []byte(s), nil }

// singleByte maps every byte to exactly one character.
type singleByte struct {
	name string
	enc  encoding.Encoding
}

// NewSingleByte wraps an 8-bit encoding.
func NewSingleByte(name string, enc encoding.Encoding) Codec {
	return &singleByte{name: name, enc: enc}
}

func (c *singleByte) Name() string { return c.name }

func (c *singleByte) CharCount(b []byte) int { return len(b) }

func (c *singleByte) NextChar(b []byte) int { return min(len(b), 1) }

func (c *singleByte) Decode(b []byte) string {
	return decode(c.enc, b)
}

func (c *singleByte) Encode(s string) ([]byte, error) {
	return encode(c.name, c.enc, s)
}

// multiByte discovers character boundaries by feeding the decoder growing
// prefixes until it stops asking for more input.
type multiByte struct {
	name string
	enc  encoding.Encoding
	dec  *encoding.Decoder
	dst  [utf8.UTFMax * maxCharBytes]byte
}

// NewMultiByte wraps an ASCII compatible variable width encoding.
func NewMultiByte(name string, enc encoding.Encoding) Codec {
	return &multiByte{name: name, enc: enc, dec: enc.NewDecoder()}
}

func (c *multiByte) Name() string { return c.name }

func (c *multiByte) CharCount(b []byte) int {
	n := 0
	for len(b) > 0 {
		b = b[c.NextChar(b):]
		n++
	}
	return n
}

func (c *multiByte) NextChar(b []byte) int {
	if len(b) == 0 {
		return 0
	}
	if b[0] < utf8.RuneSelf {
		return 1
	}
	for n := 1; n <= len(b) && n <= maxCharBytes; n++ {
		c.dec.Reset()
		_, nSrc, err := c.dec.Transform(c.dst[:], b[:n], n == len(b))
		if errors.Is(err, transform.ErrShortSrc) {
			continue
		}
		if nSrc > 0 {
			return nSrc
		}
		break
	}
	return 1
}

func (c *multiByte) Decode(b []byte) string {
	return decode(c.enc, b)
}

func (c *multiByte) Encode(s string) ([]byte, error) {
	return encode(c.name, c.enc, s)
}

func decode(enc encoding.Encoding, b []byte) string {
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}

func encode(name string, enc encoding.Encoding, s string) ([]byte, error) {
	out, err := enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("encode to %s: %w", name, err)
	}
	return out, nil
}

// Lookup resolves an encoding name or WHATWG label.
func Lookup(name string) (Codec, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "", "utf-8", "utf8":
		return UTF8, nil
	case "ascii", "us-ascii":
		return NewSingleByte("us-ascii", gdencoding.ASCII), nil
	case "latin1", "latin-1", "iso-8859-1", "iso8859-1":
		// htmlindex maps these labels to windows-1252.
		return NewSingleByte("iso-8859-1", gdencoding.ISO8859_1), nil
	}

	enc, err := htmlindex.Get(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	canonical, err := htmlindex.Name(enc)
	if err != nil {
		canonical = key
	}
	switch {
	case canonical == "utf-8":
		return UTF8, nil
	case strings.HasPrefix(canonical, "utf-16"), canonical == "replacement",
		strings.HasPrefix(canonical, "iso-2022-"), canonical == "hz-gb-2312":
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, name)
	}
	if _, ok := enc.(*charmap.Charmap); ok {
		return NewSingleByte(canonical, enc), nil
	}
	return NewMultiByte(canonical, enc), nil
}
