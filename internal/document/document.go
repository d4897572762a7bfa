// Package document is a byte-oriented text store. It owns the bytes, knows
// where every line begins, and describes each edit as a Change so that
// position bookkeeping layered on top can follow along incrementally.
package document

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/kobzarvs/linetrack/internal/gapbuf"
)

// ErrRange is returned for edits and lookups outside the document.
var ErrRange = errors.New("position out of range")

// Kind tells inserts and deletes apart.
type Kind uint8

const (
	Inserted Kind = iota + 1
	Deleted
)

func (k Kind) String() string {
	switch k {
	case Inserted:
		return "insert"
	case Deleted:
		return "delete"
	default:
		return "unknown"
	}
}

// Change describes an edit after it has been applied.
// LinesAdded is negative when a delete joined lines.
type Change struct {
	Kind       Kind
	Position   int
	Length     int
	LinesAdded int
	Text       []byte
}

// Document stores bytes in a gap buffer and keeps the byte offset of every
// line start. Lines end after '\n'; a '\r' before it belongs to the line.
type Document struct {
	text       *gapbuf.Buffer[byte]
	starts     *gapbuf.Buffer[int]
	changeTick uint64
}

// New returns an empty document.
func New(capacity int) *Document {
	d := &Document{
		text:   gapbuf.New[byte](capacity),
		starts: gapbuf.New[int](64),
	}
	d.starts.Append(0)
	return d
}

// FromBytes returns a document holding a copy of b.
func FromBytes(b []byte) *Document {
	d := New(len(b) + 64)
	d.SetText(b)
	return d
}

// SetText replaces the whole content. It is not reported as a Change.
func (d *Document) SetText(b []byte) {
	d.text.Clear()
	d.text.InsertSlice(0, b)
	d.starts.Clear()
	d.starts.Append(0)
	for i, c := range b {
		if c == '\n' {
			d.starts.Append(i + 1)
		}
	}
	d.changeTick++
}

// ChangeTick increases with every modification.
func (d *Document) ChangeTick() uint64 {
	return d.changeTick
}

func (d *Document) ByteLength() int {
	return d.text.Len()
}

func (d *Document) LineCount() int {
	return d.starts.Len()
}

// LineFromByte returns the line containing byte pos. pos may equal
// ByteLength(), which belongs to the last line.
func (d *Document) LineFromByte(pos int) int {
	if pos < 0 || pos > d.ByteLength() {
		panic(fmt.Errorf("document: LineFromByte(%d): %w", pos, ErrRange))
	}
	lo, hi := 0, d.starts.Len()-1
	result := 0
	for lo <= hi {
		mid := (lo + hi) / 2
		if d.starts.At(mid) <= pos {
			result = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return result
}

// LineByteStart returns the byte offset of line. line may equal LineCount(),
// which yields ByteLength().
func (d *Document) LineByteStart(line int) int {
	if line == d.starts.Len() {
		return d.ByteLength()
	}
	return d.starts.At(line)
}

// LineByteLength returns the byte length of line including its '\n'.
func (d *Document) LineByteLength(line int) int {
	return d.LineByteStart(line+1) - d.LineByteStart(line)
}

// ByteRange copies length bytes starting at pos.
func (d *Document) ByteRange(pos, length int) []byte {
	if pos < 0 || length < 0 || pos+length > d.ByteLength() {
		panic(fmt.Errorf("document: ByteRange(%d, %d): %w", pos, length, ErrRange))
	}
	return d.text.Slice(pos, pos+length)
}

func (d *Document) Bytes() []byte {
	return d.text.Slice(0, d.text.Len())
}

func (d *Document) String() string {
	return string(d.Bytes())
}

// Insert puts text before byte pos.
func (d *Document) Insert(pos int, text []byte) (Change, error) {
	if pos < 0 || pos > d.ByteLength() {
		return Change{}, fmt.Errorf("insert at %d (length %d): %w", pos, d.ByteLength(), ErrRange)
	}
	line := d.LineFromByte(pos)
	d.text.InsertSlice(pos, text)
	d.shiftStarts(line+1, len(text))

	added := 0
	for i, c := range text {
		if c == '\n' {
			added++
			d.starts.Insert(line+added, pos+i+1)
		}
	}
	d.changeTick++
	return Change{
		Kind:       Inserted,
		Position:   pos,
		Length:     len(text),
		LinesAdded: added,
		Text:       bytes.Clone(text),
	}, nil
}

// Delete removes n bytes starting at pos.
func (d *Document) Delete(pos, n int) (Change, error) {
	if pos < 0 || n < 0 || pos+n > d.ByteLength() {
		return Change{}, fmt.Errorf("delete %d bytes at %d (length %d): %w", n, pos, d.ByteLength(), ErrRange)
	}
	removed := d.text.Slice(pos, pos+n)
	line := d.LineFromByte(pos)
	joined := bytes.Count(removed, []byte{'\n'})
	d.text.RemoveRange(pos, n)
	d.starts.RemoveRange(line+1, joined)
	d.shiftStarts(line+1, -n)
	d.changeTick++
	return Change{
		Kind:       Deleted,
		Position:   pos,
		Length:     n,
		LinesAdded: -joined,
		Text:       removed,
	}, nil
}

func (d *Document) shiftStarts(from, delta int) {
	if delta == 0 {
		return
	}
	for i := from; i < d.starts.Len(); i++ {
		d.starts.Set(i, d.starts.At(i)+delta)
	}
}
