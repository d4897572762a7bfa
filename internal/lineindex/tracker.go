// Package lineindex maps between line indexes, character offsets and byte
// offsets of a document stored by a byte-oriented host.
//
// The host performs every edit and then reports it with NotifyInserted or
// NotifyDeleted. The Tracker keeps one record per line, plus a terminal
// record whose start is the character length of the document, in a gap
// buffer. A change to one line's length is not written into every following
// record. Instead the tracker remembers a pending shift (stepLength) that
// applies to all records after stepLine and moves that anchor one record at a
// time when a later edit lands elsewhere. The true start of record i is
//
//	record[i].start + stepLength   if i > stepLine
//	record[i].start                otherwise
//
// so edits clustered near each other cost time proportional to the distance
// between them rather than to the number of lines.
//
// A Tracker is not safe for concurrent use.
package lineindex

import (
	"go.uber.org/zap"

	"github.com/kobzarvs/linetrack/internal/charset"
	"github.com/kobzarvs/linetrack/internal/gapbuf"
)

// Host is the byte-oriented text engine that owns the document.
type Host interface {
	ByteLength() int
	LineCount() int
	// LineFromByte returns the line containing byte pos, 0 <= pos <= ByteLength().
	LineFromByte(pos int) int
	LineByteStart(line int) int
	// LineByteLength includes the line terminator.
	LineByteLength(line int) int
	ByteRange(pos, length int) []byte
}

// Multibyte records whether a line is known to hold characters wider than
// one byte.
type Multibyte uint8

const (
	MultibyteUnknown Multibyte = iota
	MultibyteNo
	MultibyteYes
)

func (m Multibyte) String() string {
	switch m {
	case MultibyteNo:
		return "no"
	case MultibyteYes:
		return "yes"
	default:
		return "unknown"
	}
}

type record struct {
	start     int
	multibyte Multibyte
}

// Stats counts the work done resolving the deferred shift.
type Stats struct {
	// StepMoves is the number of records rewritten while moving the anchor.
	StepMoves uint64
}

// Tracker is the line offset table for one document.
type Tracker struct {
	host     Host
	codec    charset.Codec
	log      *zap.Logger
	capacity int

	lines      *gapbuf.Buffer[record]
	stepLine   int
	stepLength int
	stats      Stats
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the logger used for rebuild records.
func WithLogger(l *zap.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.log = l
		}
	}
}

// WithCapacity sets the initial number of records the table can hold
// before growing.
func WithCapacity(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.capacity = n
		}
	}
}

// New builds the table for the current content of host. A nil codec means
// UTF-8.
func New(host Host, codec charset.Codec, opts ...Option) *Tracker {
	if codec == nil {
		codec = charset.UTF8
	}
	t := &Tracker{
		host:     host,
		codec:    codec,
		log:      zap.NewNop(),
		capacity: 256,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.Rebuild()
	return t
}

// Codec returns the encoding used to measure lines.
func (t *Tracker) Codec() charset.Codec {
	return t.codec
}

// Stats returns a copy of the work counters.
func (t *Tracker) Stats() Stats {
	return t.stats
}

// Rebuild discards every record and measures the whole document again.
func (t *Tracker) Rebuild() {
	if t.lines == nil {
		t.lines = gapbuf.New[record](max(t.capacity, t.host.LineCount()+1))
	} else {
		t.lines.Clear()
	}
	t.lines.Append(record{})
	t.lines.Append(record{})
	t.stepLine = 0
	t.stepLength = 0

	n := t.host.ByteLength()
	t.NotifyInserted(0, n, t.host.LineCount()-1, t.host.ByteRange(0, n))
	t.log.Debug("line index rebuilt",
		zap.Int("lines", t.LineCount()),
		zap.Int("bytes", n),
		zap.Int("chars", t.CharLength()),
		zap.String("encoding", t.codec.Name()),
	)
}

// LineCount returns the number of lines, excluding the terminal record.
func (t *Tracker) LineCount() int {
	return t.lines.Len() - 1
}

// CharLength returns the character length of the document.
func (t *Tracker) CharLength() int {
	return t.start(t.LineCount())
}

// LineStart returns the character offset where line begins. line may equal
// LineCount(), which yields CharLength().
func (t *Tracker) LineStart(line int) int {
	checkRange("LineStart", "line", line, 0, t.LineCount())
	return t.start(line)
}

// LineLength returns the character length of line including its terminator.
func (t *Tracker) LineLength(line int) int {
	checkRange("LineLength", "line", line, 0, t.LineCount()-1)
	return t.lineLength(line)
}

// LineFromCharOffset returns the line whose range contains offset. An offset
// equal to CharLength() belongs to the last line.
func (t *Tracker) LineFromCharOffset(offset int) int {
	checkRange("LineFromCharOffset", "offset", offset, 0, t.CharLength())
	return t.lineFromChar(offset)
}

// ByteToCharOffset converts a host byte offset to a character offset.
func (t *Tracker) ByteToCharOffset(pos int) int {
	checkRange("ByteToCharOffset", "byte offset", pos, 0, t.host.ByteLength())
	line := t.host.LineFromByte(pos)
	byteStart := t.host.LineByteStart(line)
	return t.start(line) + t.codec.CharCount(t.host.ByteRange(byteStart, pos-byteStart))
}

// CharToByteOffset converts a character offset to a host byte offset.
func (t *Tracker) CharToByteOffset(offset int) int {
	checkRange("CharToByteOffset", "offset", offset, 0, t.CharLength())
	line := t.lineFromChar(offset)
	byteStart := t.host.LineByteStart(line)
	rel := offset - t.start(line)
	if !t.containsMultibyte(line) {
		return byteStart + rel
	}

	b := t.host.ByteRange(byteStart, t.host.LineByteLength(line))
	pos := 0
	for ; rel > 0 && pos < len(b); rel-- {
		pos += t.codec.NextChar(b[pos:])
	}
	return byteStart + pos
}

// LineContainsMultibyte reports whether line holds a character encoded in
// more than one byte, measuring the line the first time it is asked.
func (t *Tracker) LineContainsMultibyte(line int) bool {
	checkRange("LineContainsMultibyte", "line", line, 0, t.LineCount()-1)
	return t.containsMultibyte(line)
}

// MultibyteState returns the cached state of line without measuring it.
func (t *Tracker) MultibyteState(line int) Multibyte {
	checkRange("MultibyteState", "line", line, 0, t.LineCount()-1)
	return t.lines.At(line).multibyte
}

// NotifyInserted must be called right after the host inserted length bytes
// at pos, creating linesAdded new lines. text holds the inserted bytes.
func (t *Tracker) NotifyInserted(pos, length, linesAdded int, text []byte) {
	const op = "NotifyInserted"
	if linesAdded < 0 {
		inconsistent(op, "negative line count %d", linesAdded)
	}
	t.checkNotification(op, pos, length, length, text)
	if got, want := t.host.LineCount(), t.LineCount()+linesAdded; got != want {
		inconsistent(op, "host has %d lines, want %d", got, want)
	}

	line := t.host.LineFromByte(pos)
	if linesAdded == 0 {
		t.adjustLineLength(line, t.codec.CharCount(text))
		return
	}

	// The start line was split; its tail now lives on the last new line.
	byteStart := t.host.LineByteStart(line)
	byteLength := t.host.LineByteLength(line)
	t.adjustLineLength(line, t.measure(byteStart, byteLength)-t.lineLength(line))
	for i := 1; i <= linesAdded; i++ {
		byteStart += byteLength
		byteLength = t.host.LineByteLength(line + i)
		t.insertLine(line+i, t.measure(byteStart, byteLength))
	}
}

// NotifyDeleted must be called right after the host removed length bytes at
// pos, joining linesRemoved lines. text holds the removed bytes.
func (t *Tracker) NotifyDeleted(pos, length, linesRemoved int, text []byte) {
	const op = "NotifyDeleted"
	if linesRemoved < 0 {
		inconsistent(op, "negative line count %d", linesRemoved)
	}
	t.checkNotification(op, pos, length, 0, text)
	if got, want := t.host.LineCount(), t.LineCount()-linesRemoved; got != want {
		inconsistent(op, "host has %d lines, want %d", got, want)
	}

	line := t.host.LineFromByte(pos)
	if linesRemoved == 0 {
		t.adjustLineLength(line, -t.codec.CharCount(text))
		return
	}

	for i := 0; i < linesRemoved; i++ {
		t.removeLine(line + 1)
	}
	byteStart := t.host.LineByteStart(line)
	byteLength := t.host.LineByteLength(line)
	t.adjustLineLength(line, t.measure(byteStart, byteLength)-t.lineLength(line))
}

// checkNotification validates the byte range of an edit. extent is the part
// of it still present in the host: all of an insert, none of a delete.
func (t *Tracker) checkNotification(op string, pos, length, extent int, text []byte) {
	if len(text) != length {
		inconsistent(op, "length %d but %d bytes of text", length, len(text))
	}
	if pos < 0 || pos+extent > t.host.ByteLength() {
		inconsistent(op, "range [%d,%d) outside document of %d bytes", pos, pos+extent, t.host.ByteLength())
	}
}

func (t *Tracker) start(line int) int {
	s := t.lines.At(line).start
	if line > t.stepLine {
		s += t.stepLength
	}
	return s
}

func (t *Tracker) lineLength(line int) int {
	return t.start(line+1) - t.start(line)
}

// lineFromChar returns the rightmost real line starting at or before offset.
func (t *Tracker) lineFromChar(offset int) int {
	lo, hi := 0, t.LineCount()-1
	line := 0
	for lo <= hi {
		mid := lo + (hi-lo)/2
		if t.start(mid) <= offset {
			line = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return line
}

func (t *Tracker) measure(byteStart, byteLength int) int {
	return t.codec.CharCount(t.host.ByteRange(byteStart, byteLength))
}

func (t *Tracker) containsMultibyte(line int) bool {
	r := t.lines.At(line)
	if r.multibyte == MultibyteUnknown {
		r.multibyte = MultibyteYes
		if t.host.LineByteLength(line) == t.lineLength(line) {
			r.multibyte = MultibyteNo
		}
		t.lines.Set(line, r)
	}
	return r.multibyte == MultibyteYes
}

// moveStep anchors the pending shift at line, folding it into the records
// it passes so that every true start is preserved.
func (t *Tracker) moveStep(line int) {
	if t.stepLength == 0 {
		t.stepLine = line
		return
	}
	for t.stepLine < line {
		t.stepLine++
		r := t.lines.At(t.stepLine)
		r.start += t.stepLength
		t.lines.Set(t.stepLine, r)
		t.stats.StepMoves++
	}
	for t.stepLine > line {
		r := t.lines.At(t.stepLine)
		r.start -= t.stepLength
		t.lines.Set(t.stepLine, r)
		t.stepLine--
		t.stats.StepMoves++
	}
}

// adjustLineLength grows line by delta characters, shifting every later line.
func (t *Tracker) adjustLineLength(line, delta int) {
	t.moveStep(line)
	t.stepLength += delta
	r := t.lines.At(line)
	r.multibyte = MultibyteUnknown
	t.lines.Set(line, r)
}

// insertLine adds a line of length characters at index line. The line that
// was there, and everything after it, moves down by one.
func (t *Tracker) insertLine(line, length int) {
	t.moveStep(line)
	r := t.lines.At(line)
	// The displaced record lands after the anchor, so store it relative to
	// the pending shift.
	t.lines.Insert(line+1, record{start: r.start - t.stepLength, multibyte: r.multibyte})
	r.multibyte = MultibyteUnknown
	t.lines.Set(line, r)
	t.stepLength += length
}

// removeLine drops the record of line, giving its characters back.
func (t *Tracker) removeLine(line int) {
	t.moveStep(line)
	t.stepLength -= t.lineLength(line)
	t.lines.RemoveAt(line)
	t.stepLine--
}
