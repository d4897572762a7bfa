// Package textbuf pairs a document with a line offset tracker. Every edit
// goes to the document first and is then reported to the tracker, so line
// and character queries always describe the current text.
package textbuf

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kobzarvs/linetrack/internal/charset"
	"github.com/kobzarvs/linetrack/internal/document"
	"github.com/kobzarvs/linetrack/internal/lineindex"
)

var _ lineindex.Host = (*document.Document)(nil)

// Line is a snapshot of one line. Positions and lengths count characters;
// ByteStart and ByteLength are in document bytes. Both lengths include the
// line terminator.
type Line struct {
	Index       int
	Position    int
	EndPosition int
	Length      int
	Text        string
	ByteStart   int
	ByteLength  int
	Multibyte   bool
}

// Buffer is a document kept in step with its line offset tracker.
type Buffer struct {
	doc     *document.Document
	tracker *lineindex.Tracker
	log     *zap.Logger
	tick    uint64
}

type options struct {
	log          *zap.Logger
	lineCapacity int
}

// Option configures a Buffer.
type Option func(*options)

// WithLogger sets the logger for edits and the tracker.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithLineCapacity sets the initial number of line records.
func WithLineCapacity(n int) Option {
	return func(o *options) {
		o.lineCapacity = n
	}
}

// New wraps doc. A nil doc starts empty and a nil codec means UTF-8.
func New(doc *document.Document, codec charset.Codec, opts ...Option) *Buffer {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if doc == nil {
		doc = document.New(0)
	}

	trackerOpts := []lineindex.Option{lineindex.WithLogger(o.log.Named("lineindex"))}
	if o.lineCapacity > 0 {
		trackerOpts = append(trackerOpts, lineindex.WithCapacity(o.lineCapacity))
	}
	return &Buffer{
		doc:     doc,
		tracker: lineindex.New(doc, codec, trackerOpts...),
		log:     o.log,
		tick:    doc.ChangeTick(),
	}
}

func (b *Buffer) Document() *document.Document {
	return b.doc
}

func (b *Buffer) Tracker() *lineindex.Tracker {
	b.sync()
	return b.tracker
}

func (b *Buffer) Codec() charset.Codec {
	return b.tracker.Codec()
}

// Insert puts text before byte pos. pos must fall between characters.
func (b *Buffer) Insert(pos int, text string) error {
	b.sync()
	if err := b.checkBoundary("insert", pos); err != nil {
		return err
	}
	ch, err := b.doc.Insert(pos, []byte(text))
	if err != nil {
		return err
	}
	b.notify(ch)
	return nil
}

// Delete removes n bytes starting at byte pos. Both ends of the range
// must fall between characters.
func (b *Buffer) Delete(pos, n int) error {
	b.sync()
	if err := b.checkBoundary("delete", pos); err != nil {
		return err
	}
	if err := b.checkBoundary("delete", pos+n); err != nil {
		return err
	}
	ch, err := b.doc.Delete(pos, n)
	if err != nil {
		return err
	}
	b.notify(ch)
	return nil
}

// Replace deletes n bytes at pos and inserts text in their place.
func (b *Buffer) Replace(pos, n int, text string) error {
	if err := b.Delete(pos, n); err != nil {
		return fmt.Errorf("replace: %w", err)
	}
	if text == "" {
		return nil
	}
	if err := b.Insert(pos, text); err != nil {
		return fmt.Errorf("replace: %w", err)
	}
	return nil
}

// SetText replaces the whole content and rebuilds the line index.
func (b *Buffer) SetText(text string) {
	b.doc.SetText([]byte(text))
	b.tracker.Rebuild()
	b.tick = b.doc.ChangeTick()
	b.log.Debug("text replaced", zap.Int("bytes", len(text)), zap.Int("lines", b.tracker.LineCount()))
}

// InsertAtChar inserts text before character offset c.
func (b *Buffer) InsertAtChar(c int, text string) error {
	b.sync()
	if c < 0 || c > b.tracker.CharLength() {
		return fmt.Errorf("insert at char %d (length %d): %w", c, b.tracker.CharLength(), document.ErrRange)
	}
	return b.Insert(b.tracker.CharToByteOffset(c), text)
}

// DeleteChars removes n characters starting at character offset c.
func (b *Buffer) DeleteChars(c, n int) error {
	b.sync()
	total := b.tracker.CharLength()
	if c < 0 || n < 0 || c+n > total {
		return fmt.Errorf("delete %d chars at %d (length %d): %w", n, c, total, document.ErrRange)
	}
	start := b.tracker.CharToByteOffset(c)
	end := b.tracker.CharToByteOffset(c + n)
	return b.Delete(start, end-start)
}

func (b *Buffer) LineCount() int {
	b.sync()
	return b.tracker.LineCount()
}

func (b *Buffer) CharLength() int {
	b.sync()
	return b.tracker.CharLength()
}

func (b *Buffer) LineStart(line int) int {
	b.sync()
	return b.tracker.LineStart(line)
}

func (b *Buffer) LineLength(line int) int {
	b.sync()
	return b.tracker.LineLength(line)
}

func (b *Buffer) LineFromCharOffset(c int) int {
	b.sync()
	return b.tracker.LineFromCharOffset(c)
}

func (b *Buffer) ByteToCharOffset(pos int) int {
	b.sync()
	return b.tracker.ByteToCharOffset(pos)
}

func (b *Buffer) CharToByteOffset(c int) int {
	b.sync()
	return b.tracker.CharToByteOffset(c)
}

// Line returns line i, clamping i into the valid range.
func (b *Buffer) Line(i int) Line {
	b.sync()
	i = max(0, min(i, b.tracker.LineCount()-1))
	start := b.tracker.LineStart(i)
	length := b.tracker.LineLength(i)
	byteStart := b.doc.LineByteStart(i)
	byteLength := b.doc.LineByteLength(i)
	return Line{
		Index:       i,
		Position:    start,
		EndPosition: start + length,
		Length:      length,
		Text:        b.tracker.Codec().Decode(b.doc.ByteRange(byteStart, byteLength)),
		ByteStart:   byteStart,
		ByteLength:  byteLength,
		Multibyte:   b.tracker.LineContainsMultibyte(i),
	}
}

func (b *Buffer) Lines() []Line {
	n := b.LineCount()
	lines := make([]Line, n)
	for i := range lines {
		lines[i] = b.Line(i)
	}
	return lines
}

// Text returns the decoded content.
func (b *Buffer) Text() string {
	return b.tracker.Codec().Decode(b.doc.Bytes())
}

func (b *Buffer) notify(ch document.Change) {
	m := lineindex.Modification{
		Position:   ch.Position,
		Length:     ch.Length,
		LinesAdded: ch.LinesAdded,
		Text:       ch.Text,
	}
	switch ch.Kind {
	case document.Inserted:
		m.Type = lineindex.Insertion
	case document.Deleted:
		m.Type = lineindex.Deletion
	}
	b.tracker.Apply(m)
	b.tick = b.doc.ChangeTick()
	b.log.Debug("edit applied",
		zap.Stringer("kind", ch.Kind),
		zap.Int("pos", ch.Position),
		zap.Int("length", ch.Length),
		zap.Int("lines", ch.LinesAdded),
	)
}

// checkBoundary rejects a byte offset inside a multibyte character.
// Offsets outside the document are left for the document to report.
func (b *Buffer) checkBoundary(op string, pos int) error {
	if pos < 0 || pos > b.doc.ByteLength() {
		return nil
	}
	if b.tracker.CharToByteOffset(b.tracker.ByteToCharOffset(pos)) != pos {
		return fmt.Errorf("%s at byte %d: not a character boundary in %s: %w",
			op, pos, b.tracker.Codec().Name(), document.ErrRange)
	}
	return nil
}

// sync rebuilds the index when the document was edited behind our back.
func (b *Buffer) sync() {
	if tick := b.doc.ChangeTick(); tick != b.tick {
		b.log.Warn("document changed without notification, rebuilding",
			zap.Uint64("expected", b.tick),
			zap.Uint64("actual", tick),
		)
		b.tracker.Rebuild()
		b.tick = tick
	}
}
