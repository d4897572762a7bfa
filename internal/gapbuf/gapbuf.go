// Package gapbuf implements a generic gap buffer: an array-backed sequence
// with a movable empty region. Inserts and removals near the previous edit
// only move the elements between the old and new gap position.
package gapbuf

import "fmt"

const defaultCapacity = 16

// IndexError is the panic value for out-of-range accesses.
type IndexError struct {
	Op    string
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("gapbuf: %s index %d out of range [0,%d)", e.Op, e.Index, e.Len)
}

// Buffer is an ordered sequence of T. The zero value is an empty buffer
// ready to use.
type Buffer[T any] struct {
	buf      []T
	gapStart int
	gapEnd   int
}

// New returns an empty buffer with room for capacity elements.
func New[T any](capacity int) *Buffer[T] {
	if capacity < 1 {
		capacity = defaultCapacity
	}
	return &Buffer[T]{buf: make([]T, capacity), gapEnd: capacity}
}

// Len returns the number of live elements.
func (b *Buffer[T]) Len() int {
	return len(b.buf) - (b.gapEnd - b.gapStart)
}

// Gap reports the current gap bounds in storage coordinates.
func (b *Buffer[T]) Gap() (start, end int) {
	return b.gapStart, b.gapEnd
}

// At returns the element at index i.
func (b *Buffer[T]) At(i int) T {
	b.check("At", i, b.Len())
	return b.buf[b.physical(i)]
}

// Set replaces the element at index i.
func (b *Buffer[T]) Set(i int, v T) {
	b.check("Set", i, b.Len())
	b.buf[b.physical(i)] = v
}

// Insert inserts v before index i. i may equal Len() to append.
func (b *Buffer[T]) Insert(i int, v T) {
	b.check("Insert", i, b.Len()+1)
	b.moveGap(i)
	b.ensureGap(1)
	b.buf[b.gapStart] = v
	b.gapStart++
}

// InsertSlice inserts vs before index i.
func (b *Buffer[T]) InsertSlice(i int, vs []T) {
	b.check("InsertSlice", i, b.Len()+1)
	if len(vs) == 0 {
		return
	}
	b.moveGap(i)
	b.ensureGap(len(vs))
	copy(b.buf[b.gapStart:], vs)
	b.gapStart += len(vs)
}

// Append adds v at the end.
func (b *Buffer[T]) Append(v T) {
	b.Insert(b.Len(), v)
}

// RemoveAt removes the element at index i.
func (b *Buffer[T]) RemoveAt(i int) {
	b.RemoveRange(i, 1)
}

// RemoveRange removes n elements starting at index i.
func (b *Buffer[T]) RemoveRange(i, n int) {
	if n == 0 {
		return
	}
	size := b.Len()
	if n < 0 || i < 0 || i+n > size {
		panic(&IndexError{Op: "RemoveRange", Index: i + n - 1, Len: size})
	}
	b.moveGap(i)
	var zero T
	for j := b.gapEnd; j < b.gapEnd+n; j++ {
		b.buf[j] = zero
	}
	b.gapEnd += n
}

// Clear removes every element but keeps the storage.
func (b *Buffer[T]) Clear() {
	clear(b.buf)
	b.gapStart = 0
	b.gapEnd = len(b.buf)
}

// Slice copies the elements in [i, j) into a new slice.
func (b *Buffer[T]) Slice(i, j int) []T {
	size := b.Len()
	if i < 0 || j < i || j > size {
		panic(&IndexError{Op: "Slice", Index: j, Len: size + 1})
	}
	out := make([]T, 0, j-i)
	if i < b.gapStart {
		out = append(out, b.buf[i:min(j, b.gapStart)]...)
	}
	if j > b.gapStart {
		from := max(i, b.gapStart)
		gap := b.gapEnd - b.gapStart
		out = append(out, b.buf[from+gap:j+gap]...)
	}
	return out
}

func (b *Buffer[T]) check(op string, i, limit int) {
	if i < 0 || i >= limit {
		panic(&IndexError{Op: op, Index: i, Len: limit})
	}
}

func (b *Buffer[T]) physical(i int) int {
	if i < b.gapStart {
		return i
	}
	return i + (b.gapEnd - b.gapStart)
}

// moveGap relocates the gap so that it starts at logical index i.
func (b *Buffer[T]) moveGap(i int) {
	if i == b.gapStart {
		return
	}
	var zero T
	if i < b.gapStart {
		n := b.gapStart - i
		copy(b.buf[b.gapEnd-n:b.gapEnd], b.buf[i:b.gapStart])
		for j := i; j < min(b.gapStart, b.gapEnd-n); j++ {
			b.buf[j] = zero
		}
		b.gapStart = i
		b.gapEnd -= n
		return
	}
	n := i - b.gapStart
	copy(b.buf[b.gapStart:b.gapStart+n], b.buf[b.gapEnd:b.gapEnd+n])
	for j := max(b.gapEnd, b.gapStart+n); j < b.gapEnd+n; j++ {
		b.buf[j] = zero
	}
	b.gapStart = i
	b.gapEnd += n
}

// ensureGap grows the storage so the gap holds at least n elements.
func (b *Buffer[T]) ensureGap(n int) {
	if b.gapEnd-b.gapStart >= n {
		return
	}
	size := b.Len()
	newCap := max(len(b.buf)*2, size+n, defaultCapacity)
	next := make([]T, newCap)
	copy(next, b.buf[:b.gapStart])
	tail := len(b.buf) - b.gapEnd
	copy(next[newCap-tail:], b.buf[b.gapEnd:])
	b.buf = next
	b.gapEnd = newCap - tail
}
