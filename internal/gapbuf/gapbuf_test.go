package gapbuf

import (
	"errors"
	"math/rand"
	"slices"
	"testing"
)

func contents[T any](b *Buffer[T]) []T {
	out := make([]T, b.Len())
	for i := range out {
		out[i] = b.At(i)
	}
	return out
}

func expectIndexPanic(t *testing.T, op string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("%s did not panic", op)
		}
		err, ok := r.(error)
		if !ok {
			t.Fatalf("%s panicked with %T, want error", op, r)
		}
		var ie *IndexError
		if !errors.As(err, &ie) {
			t.Fatalf("%s panicked with %v, want *IndexError", op, err)
		}
	}()
	fn()
}

func TestInsertAtAndSet(t *testing.T) {
	b := New[int](2)
	b.Append(1)
	b.Append(3)
	b.Insert(1, 2)
	b.Insert(0, 0)
	if got, want := contents(b), []int{0, 1, 2, 3}; !slices.Equal(got, want) {
		t.Fatalf("contents = %v, want %v", got, want)
	}
	b.Set(2, 20)
	if got := b.At(2); got != 20 {
		t.Fatalf("At(2) = %d, want 20", got)
	}
	if b.Len() != 4 {
		t.Fatalf("Len = %d, want 4", b.Len())
	}
}

func TestZeroValueUsable(t *testing.T) {
	var b Buffer[string]
	b.Append("a")
	b.Insert(0, "b")
	if got, want := contents(&b), []string{"b", "a"}; !slices.Equal(got, want) {
		t.Fatalf("contents = %v, want %v", got, want)
	}
}

func TestRemove(t *testing.T) {
	b := New[int](4)
	b.InsertSlice(0, []int{0, 1, 2, 3, 4, 5})
	b.RemoveAt(0)
	b.RemoveRange(2, 2)
	if got, want := contents(b), []int{1, 2, 5}; !slices.Equal(got, want) {
		t.Fatalf("contents = %v, want %v", got, want)
	}
	b.RemoveAt(2)
	b.RemoveAt(0)
	if got, want := contents(b), []int{2}; !slices.Equal(got, want) {
		t.Fatalf("contents = %v, want %v", got, want)
	}
}

func TestSliceAcrossGap(t *testing.T) {
	b := New[byte](4)
	b.InsertSlice(0, []byte("hello world"))
	b.Insert(5, ',')
	if got := string(b.Slice(0, b.Len())); got != "hello, world" {
		t.Fatalf("Slice = %q, want %q", got, "hello, world")
	}
	if got := string(b.Slice(3, 8)); got != "lo, w" {
		t.Fatalf("Slice(3,8) = %q, want %q", got, "lo, w")
	}
	if got := string(b.Slice(7, 12)); got != "world" {
		t.Fatalf("Slice(7,12) = %q, want %q", got, "world")
	}
	if got := b.Slice(4, 4); len(got) != 0 {
		t.Fatalf("empty Slice = %q", got)
	}
}

func TestGapFollowsEdits(t *testing.T) {
	b := New[int](8)
	for i := 0; i < 100; i++ {
		b.Append(i)
	}
	b.Insert(50, -1)
	start, _ := b.Gap()
	if start != 51 {
		t.Fatalf("gap start = %d, want 51", start)
	}
	b.RemoveAt(49)
	start, _ = b.Gap()
	if start != 49 {
		t.Fatalf("gap start = %d, want 49", start)
	}
}

func TestRemovedSlotsAreZeroed(t *testing.T) {
	b := New[*int](4)
	for i := 0; i < 6; i++ {
		v := i
		b.Append(&v)
	}
	b.RemoveRange(1, 3)
	b.Insert(0, nil)
	start, end := b.Gap()
	for i := start; i < end; i++ {
		if b.buf[i] != nil {
			t.Fatalf("gap slot %d retains a value", i)
		}
	}
}

func TestClear(t *testing.T) {
	b := New[int](4)
	b.InsertSlice(0, []int{1, 2, 3})
	b.Clear()
	if b.Len() != 0 {
		t.Fatalf("Len after Clear = %d", b.Len())
	}
	b.Append(9)
	if got := b.At(0); got != 9 {
		t.Fatalf("At(0) = %d, want 9", got)
	}
}

func TestOutOfRangePanics(t *testing.T) {
	b := New[int](4)
	b.Append(1)
	expectIndexPanic(t, "At(-1)", func() { b.At(-1) })
	expectIndexPanic(t, "At(1)", func() { b.At(1) })
	expectIndexPanic(t, "Set(1)", func() { b.Set(1, 0) })
	expectIndexPanic(t, "Insert(2)", func() { b.Insert(2, 0) })
	expectIndexPanic(t, "RemoveAt(1)", func() { b.RemoveAt(1) })
	expectIndexPanic(t, "Slice(0,2)", func() { b.Slice(0, 2) })
}

func TestMatchesSliceModel(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	b := New[int](1)
	var model []int
	for step := 0; step < 5000; step++ {
		switch op := rng.Intn(4); {
		case op < 2 || len(model) == 0:
			i := rng.Intn(len(model) + 1)
			b.Insert(i, step)
			model = slices.Insert(model, i, step)
		case op == 2:
			i := rng.Intn(len(model))
			n := rng.Intn(len(model)-i) + 1
			b.RemoveRange(i, n)
			model = slices.Delete(model, i, i+n)
		default:
			i := rng.Intn(len(model))
			b.Set(i, -step)
			model[i] = -step
		}
		if b.Len() != len(model) {
			t.Fatalf("step %d: Len = %d, want %d", step, b.Len(), len(model))
		}
	}
	if got := contents(b); !slices.Equal(got, model) {
		t.Fatalf("contents diverged from model")
	}
}

func BenchmarkLocalInserts(b *testing.B) {
	buf := New[int](0)
	for i := 0; i < 100000; i++ {
		buf.Append(i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pos := 50000 + i%16
		buf.Insert(pos, i)
		buf.RemoveAt(pos)
	}
}
