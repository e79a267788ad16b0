package eval

import (
	"rebo/internal/value"
)

// Puller is the forward-only source variant: each call yields the next cell,
// reporting false once the sequence is exhausted.
type Puller func() (value.Cell, bool)

// optimizedOut is prepended to a reified remainder when the already-consumed
// prefix cannot be recovered.
var optimizedOut = value.Intern("--optimized-out--")

// Feed is the evaluator's source stream: either an array with a cursor, or a
// pull iterator standing in for a C-style variadic call sequence. Current is
// the prefetched cell the evaluator is looking at; Index is where the NEXT
// fetch reads from in array mode.
type Feed struct {
	Array *value.Array
	Index int

	pull  Puller
	vaBuf value.Cell

	// Current is nil at end of stream. Prefetch is free and repeatable;
	// only Fetch advances.
	Current *value.Cell
}

// NewArrayFeed positions a feed at index within a. The cell at index becomes
// Current; Index advances past it.
func NewArrayFeed(a *value.Array, index int) *Feed {
	fd := &Feed{Array: a, Index: index}
	fd.Current = a.At(index)
	if fd.Current != nil {
		fd.Index = index + 1
	}
	return fd
}

// NewPullFeed wraps a forward-only sequence. An optional first cell may be
// supplied out-of-band (the opt-first mechanism used by apply).
func NewPullFeed(first *value.Cell, pull Puller) *Feed {
	fd := &Feed{pull: pull}
	if first != nil {
		fd.vaBuf = *first
		fd.Current = &fd.vaBuf
	} else {
		fd.fetchPull()
	}
	return fd
}

// SeedFirst replaces Current with an out-of-band cell without touching the
// cursor, so the next Fetch continues from the underlying stream.
func (fd *Feed) SeedFirst(c *value.Cell) {
	fd.vaBuf = *c
	fd.Current = &fd.vaBuf
}

// Variadic reports whether the feed is still in forward-only mode.
func (fd *Feed) Variadic() bool { return fd.pull != nil }

// AtEnd reports end of stream.
func (fd *Feed) AtEnd() bool { return fd.Current == nil }

// Fetch advances to the next cell. In array mode the array length is
// re-checked on every fetch: a backing array truncated behind the frame's
// back reads as end-of-stream.
func (fd *Feed) Fetch() {
	if fd.pull != nil {
		fd.fetchPull()
		return
	}
	fd.Current = fd.Array.At(fd.Index)
	if fd.Current != nil {
		fd.Index++
	}
}

func (fd *Feed) fetchPull() {
	c, ok := fd.pull()
	if !ok {
		fd.Current = nil
		fd.pull = nil
		return
	}
	fd.vaBuf = c
	fd.Current = &fd.vaBuf
}

// Reify materializes a variadic remainder into a fresh locked array and
// switches the feed to array mode, preserving Current's position. With
// truncated, an --optimized-out-- marker records that the consumed prefix is
// gone. Idempotent: an array-mode feed is returned unchanged.
func (fd *Feed) Reify(truncated bool) {
	if fd.pull == nil && fd.Array != nil {
		return
	}
	a := value.NewArray(8)
	if truncated {
		a.Append(value.Word(optimizedOut))
	}
	cur := -1
	if fd.Current != nil {
		cur = a.Len()
		a.Append(*fd.Current)
	}
	if fd.pull != nil {
		for {
			c, ok := fd.pull()
			if !ok {
				break
			}
			a.Append(c)
		}
	}
	a.Flags |= value.ArrayLocked
	fd.pull = nil
	fd.Array = a
	if cur >= 0 {
		fd.Current = a.At(cur)
		fd.Index = cur + 1
	} else {
		fd.Current = nil
		fd.Index = a.Len()
	}
}

// Position returns the index of the current cell in array mode, or the array
// length at end. Meaningless (-1) while variadic.
func (fd *Feed) Position() int {
	if fd.pull != nil {
		return -1
	}
	if fd.Current == nil {
		if fd.Array != nil {
			return fd.Array.Len()
		}
		return 0
	}
	return fd.Index - 1
}
