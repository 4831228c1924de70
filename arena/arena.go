// Package arena provides a scoped bump allocator for per-frame scratch
// memory. Allocations are never freed individually; the whole arena is
// rewound at the start of the next frame and its slabs are reused.
package arena

const defaultSlabSize = 1024

// Arena hands out sub-slices of growing slabs of T. Alloc returns a zeroed,
// contiguous slice; Reset rewinds every slab without releasing the memory so
// steady-state frames allocate nothing.
type Arena[T any] struct {
	slabs    [][]T
	current  int
	offset   int
	slabSize int
}

// New creates an arena whose slabs hold at least slabSize elements.
func New[T any](slabSize int) *Arena[T] {
	if slabSize <= 0 {
		slabSize = defaultSlabSize
	}

	return &Arena[T]{slabSize: slabSize}
}

// Alloc returns a zeroed slice of n elements backed by the arena. The slice
// is valid until the next Reset. n <= 0 returns nil.
func (a *Arena[T]) Alloc(n int) []T {
	if n <= 0 {
		return nil
	}

	for a.current < len(a.slabs) {
		slab := a.slabs[a.current]
		if a.offset+n <= len(slab) {
			out := slab[a.offset : a.offset+n : a.offset+n]
			a.offset += n
			clear(out)
			return out
		}
		a.current++
		a.offset = 0
	}

	size := a.slabSize
	if n > size {
		size = n
	}
	slab := make([]T, size)
	a.slabs = append(a.slabs, slab)
	a.current = len(a.slabs) - 1
	a.offset = n

	return slab[0:n:n]
}

// Reset rewinds the arena. Previously returned slices must no longer be used;
// their memory is handed out again by subsequent Alloc calls.
func (a *Arena[T]) Reset() {
	a.current = 0
	a.offset = 0
}

// Cap reports the total number of elements held across all slabs.
func (a *Arena[T]) Cap() int {
	total := 0
	for _, slab := range a.slabs {
		total += len(slab)
	}

	return total
}
