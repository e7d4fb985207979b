package buffer

// Buffer collects the entries of a single in-flight operation.
// It is owned by one goroutine at a time and does no locking.
type Buffer[T any] struct {
	ts []T
}

func New[T any]() *Buffer[T] {
	return &Buffer[T]{}
}

func (b *Buffer[T]) Add(es ...T) {
	b.ts = append(b.ts, es...)
}

func (b *Buffer[T]) Len() int {
	return len(b.ts)
}

// Items returns a copy of the buffered entries without draining them.
func (b *Buffer[T]) Items() []T {
	out := make([]T, len(b.ts))
	copy(out, b.ts)
	return out
}

// Drain returns the buffered entries and empties the buffer.
func (b *Buffer[T]) Drain() []T {
	es := b.ts
	b.ts = nil
	return es
}

func (b *Buffer[T]) Reset() {
	b.ts = nil
}
