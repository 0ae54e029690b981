// Package tribuf implements a wait-free triple buffer for handing snapshots
// from one writer goroutine to one reader goroutine.
//
// The writer fills the back slot and publishes it; the reader adopts the
// newest published slot at a moment of its choosing. Neither side blocks,
// and the reader never sees a partially written value.
package tribuf

import "sync/atomic"

const freshBit = 1 << 2

// Buffer holds three slots of T. The zero value is not usable; call Init.
//
// Back and Publish belong to the writer, Update and Front to the reader.
// Each side must be used from one goroutine at a time.
type Buffer[T any] struct {
	slots [3]T

	// middle slot index, or'ed with freshBit when it holds an unread value
	mid atomic.Uint32

	back  uint32 // writer-owned
	front uint32 // reader-owned
}

// Init stores v in every slot and resets the slot assignment.
func (b *Buffer[T]) Init(v T) {
	for i := range b.slots {
		b.slots[i] = v
	}

	b.front = 0
	b.mid.Store(1)
	b.back = 2
}

// Back returns the slot the writer may fill before the next Publish.
func (b *Buffer[T]) Back() *T {
	return &b.slots[b.back]
}

// Publish hands the back slot to the reader and takes over the previous
// middle slot as the new back slot.
func (b *Buffer[T]) Publish() {
	prev := b.mid.Swap(b.back | freshBit)
	b.back = prev &^ freshBit
}

// Update adopts the newest published slot as the front slot. It reports
// whether anything new was published since the previous Update.
func (b *Buffer[T]) Update() bool {
	if b.mid.Load()&freshBit == 0 {
		return false
	}

	prev := b.mid.Swap(b.front)
	b.front = prev &^ freshBit

	return true
}

// Front returns the slot the reader currently owns.
func (b *Buffer[T]) Front() *T {
	return &b.slots[b.front]
}
