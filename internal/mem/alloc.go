package mem

import "modernc.org/memory"

// Allocator provides zeroed page storage. Every page obtained from Calloc is
// returned through Free before Close.
type Allocator interface {
	Calloc(size int) ([]byte, error)
	Free(b []byte) error
	Close() error
}

// NewAllocator returns the default Allocator, which maps page storage outside
// of the Go heap.
func NewAllocator() Allocator { return &memory.Allocator{} }
