// Package flushio buffers command output until an explicit Flush.
package flushio

import (
	"bufio"
	"io"
)

// WriteFlusher is an io.Writer whose output may be held until Flush.
type WriteFlusher interface {
	io.Writer
	Flush() error
}

// NewWriteFlusher buffers w with a bufio.Writer, unless w already flushes,
// discards, or holds its output in memory.
func NewWriteFlusher(w io.Writer) WriteFlusher {
	switch impl := w.(type) {
	case WriteFlusher:
		return impl
	case interface {
		Len() int
		Reset()
	}:
		// bytes.Buffer, strings.Builder
		return nopFlusher{w}
	}
	if w == io.Discard {
		return nopFlusher{w}
	}
	return bufio.NewWriter(w)
}

type nopFlusher struct{ io.Writer }

func (nopFlusher) Flush() error { return nil }
