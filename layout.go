package funcmem

import (
	"io"

	"github.com/bradleyjkemp/memviz"

	"github.com/jcorbin/funcmem/internal/mem"
)

// Layout lists the resident sets and pages of a Memory.
type Layout = mem.Layout

// Layout returns the resident sets and pages, in ascending order.
func (m *Memory) Layout() Layout { return m.space.Layout() }

// WriteLayout writes a graphviz digraph of the resident sets and pages to w.
// Like Dump, it never allocates simulated memory.
func (m *Memory) WriteLayout(w io.Writer) {
	lay := m.space.Layout()
	memviz.Map(w, &lay)
}
