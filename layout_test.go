package funcmem_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jcorbin/funcmem"
	"github.com/jcorbin/funcmem/internal/mem"
)

func Test_Memory_Layout(t *testing.T) {
	m, ca := newTestMemory(t, g16, []funcmem.Section{
		{Name: ".text", Addr: 0x00fc, Data: make([]byte, 8)},
		{Name: ".data", Addr: 0x8020, Data: []byte{1}},
	})
	assert.Equal(t, funcmem.Layout{
		Geometry: g16,
		Sets: []mem.SetLayout{
			{Set: 0x00, Pages: []uint64{15}},
			{Set: 0x01, Pages: []uint64{0}},
			{Set: 0x80, Pages: []uint64{2}},
		},
	}, m.Layout())

	calls := ca.calls
	var buf bytes.Buffer
	m.WriteLayout(&buf)
	assert.Contains(t, buf.String(), "digraph", "expected a graphviz graph")
	assert.Equal(t, calls, ca.calls, "expected no allocation")
}
