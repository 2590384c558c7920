package funcmem

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Dump renders every resident byte, one per line in ascending address order,
// as indent followed by "0x<addr>: <byte>". Bytes never written or loaded are
// skipped, since their pages are not resident; a Dump never allocates.
func (m *Memory) Dump(indent string) string {
	var sb strings.Builder
	m.WriteDump(&sb, indent)
	return sb.String()
}

// WriteDump writes the same lines as Dump into w, one page at a time,
// returning the first write error.
func (m *Memory) WriteDump(w io.Writer, indent string) error {
	dump := memDumper{
		out:       w,
		indent:    indent,
		addrWidth: m.space.HexWidth(),
	}
	return m.space.Walk(dump.page)
}

type memDumper struct {
	out       io.Writer
	indent    string
	addrWidth int
	buf       bytes.Buffer
}

func (dump *memDumper) page(base uint64, page []byte) error {
	for i, b := range page {
		fmt.Fprintf(&dump.buf, "%v0x%0*x: %02x\n", dump.indent, dump.addrWidth, base+uint64(i), b)
	}
	_, err := dump.buf.WriteTo(dump.out)
	return err
}
