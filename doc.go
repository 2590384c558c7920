/*
Package funcmem models the memory of a simulated machine for a functional
instruction set simulator.

The address space may be as wide as 64 bits, but only the parts of it that
are written hold storage. An address splits into three indices: high bits
select a set, middle bits select a page within the set, and low bits select
a byte within the page. Sets and pages are allocated the first time anything
is stored in them, by loading an executable or by Write, and are all released
together by Close.

	m, err := funcmem.Open("a.out", funcmem.Geometry{AddrBits: 64, PageBits: 10, OffsetBits: 12})
	if err != nil {
		return err
	}
	defer m.Close()
	pc, _ := m.StartPC()
	insn := m.Read(pc, 4)

Reads and writes move byte by byte across page and set boundaries. A read
of memory that was never written is the simulated equivalent of a
segmentation fault: like every other Fault, it is not returned but raised as
a panic, which a simulator may isolate with a recover at its top level.
*/
package funcmem
