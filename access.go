package funcmem

import (
	"fmt"

	"github.com/jcorbin/funcmem/internal/mem"
)

// MaxAccessSize is the widest single Read or Write, in bytes.
const MaxAccessSize = 8

// Read returns the size byte little-endian value stored at addr; the byte at
// addr is the least significant. Read never allocates: reaching a set or page
// that was never written or loaded is a fatal AddressingFault, and running
// past the last set a fatal AddressSpaceOverflow. Faults panic with a *Fault.
func (m *Memory) Read(addr uint64, size int) (value uint64) {
	c := m.begin("read", addr, size, false)
	for state := c.state; c.n < size; {
		switch state {
		case accessByte:
			value |= uint64(c.page[c.Offset]) << (8 * c.n)
			state = c.nextByte()
		case advancePage:
			state = c.nextPage()
		case advanceSet:
			state = c.nextSet()
		case accessFail:
			m.fatal(c.fault)
		}
	}
	return value
}

// Write stores the low size bytes of value at addr, least significant byte
// first. Any set or page not yet resident is allocated along the way; only
// running past the last set, or failing to allocate, is fatal.
func (m *Memory) Write(addr, value uint64, size int) {
	c := m.begin("write", addr, size, true)
	for state := c.state; c.n < size; {
		switch state {
		case accessByte:
			c.page[c.Offset] = byte(value >> (8 * c.n))
			state = c.nextByte()
		case advancePage:
			state = c.nextPage()
		case advanceSet:
			state = c.nextSet()
		case accessFail:
			m.fatal(c.fault)
		}
	}
}

type accessState int

const (
	// accessByte reads or writes the byte under the cursor, then advances
	// the offset.
	accessByte accessState = iota

	// advancePage moves to the start of the next page, handing off to
	// advanceSet when the set has no more pages.
	advancePage

	// advanceSet moves to the first page of the next set.
	advanceSet

	// accessFail is terminal; the cursor holds the fault.
	accessFail
)

// cursor tracks one access as it moves across pages and sets.
type cursor struct {
	mem.Index
	space *mem.Space
	alloc bool

	op    string
	addr  uint64
	size  int
	n     int
	page  []byte
	state accessState
	fault *Fault
}

func (m *Memory) begin(op string, addr uint64, size int, alloc bool) *cursor {
	c := &cursor{
		space: m.space,
		alloc: alloc,
		op:    op,
		addr:  addr,
		size:  size,
	}
	if size < 1 || size > MaxAccessSize {
		m.fatal(c.faultf(InvalidAccessSize, "size must be within [1, %v]", MaxAccessSize))
	}
	if maxAddr := m.space.MaxAddr(); addr > maxAddr {
		m.fatal(c.faultf(AddressSpaceOverflow, "highest address is %#x", maxAddr))
	}
	c.Index = m.space.Decompose(addr)
	c.state = c.resolve()
	return c
}

func (c *cursor) nextByte() accessState {
	c.n++
	if c.Offset++; c.Offset > c.space.MaxOffset() {
		return advancePage
	}
	return accessByte
}

func (c *cursor) nextPage() accessState {
	c.Offset = 0
	if c.Page == c.space.MaxPage() {
		return advanceSet
	}
	c.Page++
	return c.resolve()
}

func (c *cursor) nextSet() accessState {
	c.Page = 0
	if c.Set == c.space.MaxSet() {
		c.fault = c.faultf(AddressSpaceOverflow, "no set after %#x", c.Set)
		return accessFail
	}
	c.Set++
	if !c.alloc && !c.space.SetResident(c.Set) {
		c.fault = c.faultWith(AddressingFault, notResident{c.Index, true})
		return accessFail
	}
	return c.resolve()
}

// resolve points the cursor at the page under its index, allocating it for
// writes.
func (c *cursor) resolve() accessState {
	if c.alloc {
		page, err := c.space.EnsureAllocated(c.Set, c.Page)
		if err != nil {
			c.fault = c.faultWith(AllocationFailure, err)
			return accessFail
		}
		c.page = page
		return accessByte
	}
	if c.page = c.space.Page(c.Set, c.Page); c.page == nil {
		c.fault = c.faultWith(AddressingFault, notResident{c.Index, false})
		return accessFail
	}
	return accessByte
}

func (c *cursor) faultf(kind FaultKind, mess string, args ...interface{}) *Fault {
	return c.faultWith(kind, fmt.Errorf(mess, args...))
}

func (c *cursor) faultWith(kind FaultKind, err error) *Fault {
	return &Fault{
		Kind: kind,
		Op:   c.op,
		Addr: c.addr,
		Size: c.size,
		At:   c.addr + uint64(c.n),
		Err:  err,
	}
}

type notResident struct {
	mem.Index
	set bool
}

func (nr notResident) Error() string {
	if nr.set {
		return fmt.Sprintf("set %#x not resident", nr.Set)
	}
	return fmt.Sprintf("page %#x of set %#x not resident", nr.Page, nr.Set)
}
