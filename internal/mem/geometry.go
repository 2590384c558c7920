package mem

import "fmt"

// MaxLevelBits limits PageBits and OffsetBits, so that any set slot array or
// page stays allocatable.
const MaxLevelBits = 24

// Geometry describes how a simulated address splits into set, page, and
// offset indices. The set index takes whatever high bits remain after the
// page and offset bits.
type Geometry struct {
	AddrBits   uint `yaml:"addr_bits"`
	PageBits   uint `yaml:"page_bits"`
	OffsetBits uint `yaml:"offset_bits"`
}

// Index locates one byte within a Space.
type Index struct {
	Set    uint64
	Page   uint64
	Offset uint64
}

func (ix Index) String() string {
	return fmt.Sprintf("set:%#x page:%#x offset:%#x", ix.Set, ix.Page, ix.Offset)
}

// ConfigError indicates an unusable Geometry.
type ConfigError struct {
	Geometry
	Reason string
}

func (ce *ConfigError) Error() string {
	return fmt.Sprintf("invalid memory geometry addr:%v page:%v offset:%v: %v",
		ce.AddrBits, ce.PageBits, ce.OffsetBits, ce.Reason)
}

// Validate returns a *ConfigError if the geometry cannot back a Space.
func (g Geometry) Validate() error {
	switch {
	case g.AddrBits == 0 || g.AddrBits > 64:
		return &ConfigError{g, "address width must be within [1, 64] bits"}
	case g.PageBits > MaxLevelBits:
		return &ConfigError{g, fmt.Sprintf("page index wider than %v bits", MaxLevelBits)}
	case g.OffsetBits > MaxLevelBits:
		return &ConfigError{g, fmt.Sprintf("page offset wider than %v bits", MaxLevelBits)}
	case g.PageBits+g.OffsetBits > g.AddrBits:
		return &ConfigError{g, "page and offset bits exceed the address width"}
	}
	return nil
}

// SetBits returns the width of the set index.
func (g Geometry) SetBits() uint { return g.AddrBits - g.PageBits - g.OffsetBits }

// PageSize returns the number of bytes in every page.
func (g Geometry) PageSize() int { return 1 << g.OffsetBits }

// PagesPerSet returns the number of page slots in every set.
func (g Geometry) PagesPerSet() int { return 1 << g.PageBits }

// MaxSet returns the highest set index; NumSets is MaxSet+1, which does not
// fit in a uint64 when SetBits is 64.
func (g Geometry) MaxSet() uint64 { return mask(g.SetBits()) }

// MaxPage returns the highest page index within a set.
func (g Geometry) MaxPage() uint64 { return mask(g.PageBits) }

// MaxOffset returns the highest byte offset within a page.
func (g Geometry) MaxOffset() uint64 { return mask(g.OffsetBits) }

// MaxAddr returns the highest simulated address.
func (g Geometry) MaxAddr() uint64 { return mask(g.AddrBits) }

// Decompose splits addr into its set, page, and offset indices. Bits above
// AddrBits are ignored; bounding addr is left to the caller.
func (g Geometry) Decompose(addr uint64) Index {
	return Index{
		Set:    addr >> (g.PageBits + g.OffsetBits) & g.MaxSet(),
		Page:   addr >> g.OffsetBits & g.MaxPage(),
		Offset: addr & g.MaxOffset(),
	}
}

// Compose is the inverse of Decompose.
func (g Geometry) Compose(ix Index) uint64 {
	return ix.Set<<(g.PageBits+g.OffsetBits) | ix.Page<<g.OffsetBits | ix.Offset
}

// HexWidth returns the number of hex digits needed to print any address.
func (g Geometry) HexWidth() int { return int(g.AddrBits+3) / 4 }

func mask(bits uint) uint64 {
	if bits >= 64 {
		return ^uint64(0)
	}
	return 1<<bits - 1
}
