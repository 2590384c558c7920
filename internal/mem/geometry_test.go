package mem_test

import (
	"testing"

	"github.com/jcorbin/funcmem/internal/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Geometry_Validate(t *testing.T) {
	for _, tc := range []struct {
		name string
		mem.Geometry
		err string
	}{
		{"small", mem.Geometry{AddrBits: 16, PageBits: 4, OffsetBits: 4}, ""},
		{"full 64", mem.Geometry{AddrBits: 64, PageBits: 10, OffsetBits: 12}, ""},
		{"no sets", mem.Geometry{AddrBits: 8, PageBits: 4, OffsetBits: 4}, ""},
		{"byte pages", mem.Geometry{AddrBits: 8, PageBits: 0, OffsetBits: 0}, ""},
		{"zero width", mem.Geometry{}, "invalid memory geometry addr:0 page:0 offset:0: address width must be within [1, 64] bits"},
		{"too wide", mem.Geometry{AddrBits: 65}, "invalid memory geometry addr:65 page:0 offset:0: address width must be within [1, 64] bits"},
		{"levels too wide", mem.Geometry{AddrBits: 16, PageBits: 12, OffsetBits: 8}, "invalid memory geometry addr:16 page:12 offset:8: page and offset bits exceed the address width"},
		{"huge page", mem.Geometry{AddrBits: 64, PageBits: 4, OffsetBits: 32}, "invalid memory geometry addr:64 page:4 offset:32: page offset wider than 24 bits"},
		{"huge set", mem.Geometry{AddrBits: 64, PageBits: 30, OffsetBits: 4}, "invalid memory geometry addr:64 page:30 offset:4: page index wider than 24 bits"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.Geometry.Validate()
			if tc.err == "" {
				require.NoError(t, err)
				return
			}
			require.EqualError(t, err, tc.err)
			ce, ok := err.(*mem.ConfigError)
			require.True(t, ok, "expected a *ConfigError, got %T", err)
			assert.Equal(t, tc.Geometry, ce.Geometry)
		})
	}
}

func Test_Geometry_Decompose(t *testing.T) {
	g16 := mem.Geometry{AddrBits: 16, PageBits: 4, OffsetBits: 4}
	g64 := mem.Geometry{AddrBits: 64, PageBits: 10, OffsetBits: 12}
	g64flat := mem.Geometry{AddrBits: 64, PageBits: 0, OffsetBits: 0}

	for _, tc := range []struct {
		name string
		g    mem.Geometry
		addr uint64
		ix   mem.Index
	}{
		{"zero", g16, 0x0000, mem.Index{}},
		{"last of first page", g16, 0x000f, mem.Index{Set: 0, Page: 0, Offset: 15}},
		{"page 15 offset 14", g16, 0x00fe, mem.Index{Set: 0, Page: 15, Offset: 14}},
		{"next set", g16, 0x0100, mem.Index{Set: 1, Page: 0, Offset: 0}},
		{"top", g16, 0xffff, mem.Index{Set: 0xff, Page: 15, Offset: 15}},
		{"bits above width ignored", g16, 0x1_00fe, mem.Index{Set: 0, Page: 15, Offset: 14}},
		{"64 bit top", g64, ^uint64(0), mem.Index{Set: 1<<42 - 1, Page: 1<<10 - 1, Offset: 1<<12 - 1}},
		{"64 bit mid", g64, 0x0000_7fff_1234_5678, mem.Index{Set: 0x1fffc48, Page: 0x345, Offset: 0x678}},
		{"64 bit sets only", g64flat, 0xdead_beef, mem.Index{Set: 0xdeadbeef}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.ix, tc.g.Decompose(tc.addr), "decompose %#x", tc.addr)
			assert.Equal(t, tc.addr&tc.g.MaxAddr(), tc.g.Compose(tc.ix), "compose %v", tc.ix)
		})
	}
}

func Test_Geometry_derived(t *testing.T) {
	g := mem.Geometry{AddrBits: 16, PageBits: 4, OffsetBits: 4}
	assert.Equal(t, uint(8), g.SetBits())
	assert.Equal(t, 16, g.PageSize())
	assert.Equal(t, 16, g.PagesPerSet())
	assert.Equal(t, uint64(0xff), g.MaxSet())
	assert.Equal(t, uint64(0xffff), g.MaxAddr())
	assert.Equal(t, 4, g.HexWidth())

	g = mem.Geometry{AddrBits: 64, PageBits: 0, OffsetBits: 0}
	assert.Equal(t, ^uint64(0), g.MaxSet())
	assert.Equal(t, uint64(0), g.MaxPage())
	assert.Equal(t, 1, g.PageSize())
	assert.Equal(t, 16, g.HexWidth())
}
