package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/funcmem"
	"github.com/jcorbin/funcmem/internal/elfsect/elftest"
	"github.com/jcorbin/funcmem/internal/logio"
	"github.com/jcorbin/funcmem/internal/panicerr"
)

func testInspector(t *testing.T) inspector {
	machine := defaultMachine
	machine.Geometry = funcmem.Geometry{AddrBits: 16, PageBits: 4, OffsetBits: 4}
	return inspector{
		machine: machine,
		indent:  "  ",
		dump:    true,
		log:     logio.Logger(t.Logf),
	}
}

func Test_inspect(t *testing.T) {
	path := elftest.WriteFile(t, 0x100,
		elftest.Section{Name: ".text", Addr: 0x100, Data: []byte{0x13, 0x05}},
		elftest.Section{Name: ".data", Addr: 0x1fe, Data: []byte{0xaa, 0xbb, 0xcc}},
	)

	insp := testInspector(t)
	insp.peeks = peeks{{0x100, 2}, {0x1ff, 2}}

	var sb strings.Builder
	require.NoError(t, insp.inspect(&sb, path))

	lines := strings.Split(sb.String(), "\n")
	require.True(t, len(lines) > 5, "expected a dump, got %q", sb.String())
	assert.Equal(t, []string{
		"# " + path,
		"start pc: 0x100",
		"resident: 2 sets, 3 pages, 48 bytes",
		"peek 0x100:2 = 0x513",
		"peek 0x1ff:2 = 0xccbb",
		"  0x0100: 13",
	}, lines[:6])
	assert.Contains(t, sb.String(), "  0x01ff: bb\n  0x0200: cc\n")
	assert.Equal(t, 3*16+5+1, len(lines), "expected one line per resident byte")
}

func Test_inspect_fault(t *testing.T) {
	path := elftest.WriteFile(t, 0,
		elftest.Section{Name: ".data", Addr: 0x10, Data: []byte{1}},
	)

	insp := testInspector(t)
	insp.dump = false
	insp.peeks = peeks{{0x10, 1}, {0x20, 1}}

	var sb strings.Builder
	err := insp.inspect(&sb, path)
	require.Error(t, err, "expected a fault")
	assert.True(t, funcmem.IsFault(err, funcmem.AddressingFault), "expected an addressing fault, got %v", err)
	assert.True(t, panicerr.IsPanic(err), "expected a recovered panic")
	assert.Equal(t, "# "+path+"\nstart pc: none\nresident: 1 sets, 1 pages, 16 bytes\npeek 0x10:1 = 0x1\n", sb.String())
}

func Test_loadMachineConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "machine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr_bits: 32\npage_bits: 8\noffset_bits: 12\ncode_section: .init\n"), 0o644))

	machine := defaultMachine
	require.NoError(t, loadMachineConfig(path, &machine))
	assert.Equal(t, machineConfig{
		Geometry:    funcmem.Geometry{AddrBits: 32, PageBits: 8, OffsetBits: 12},
		CodeSection: ".init",
	}, machine)

	partial := filepath.Join(dir, "partial.yaml")
	require.NoError(t, os.WriteFile(partial, []byte("page_bits: 4\n"), 0o644))
	machine = defaultMachine
	require.NoError(t, loadMachineConfig(partial, &machine))
	assert.Equal(t, uint(64), machine.AddrBits, "expected defaults kept")
	assert.Equal(t, uint(4), machine.PageBits)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("addr_width: 32\n"), 0o644))
	assert.Error(t, loadMachineConfig(bad, &machine), "expected unknown fields rejected")
}

func Test_peeks(t *testing.T) {
	var ps peeks
	require.NoError(t, ps.Set("0x1000:4"))
	require.NoError(t, ps.Set("4096"))
	assert.Equal(t, peeks{{0x1000, 4}, {0x1000, 1}}, ps)
	assert.Equal(t, "0x1000:4,0x1000:1", ps.String())
	assert.Error(t, ps.Set("nope:4"))
	assert.Error(t, ps.Set("0x10:x"))
}

func Test_inspect_layout(t *testing.T) {
	path := elftest.WriteFile(t, 0x100,
		elftest.Section{Name: ".text", Addr: 0x100, Data: []byte{0x13, 0x05}},
	)

	insp := testInspector(t)
	insp.dump = false
	insp.layoutDir = t.TempDir()

	var sb strings.Builder
	require.NoError(t, insp.inspect(&sb, path))
	graph, err := os.ReadFile(filepath.Join(insp.layoutDir, "a.out.dot"))
	require.NoError(t, err, "expected a layout file")
	assert.Contains(t, string(graph), "digraph")

	insp.layoutDir = filepath.Join(insp.layoutDir, "missing")
	assert.Error(t, insp.inspect(&sb, path), "expected an unwritable layout dir to fail")
}
