// Package elftest builds small ELF executables for tests.
package elftest

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// Section describes one section of a built executable. BSS, when non-zero,
// makes an SHT_NOBITS section of that size and Data is ignored. NoAlloc makes
// a section that does not occupy memory at run time.
type Section struct {
	Name    string
	Addr    uint64
	Data    []byte
	BSS     uint64
	NoAlloc bool
}

// Build returns a little-endian ELF64 executable image holding secs, in
// order, followed by a section name table.
func Build(entry uint64, secs ...Section) []byte {
	var (
		strtab  = []byte{0}
		content bytes.Buffer
		headers = []elf.Section64{{}}
	)
	const contentOff = 64

	for _, sec := range secs {
		sh := elf.Section64{
			Name:      uint32(len(strtab)),
			Type:      uint32(elf.SHT_PROGBITS),
			Flags:     uint64(elf.SHF_ALLOC),
			Addr:      sec.Addr,
			Off:       contentOff + uint64(content.Len()),
			Size:      uint64(len(sec.Data)),
			Addralign: 1,
		}
		strtab = append(append(strtab, sec.Name...), 0)
		if sec.Name == ".text" {
			sh.Flags |= uint64(elf.SHF_EXECINSTR)
		}
		if sec.NoAlloc {
			sh.Flags = 0
			sh.Addr = 0
		}
		if sec.BSS != 0 {
			sh.Type = uint32(elf.SHT_NOBITS)
			sh.Flags |= uint64(elf.SHF_WRITE)
			sh.Size = sec.BSS
		} else {
			content.Write(sec.Data)
		}
		headers = append(headers, sh)
	}

	shstrndx := len(headers)
	headers = append(headers, elf.Section64{
		Name:      uint32(len(strtab)),
		Type:      uint32(elf.SHT_STRTAB),
		Off:       contentOff + uint64(content.Len()),
		Addralign: 1,
	})
	strtab = append(append(strtab, ".shstrtab"...), 0)
	headers[shstrndx].Size = uint64(len(strtab))
	content.Write(strtab)
	for content.Len()%8 != 0 {
		content.WriteByte(0)
	}

	hdr := elf.Header64{
		Type:      uint16(elf.ET_EXEC),
		Machine:   uint16(elf.EM_RISCV),
		Version:   uint32(elf.EV_CURRENT),
		Entry:     entry,
		Shoff:     contentOff + uint64(content.Len()),
		Ehsize:    contentOff,
		Phentsize: 56,
		Shentsize: 64,
		Shnum:     uint16(len(headers)),
		Shstrndx:  uint16(shstrndx),
	}
	copy(hdr.Ident[:], elf.ELFMAG)
	hdr.Ident[elf.EI_CLASS] = byte(elf.ELFCLASS64)
	hdr.Ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	hdr.Ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)

	var out bytes.Buffer
	binary.Write(&out, binary.LittleEndian, &hdr)
	out.Write(content.Bytes())
	binary.Write(&out, binary.LittleEndian, headers)
	return out.Bytes()
}

// WriteFile builds an executable into a temporary file, returning its path.
func WriteFile(t testing.TB, entry uint64, secs ...Section) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "a.out")
	if err := os.WriteFile(path, Build(entry, secs...), 0o755); err != nil {
		t.Fatalf("unable to write test executable: %v", err)
	}
	return path
}
