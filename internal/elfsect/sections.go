// Package elfsect reads the loadable sections of an ELF executable.
package elfsect

import (
	"debug/elf"
	"fmt"
	"io"
)

// Section is a named, contiguous range of target memory content.
type Section struct {
	Name string
	Addr uint64
	Data []byte
}

// End returns the address one past the last byte of the section.
func (sec Section) End() uint64 { return sec.Addr + uint64(len(sec.Data)) }

func (sec Section) String() string {
	return fmt.Sprintf("%v @%#x+%#x", sec.Name, sec.Addr, len(sec.Data))
}

// Read opens the named ELF file and returns its sections.
func Read(path string) ([]Section, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Sections(f)
}

// Sections returns every non-empty section of f that occupies memory at run
// time, in file order. Sections without file content, like .bss, are zero
// filled.
func Sections(f *elf.File) ([]Section, error) {
	var secs []Section
	for _, s := range f.Sections {
		if s.Flags&elf.SHF_ALLOC == 0 || s.Size == 0 {
			continue
		}
		data := make([]byte, s.Size)
		if s.Type != elf.SHT_NOBITS {
			if _, err := io.ReadFull(s.Open(), data); err != nil {
				return nil, fmt.Errorf("read section %v: %w", s.Name, err)
			}
		}
		secs = append(secs, Section{
			Name: s.Name,
			Addr: s.Addr,
			Data: data,
		})
	}
	return secs, nil
}
