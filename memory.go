package funcmem

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jcorbin/funcmem/internal/elfsect"
	"github.com/jcorbin/funcmem/internal/mem"
)

// Geometry describes how addresses split into set, page, and offset bits.
type Geometry = mem.Geometry

// Section is one loadable range of an executable image.
type Section = elfsect.Section

// Stats counts storage held by a Memory.
type Stats = mem.Stats

// Memory is the sparse, byte addressable memory of a simulated machine.
// It is not safe for concurrent use.
type Memory struct {
	space *mem.Space
	log   zerolog.Logger
	alloc Allocator

	codeSection string
	entry       uint64
	hasEntry    bool
}

// Open reads the loadable sections of the ELF executable at path, and
// returns a new Memory holding them.
func Open(path string, geom Geometry, opts ...Option) (*Memory, error) {
	if err := geom.Validate(); err != nil {
		return nil, err
	}
	secs, err := elfsect.Read(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read sections from %v: %w", path, err)
	}
	return New(geom, secs, opts...)
}

// New returns a Memory with the given geometry, holding the given sections.
// An invalid geometry results in a *ConfigError before any storage is
// allocated. Sections are loaded in order, so later sections overwrite any
// bytes they share with earlier ones.
func New(geom Geometry, secs []Section, opts ...Option) (*Memory, error) {
	var m Memory
	defaults.apply(&m)
	Options(opts...).apply(&m)

	space, err := mem.NewSpace(geom, m.alloc)
	if err != nil {
		return nil, err
	}
	m.space = space

	if err := m.load(secs); err != nil {
		if cerr := m.space.Close(); cerr != nil {
			m.log.Warn().Err(cerr).Msg("unable to release partially loaded memory")
		}
		return nil, err
	}
	return &m, nil
}

// StartPC returns the start address of the code section, and whether there
// was one.
func (m *Memory) StartPC() (uint64, bool) {
	return m.entry, m.hasEntry
}

// Geometry returns the memory geometry.
func (m *Memory) Geometry() Geometry { return m.space.Geometry }

// Stats returns counts of the sets and pages currently allocated.
func (m *Memory) Stats() Stats { return m.space.Stats() }

// Close releases all storage; the Memory must not be used afterwards.
func (m *Memory) Close() error { return m.space.Close() }
