package mem

import (
	"errors"
	"fmt"
	"sort"
)

// Space implements a sparse, three level memory: sets hold page slots, pages
// hold bytes. Sets and pages are only allocated once something is stored in
// them, and are never released individually; Close releases all of them.
type Space struct {
	Geometry

	alloc Allocator
	sets  map[uint64]*set
	pages int
}

type set struct {
	pages [][]byte
}

// Stats counts allocated storage.
type Stats struct {
	Sets  int
	Pages int
	Bytes int
}

// AllocError indicates that page storage could not be allocated.
type AllocError struct {
	Index
	Size int
	Err  error
}

func (ae *AllocError) Error() string {
	return fmt.Sprintf("unable to allocate %v byte page @%v: %v", ae.Size, ae.Index, ae.Err)
}

func (ae *AllocError) Unwrap() error { return ae.Err }

// ErrClosed is returned when allocating in a closed Space.
var ErrClosed = errors.New("memory space closed")

// NewSpace creates an empty Space; a nil alloc uses NewAllocator.
func NewSpace(g Geometry, alloc Allocator) (*Space, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if alloc == nil {
		alloc = NewAllocator()
	}
	return &Space{
		Geometry: g,
		alloc:    alloc,
		sets:     make(map[uint64]*set),
	}, nil
}

// Resident returns true only if both the set and the page are allocated.
func (sp *Space) Resident(setID, pageID uint64) bool {
	return sp.Page(setID, pageID) != nil
}

// SetResident returns true if the set is allocated, regardless of its pages.
func (sp *Space) SetResident(setID uint64) bool {
	return sp.sets[setID] != nil
}

// Page returns the page storage at the given indices, or nil if it has not
// been allocated. It never allocates.
func (sp *Space) Page(setID, pageID uint64) []byte {
	if s := sp.sets[setID]; s != nil && pageID < uint64(len(s.pages)) {
		return s.pages[pageID]
	}
	return nil
}

// EnsureAllocated returns the page at the given indices, allocating its set
// and the page itself as needed. New pages are zero filled.
func (sp *Space) EnsureAllocated(setID, pageID uint64) ([]byte, error) {
	if sp.sets == nil {
		return nil, ErrClosed
	}
	s := sp.sets[setID]
	if s != nil {
		if page := s.pages[pageID]; page != nil {
			return page, nil
		}
	}
	size := sp.PageSize()
	page, err := sp.alloc.Calloc(size)
	if err == nil && len(page) != size {
		err = fmt.Errorf("allocator returned %v bytes", len(page))
	}
	if err != nil {
		return nil, &AllocError{Index{setID, pageID, 0}, size, err}
	}
	// a set only becomes resident along with its first page
	if s == nil {
		s = &set{pages: make([][]byte, sp.PagesPerSet())}
		sp.sets[setID] = s
	}
	s.pages[pageID] = page
	sp.pages++
	return page, nil
}

// ByteAt returns a reference to the byte at ix, or nil if its page is not
// resident.
func (sp *Space) ByteAt(ix Index) *byte {
	if page := sp.Page(ix.Set, ix.Page); page != nil {
		return &page[ix.Offset]
	}
	return nil
}

// Walk calls f with every resident page and its base address, in ascending
// address order. Walk stops at the first error returned by f.
func (sp *Space) Walk(f func(base uint64, page []byte) error) error {
	setIDs := make([]uint64, 0, len(sp.sets))
	for setID := range sp.sets {
		setIDs = append(setIDs, setID)
	}
	sort.Slice(setIDs, func(i, j int) bool { return setIDs[i] < setIDs[j] })

	for _, setID := range setIDs {
		for pageID, page := range sp.sets[setID].pages {
			if page == nil {
				continue
			}
			base := sp.Compose(Index{Set: setID, Page: uint64(pageID)})
			if err := f(base, page); err != nil {
				return err
			}
		}
	}
	return nil
}

// Layout lists resident sets and pages, without their content.
type Layout struct {
	Geometry
	Sets []SetLayout
}

// SetLayout lists the resident pages of one set.
type SetLayout struct {
	Set   uint64
	Pages []uint64
}

// Layout returns the resident sets and pages in ascending order.
func (sp *Space) Layout() (lay Layout) {
	lay.Geometry = sp.Geometry
	sp.Walk(func(base uint64, _ []byte) error {
		ix := sp.Decompose(base)
		if n := len(lay.Sets); n == 0 || lay.Sets[n-1].Set != ix.Set {
			lay.Sets = append(lay.Sets, SetLayout{Set: ix.Set})
		}
		sl := &lay.Sets[len(lay.Sets)-1]
		sl.Pages = append(sl.Pages, ix.Page)
		return nil
	})
	return lay
}

// Stats returns counts of the storage currently allocated.
func (sp *Space) Stats() Stats {
	return Stats{
		Sets:  len(sp.sets),
		Pages: sp.pages,
		Bytes: sp.pages * sp.PageSize(),
	}
}

// Close releases every page, then every set, then the set index itself, and
// finally closes the allocator. The Space must not be used afterwards.
func (sp *Space) Close() (err error) {
	if sp.sets == nil {
		return nil
	}
	for setID, s := range sp.sets {
		for pageID, page := range s.pages {
			if page == nil {
				continue
			}
			if ferr := sp.alloc.Free(page); err == nil {
				err = ferr
			}
			s.pages[pageID] = nil
			sp.pages--
		}
		s.pages = nil
		delete(sp.sets, setID)
	}
	sp.sets = nil
	if cerr := sp.alloc.Close(); err == nil {
		err = cerr
	}
	return err
}
