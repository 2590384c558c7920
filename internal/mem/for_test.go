package mem

// SpaceDump provides data for testing.
type SpaceDump struct {
	Sets  []uint64
	Pages map[uint64][]uint64
}

// Dump resident set and page indices for testing.
func (sp *Space) Dump() (d SpaceDump) {
	d.Pages = make(map[uint64][]uint64)
	for _, sl := range sp.Layout().Sets {
		d.Sets = append(d.Sets, sl.Set)
		d.Pages[sl.Set] = sl.Pages
	}
	return d
}
