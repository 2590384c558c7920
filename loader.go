package funcmem

func (m *Memory) load(secs []Section) error {
	for _, sec := range secs {
		if err := m.checkSection(sec); err != nil {
			return err
		}
		if sec.Name == m.codeSection && !m.hasEntry {
			m.entry, m.hasEntry = sec.Addr, true
			m.log.Debug().Str("section", sec.Name).Str("entry", hexAddr(sec.Addr)).Msg("entry point")
		}
		if err := m.loadSection(sec); err != nil {
			return err
		}
		m.log.Debug().
			Str("section", sec.Name).
			Str("addr", hexAddr(sec.Addr)).
			Int("size", len(sec.Data)).
			Msg("loaded")
	}
	return nil
}

// checkSection returns an AddressSpaceOverflow fault unless sec, even when
// empty, starts at or below MaxAddr and ends there without wrapping.
func (m *Memory) checkSection(sec Section) error {
	maxAddr := m.space.MaxAddr()
	fits := sec.Addr <= maxAddr
	if fits && len(sec.Data) > 0 {
		last := sec.Addr + uint64(len(sec.Data)-1)
		fits = last <= maxAddr && last >= sec.Addr
	}
	if !fits {
		return &Fault{
			Kind: AddressSpaceOverflow,
			Op:   "load",
			Addr: sec.Addr,
			Size: len(sec.Data),
			At:   maxAddr,
			Err:  errSection(sec.Name),
		}
	}
	return nil
}

func (m *Memory) loadSection(sec Section) error {
	addr, data := sec.Addr, sec.Data
	for len(data) > 0 {
		ix := m.space.Decompose(addr)
		page, err := m.space.EnsureAllocated(ix.Set, ix.Page)
		if err != nil {
			return &Fault{
				Kind: AllocationFailure,
				Op:   "load",
				Addr: sec.Addr,
				Size: len(sec.Data),
				At:   addr,
				Err:  err,
			}
		}
		n := copy(page[ix.Offset:], data)
		data = data[n:]
		addr += uint64(n)
	}
	return nil
}

type errSection string

func (name errSection) Error() string { return "section " + string(name) + " does not fit" }
