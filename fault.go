package funcmem

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jcorbin/funcmem/internal/mem"
)

// ConfigError indicates a geometry rejected at construction.
type ConfigError = mem.ConfigError

// FaultKind classifies a Fault.
type FaultKind int

// Fault kinds.
const (
	// AddressingFault is a read of a set or page that was never written or
	// loaded; it models a hardware segmentation fault.
	AddressingFault FaultKind = iota + 1

	// AddressSpaceOverflow is an access that runs past the last set, or
	// starts above the highest address.
	AddressSpaceOverflow

	// AllocationFailure is a failure to obtain page storage.
	AllocationFailure

	// InvalidAccessSize is a read or write of other than 1 to 8 bytes.
	InvalidAccessSize
)

var faultKindNames = [...]string{
	AddressingFault:      "addressing fault",
	AddressSpaceOverflow: "address space overflow",
	AllocationFailure:    "allocation failure",
	InvalidAccessSize:    "invalid access size",
}

func (kind FaultKind) String() string {
	if int(kind) > 0 && int(kind) < len(faultKindNames) {
		return faultKindNames[kind]
	}
	return fmt.Sprintf("FaultKind(%d)", int(kind))
}

// Fault describes a memory access that cannot complete. Read and Write panic
// with a *Fault; they never return one.
type Fault struct {
	Kind FaultKind
	Op   string // "read", "write", or "load"
	Addr uint64 // first address of the access
	Size int    // bytes requested
	At   uint64 // address being reached when the fault was detected
	Err  error  // underlying cause, if any
}

func (f *Fault) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%v: %v %v bytes @%#x", f.Kind, f.Op, f.Size, f.Addr)
	if f.At != f.Addr {
		fmt.Fprintf(&sb, " (at %#x)", f.At)
	}
	if f.Err != nil {
		fmt.Fprintf(&sb, ": %v", f.Err)
	}
	return sb.String()
}

func (f *Fault) Unwrap() error { return f.Err }

// IsFault returns true if err is, or wraps, a *Fault of the given kind.
func IsFault(err error, kind FaultKind) bool {
	var f *Fault
	return errors.As(err, &f) && f.Kind == kind
}

// fatal aborts the current access: the fault is logged, and then raised as a
// panic that this package never recovers.
func (m *Memory) fatal(f *Fault) {
	m.log.Error().
		Str("kind", f.Kind.String()).
		Str("op", f.Op).
		Str("addr", hexAddr(f.Addr)).
		Str("at", hexAddr(f.At)).
		Int("size", f.Size).
		AnErr("cause", f.Err).
		Msg("memory fault")
	panic(f)
}

func hexAddr(addr uint64) string { return fmt.Sprintf("%#x", addr) }
