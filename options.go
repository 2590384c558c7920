package funcmem

import (
	"github.com/rs/zerolog"

	"github.com/jcorbin/funcmem/internal/mem"
)

// DefaultCodeSection names the section whose start address is the entry point.
const DefaultCodeSection = ".text"

// Allocator provides page storage; see WithAllocator.
type Allocator = mem.Allocator

// Option customizes a Memory under construction.
type Option interface{ apply(m *Memory) }

// Options combines any number of options into one.
func Options(opts ...Option) Option {
	var res options
	for _, opt := range opts {
		switch impl := opt.(type) {
		case nil:
		case options:
			res = append(res, impl...)
		default:
			res = append(res, impl)
		}
	}
	if len(res) == 1 {
		return res[0]
	}
	return res
}

var defaults = Options(
	WithLogger(zerolog.Nop()),
	WithCodeSection(DefaultCodeSection),
)

// WithLogger sets the logger used for load progress and fault diagnostics.
func WithLogger(log zerolog.Logger) Option { return loggerOption(log) }

// WithCodeSection sets the section name that marks the entry point.
func WithCodeSection(name string) Option { return codeSectionOption(name) }

// WithAllocator sets where page storage comes from; the Memory closes it on
// Close. The default maps storage outside of the Go heap.
func WithAllocator(alloc Allocator) Option { return allocatorOption{alloc} }

type options []Option
type loggerOption zerolog.Logger
type codeSectionOption string
type allocatorOption struct{ Allocator }

func (opts options) apply(m *Memory) {
	for _, opt := range opts {
		opt.apply(m)
	}
}

func (log loggerOption) apply(m *Memory) {
	m.log = zerolog.Logger(log).With().Str("component", "funcmem").Logger()
}

func (name codeSectionOption) apply(m *Memory) { m.codeSection = string(name) }
func (ao allocatorOption) apply(m *Memory)     { m.alloc = ao.Allocator }
