// Package logio routes zerolog output into printf style sinks, like
// testing.T.Logf, one log line per call.
package logio

import (
	"bytes"
	"sync"

	"github.com/rs/zerolog"
)

// Writer is an io.Writer that passes each completed line to Logf, without
// its trailing newline. It is safe for concurrent use.
type Writer struct {
	Logf func(string, ...interface{})

	mu      sync.Mutex
	partial []byte
}

func (lw *Writer) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	rest := p
	for {
		i := bytes.IndexByte(rest, '\n')
		if i < 0 {
			break
		}
		line := rest[:i]
		if len(lw.partial) > 0 {
			line = append(lw.partial, line...)
			lw.partial = lw.partial[:0]
		}
		lw.Logf("%s", line)
		rest = rest[i+1:]
	}
	lw.partial = append(lw.partial, rest...)
	return len(p), nil
}

// Sync passes any unterminated line to Logf.
func (lw *Writer) Sync() error {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	if len(lw.partial) > 0 {
		lw.Logf("%s", lw.partial)
		lw.partial = lw.partial[:0]
	}
	return nil
}

// Close calls Sync.
func (lw *Writer) Close() error { return lw.Sync() }

// Logger returns a debug level zerolog.Logger that renders each event as one
// uncolored console line passed to logf.
func Logger(logf func(string, ...interface{})) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{
		Out:          &Writer{Logf: logf},
		NoColor:      true,
		PartsExclude: []string{zerolog.TimestampFieldName},
	}).Level(zerolog.DebugLevel)
}
