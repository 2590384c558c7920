// Command funcmem loads executables into simulated memory, reporting their
// entry points, any requested values, and the resident bytes.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jcorbin/funcmem"
	"github.com/jcorbin/funcmem/internal/flushio"
	"github.com/jcorbin/funcmem/internal/panicerr"
)

func main() {
	var (
		configPath string
		machine    = defaultMachine
		indent     string
		noDump     bool
		layoutDir  string
		verbose    bool
		ps         peeks
	)
	flag.StringVar(&configPath, "config", "", "read the machine description from a YAML file")
	addrBits := flag.Uint("addr-bits", machine.AddrBits, "simulated address width")
	pageBits := flag.Uint("page-bits", machine.PageBits, "page index width")
	offsetBits := flag.Uint("offset-bits", machine.OffsetBits, "page offset width")
	codeSection := flag.String("code-section", machine.CodeSection, "section holding the entry point")
	flag.StringVar(&indent, "indent", "  ", "prefix for dump lines")
	flag.BoolVar(&noDump, "no-dump", false, "skip dumping resident bytes")
	flag.StringVar(&layoutDir, "layout-dir", "", "write a graphviz graph of resident sets and pages per executable into `dir`")
	flag.BoolVar(&verbose, "v", false, "enable debug logging")
	flag.Var(&ps, "peek", "read `addr:size` after loading; may be repeated")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %v [options] executable...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if verbose {
		log = log.Level(zerolog.DebugLevel)
	} else {
		log = log.Level(zerolog.InfoLevel)
	}

	if configPath != "" {
		if err := loadMachineConfig(configPath, &machine); err != nil {
			log.Fatal().Err(err).Msg("unable to load machine config")
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr-bits":
			machine.AddrBits = *addrBits
		case "page-bits":
			machine.PageBits = *pageBits
		case "offset-bits":
			machine.OffsetBits = *offsetBits
		case "code-section":
			machine.CodeSection = *codeSection
		}
	})
	if err := machine.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid machine")
	}

	paths := flag.Args()
	if len(paths) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	insp := inspector{
		machine:   machine,
		peeks:     ps,
		indent:    indent,
		dump:      !noDump,
		layoutDir: layoutDir,
		log:       log,
	}
	reports := make([]bytes.Buffer, len(paths))
	var eg errgroup.Group
	for i, path := range paths {
		i, path := i, path
		eg.Go(func() error {
			err := insp.inspect(&reports[i], path)
			if err != nil {
				log.Error().Str("image", path).Err(err).Msg("inspect failed")
			}
			return err
		})
	}
	err := eg.Wait()

	out := flushio.NewWriteFlusher(os.Stdout)
	for i := range reports {
		if _, werr := reports[i].WriteTo(out); werr != nil && err == nil {
			err = werr
		}
	}
	if ferr := out.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	if err != nil {
		os.Exit(1)
	}
}

type inspector struct {
	machine   machineConfig
	peeks     peeks
	indent    string
	dump      bool
	layoutDir string
	log       zerolog.Logger
}

// inspect loads one executable, writing a report into w. A peek that faults
// ends the report with an error.
func (insp inspector) inspect(w io.Writer, path string) error {
	m, err := funcmem.Open(path, insp.machine.Geometry,
		funcmem.WithLogger(insp.log.With().Str("image", path).Logger()),
		funcmem.WithCodeSection(insp.machine.CodeSection))
	if err != nil {
		return err
	}
	defer m.Close()

	fmt.Fprintf(w, "# %v\n", path)
	if pc, ok := m.StartPC(); ok {
		fmt.Fprintf(w, "start pc: %#x\n", pc)
	} else {
		fmt.Fprintf(w, "start pc: none\n")
	}
	stats := m.Stats()
	fmt.Fprintf(w, "resident: %v sets, %v pages, %v bytes\n", stats.Sets, stats.Pages, stats.Bytes)

	for _, p := range insp.peeks {
		var val uint64
		if err := panicerr.Recover(path, func() error {
			val = m.Read(p.addr, p.size)
			return nil
		}); err != nil {
			return fmt.Errorf("peek %v: %w", p, err)
		}
		fmt.Fprintf(w, "peek %v = %#x\n", p, val)
	}

	if insp.layoutDir != "" {
		if err := insp.writeLayout(m, path); err != nil {
			return err
		}
	}

	if insp.dump {
		return m.WriteDump(w, insp.indent)
	}
	return nil
}

// writeLayout writes the graph of m into layoutDir, named after path.
func (insp inspector) writeLayout(m *funcmem.Memory, path string) error {
	f, err := os.Create(filepath.Join(insp.layoutDir, filepath.Base(path)+".dot"))
	if err != nil {
		return err
	}
	out := flushio.NewWriteFlusher(f)
	m.WriteLayout(out)
	if err := out.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
