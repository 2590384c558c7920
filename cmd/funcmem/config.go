package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jcorbin/funcmem"
)

// machineConfig describes the simulated machine, as read from a -config file.
type machineConfig struct {
	funcmem.Geometry `yaml:",inline"`
	CodeSection      string `yaml:"code_section"`
}

var defaultMachine = machineConfig{
	Geometry:    funcmem.Geometry{AddrBits: 64, PageBits: 10, OffsetBits: 12},
	CodeSection: funcmem.DefaultCodeSection,
}

func loadMachineConfig(path string, into *machineConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(into); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid machine config %v: %w", path, err)
	}
	return nil
}

// peek is an address and size to read after loading, given as "addr:size".
type peek struct {
	addr uint64
	size int
}

func (p peek) String() string { return fmt.Sprintf("%#x:%v", p.addr, p.size) }

type peeks []peek

func (ps *peeks) String() string {
	parts := make([]string, len(*ps))
	for i, p := range *ps {
		parts[i] = p.String()
	}
	return strings.Join(parts, ",")
}

func (ps *peeks) Set(s string) error {
	addrStr, sizeStr := s, "1"
	if i := strings.LastIndexByte(s, ':'); i >= 0 {
		addrStr, sizeStr = s[:i], s[i+1:]
	}
	addr, err := strconv.ParseUint(addrStr, 0, 64)
	if err != nil {
		return fmt.Errorf("invalid peek address %q: %w", addrStr, err)
	}
	size, err := strconv.Atoi(sizeStr)
	if err != nil {
		return fmt.Errorf("invalid peek size %q: %w", sizeStr, err)
	}
	*ps = append(*ps, peek{addr, size})
	return nil
}
