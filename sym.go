package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// symbols is a list of labels sorted by address.
type symbols []symbol

type symbol struct {
	addr  int64
	label string
}

func (s symbol) String() string {
	if s.label == "" {
		return strconv.FormatInt(s.addr, 10)
	}
	return fmt.Sprintf("%s (%d)", s.label, s.addr)
}

func (s symbols) forAddr(addr int64) (ss []symbol) {
	i := sort.Search(len(s), func(i int) bool { return s[i].addr >= addr })
	for ; i < len(s) && s[i].addr == addr; i++ {
		ss = append(ss, s[i])
	}
	return ss
}

// resolve returns the symbol for a label or a decimal address.
func (s symbols) resolve(arg string) (symbol, bool) {
	for _, sym := range s {
		if sym.label == arg {
			return sym, true
		}
	}
	addr, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return symbol{}, false
	}
	if ss := s.forAddr(addr); len(ss) > 0 {
		return ss[0], true
	}
	return symbol{addr: addr}, true
}

func (s symbols) withLabelPrefix(prefix string) (ss []symbol) {
	for _, sym := range s {
		if strings.HasPrefix(sym.label, prefix) {
			ss = append(ss, sym)
		}
	}
	return ss
}

// loadSymbols reads a label file. A missing file yields no symbols.
func loadSymbols(symFile string) (symbols, error) {
	if symFile == "" {
		return nil, nil
	}
	f, err := os.Open(symFile)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseSymbols(f)
}

// parseSymbols reads lines of the form "addr label". Blank lines and
// lines starting with # are ignored.
func parseSymbols(r io.Reader) (symbols, error) {
	var (
		ss   symbols
		sc   = bufio.NewScanner(r)
		line int
	)
	for sc.Scan() {
		line++
		t := strings.TrimSpace(sc.Text())
		if t == "" || t[0] == '#' {
			continue
		}
		a, label, ok := strings.Cut(t, " ")
		label = strings.TrimSpace(label)
		if !ok || label == "" {
			return nil, fmt.Errorf("line %d: want address and label, got %q", line, t)
		}
		addr, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid address %q", line, a)
		}
		ss = append(ss, symbol{addr: addr, label: label})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(ss, func(i, j int) bool {
		return ss[i].addr < ss[j].addr
	})
	return ss, nil
}
