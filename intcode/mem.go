package intcode

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Memory is a sparse Intcode address space. Cells that were never written
// read as zero, and any address may be written, including addresses beyond
// the end of the loaded program.
type Memory map[int64]int64

// Get returns the value stored at addr, or 0 if addr was never written.
func (m Memory) Get(addr int64) int64 { return m[addr] }

// Set stores v at addr.
func (m Memory) Set(addr, v int64) { m[addr] = v }

// Len returns the number of defined cells.
func (m Memory) Len() int { return len(m) }

// Clone returns an independent copy of m.
func (m Memory) Clone() Memory {
	c := make(Memory, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// Program is a parsed Intcode program. Word i is loaded at address i.
type Program []int64

// ParseError is returned by Parse when a token is not a decimal integer.
type ParseError struct {
	Index int    // token index, which is also its load address
	Token string // offending token, trimmed
	Err   error
}

func (e *ParseError) Error() string {
	return "parse program: token " + strconv.Itoa(e.Index) + " " + strconv.Quote(e.Token) + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse parses a comma separated list of decimal integers. Whitespace
// around each token is ignored. Parsing is all or nothing.
func Parse(text string) (Program, error) {
	tokens := strings.Split(strings.TrimSpace(text), ",")
	p := make(Program, len(tokens))
	for i, tok := range tokens {
		tok = strings.TrimSpace(tok)
		v, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			if ne, ok := err.(*strconv.NumError); ok {
				err = ne.Err
			}
			return nil, &ParseError{Index: i, Token: tok, Err: err}
		}
		p[i] = v
	}
	return p, nil
}

// Load reads and parses the program stored in fileName.
func Load(fileName string) (Program, error) {
	b, err := os.ReadFile(fileName)
	if err != nil {
		return nil, errors.Wrap(err, "load")
	}
	p, err := Parse(string(b))
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", fileName)
	}
	return p, nil
}

// String formats p in the same form accepted by Parse.
func (p Program) String() string {
	var b strings.Builder
	for i, v := range p {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(v, 10))
	}
	return b.String()
}

// ASCII returns the character codes of s, for programs that read text.
func ASCII(s string) []int64 {
	in := make([]int64, 0, len(s))
	for i := 0; i < len(s); i++ {
		in = append(in, int64(s[i]))
	}
	return in
}
