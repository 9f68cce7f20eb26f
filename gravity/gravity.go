// Package gravity runs the gravity assist program, whose inputs are the
// noun and verb patched into addresses 1 and 2 and whose result is left
// at address 0.
package gravity

import (
	"errors"
	"fmt"

	"github.com/nf/intcode/intcode"
)

// ErrNotFound is returned by Search if no noun and verb produce the target.
var ErrNotFound = errors.New("no noun and verb produce the target")

// Output runs p with the given noun and verb and returns the value left at
// address 0. The program is not modified.
func Output(p intcode.Program, noun, verb int64) (int64, error) {
	m := intcode.NewMachine(p)
	m.Mem.Set(1, noun)
	m.Mem.Set(2, verb)
	if _, err := m.Execute(nil); err != nil {
		return 0, fmt.Errorf("noun %d verb %d: %w", noun, verb, err)
	}
	return m.Mem.Get(0), nil
}

// Search tries every noun and verb in 0..99 and returns the first pair,
// in noun-major order, for which Output returns target.
// Pairs that fault are skipped.
func Search(p intcode.Program, target int64) (noun, verb int64, err error) {
	for noun = 0; noun < 100; noun++ {
		for verb = 0; verb < 100; verb++ {
			v, err := Output(p, noun, verb)
			if err == nil && v == target {
				return noun, verb, nil
			}
		}
	}
	return 0, 0, ErrNotFound
}
