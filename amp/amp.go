// Package amp chains copies of an amplifier controller program, each
// configured with a phase setting, so that the output signal of one
// amplifier is the input signal of the next.
package amp

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/nf/intcode/intcode"
)

var (
	ErrNoPhases = errors.New("no phase settings")
	ErrNoOutput = errors.New("amplifier produced no output")
	ErrStarved  = errors.New("amplifier input closed")
)

// linkBuffer is the number of signals that may be in flight between two
// adjacent amplifiers of a feedback loop.
const linkBuffer = 16

// Series runs one amplifier per phase setting in order. Each amplifier
// receives its phase and then the previous amplifier's first output; the
// first receives 0. It returns the last amplifier's output.
func Series(p intcode.Program, phases []int64) (int64, error) {
	if len(phases) == 0 {
		return 0, ErrNoPhases
	}
	var signal int64
	for i, ph := range phases {
		out, err := intcode.NewMachine(p).Execute([]int64{ph, signal})
		if err != nil {
			return 0, fmt.Errorf("amplifier %d: %w", i, err)
		}
		if len(out) == 0 {
			return 0, fmt.Errorf("amplifier %d: %w", i, ErrNoOutput)
		}
		signal = out[0]
	}
	return signal, nil
}

// Feedback runs one amplifier per phase setting, each on its own
// goroutine, with the last amplifier's output fed back into the first.
// The first amplifier is sent 0 after its phase. Feedback waits until every
// amplifier has halted and returns the last signal the final amplifier
// produced.
func Feedback(ctx context.Context, p intcode.Program, phases []int64) (int64, error) {
	n := len(phases)
	if n == 0 {
		return 0, ErrNoPhases
	}
	links := make([]chan int64, n)
	for i := range links {
		links[i] = make(chan int64, linkBuffer)
		links[i] <- phases[i]
	}
	links[0] <- 0

	var (
		last int64
		got  bool
	)
	g, ctx := errgroup.WithContext(ctx)
	for i := range phases {
		i := i
		in, out := links[i], links[(i+1)%n]
		g.Go(func() error {
			defer close(out)
			var starved bool
			err := intcode.RunContext(ctx, intcode.NewMachine(p), func(d *intcode.Driver, ev intcode.Event) (int64, bool) {
				switch ev.Kind {
				case intcode.InputEvent:
					select {
					case v, ok := <-in:
						if !ok {
							starved = true
							d.Abort()
							return 0, false
						}
						return v, true
					case <-ctx.Done():
					}
				case intcode.OutputEvent:
					if i == n-1 {
						last, got = ev.Value, true
					}
					select {
					case out <- ev.Value:
					case <-ctx.Done():
					}
				}
				return 0, false
			})
			if err == nil && starved {
				err = ErrStarved
			}
			if err != nil {
				return fmt.Errorf("amplifier %d: %w", i, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	if !got {
		return 0, ErrNoOutput
	}
	return last, nil
}

// Best evaluates run for every ordering of phases and returns the highest
// signal together with the ordering that produced it.
func Best(phases []int64, run func(order []int64) (int64, error)) (int64, []int64, error) {
	var (
		best  int64
		order []int64
	)
	err := permute(append([]int64(nil), phases...), func(o []int64) error {
		v, err := run(o)
		if err != nil {
			return fmt.Errorf("phases %v: %w", o, err)
		}
		if order == nil || v > best {
			best, order = v, append(order[:0], o...)
		}
		return nil
	})
	if err != nil {
		return 0, nil, err
	}
	if order == nil {
		return 0, nil, ErrNoPhases
	}
	return best, order, nil
}

// permute calls fn with each permutation of a, generated in place by
// Heap's algorithm. fn must not retain its argument.
func permute(a []int64, fn func([]int64) error) error {
	if len(a) == 0 {
		return nil
	}
	c := make([]int, len(a))
	if err := fn(a); err != nil {
		return err
	}
	for i := 0; i < len(a); {
		if c[i] < i {
			if i%2 == 0 {
				a[0], a[i] = a[i], a[0]
			} else {
				a[c[i]], a[i] = a[i], a[c[i]]
			}
			if err := fn(a); err != nil {
				return err
			}
			c[i]++
			i = 0
		} else {
			c[i] = 0
			i++
		}
	}
	return nil
}
