package intcode

import (
	"context"

	"github.com/pkg/errors"
)

// ErrNoInput is returned by Execute if the program asks for more input than
// was supplied.
var ErrNoInput = errors.New("input exhausted")

// ErrBudget is returned by RunBudget when the machine runs out of steps.
var ErrBudget = errors.New("step budget exceeded")

// Execute runs m until it halts, feeding it inputs in order whenever it
// blocks, and returns the values it output.
//
// If m blocks after all inputs have been consumed Execute stops and returns
// the outputs collected so far together with ErrNoInput.
func (m *Machine) Execute(inputs []int64) ([]int64, error) {
	var (
		out  []int64
		in   int64
		have bool
	)
	for {
		r, err := m.Step(in, have)
		if err != nil {
			return out, err
		}
		in, have = 0, false
		switch r.State {
		case Halted:
			return out, nil
		case Blocked:
			if len(inputs) == 0 {
				return out, errors.Wrapf(ErrNoInput, "blocked at %d", m.IP)
			}
			in, have = inputs[0], true
			inputs = inputs[1:]
		case Running:
			if r.Emitted {
				out = append(out, r.Output)
			}
		}
	}
}

// EventKind distinguishes the events passed to a Handler.
type EventKind byte

const (
	InputEvent  EventKind = iota // the machine needs a value
	OutputEvent                  // the machine produced Event.Value
)

func (k EventKind) String() string {
	if k == InputEvent {
		return "input"
	}
	return "output"
}

// Event is passed to a Handler by Run.
type Event struct {
	Kind  EventKind
	Value int64
}

// Handler responds to machine events. For an InputEvent it returns the next
// input and true, or false if no input is available yet, in which case
// the machine is asked again after the next step. The return values are
// ignored for an OutputEvent.
type Handler func(d *Driver, ev Event) (in int64, ok bool)

// Driver is passed to a Handler to control the run in progress.
type Driver struct {
	m       *Machine
	aborted bool
}

// Abort stops the run before the next step. Run then returns nil.
func (d *Driver) Abort() { d.aborted = true }

// Aborted reports whether Abort has been called.
func (d *Driver) Aborted() bool { return d.aborted }

// Machine returns the machine being driven.
func (d *Driver) Machine() *Machine { return d.m }

// Run drives m until it halts, the handler aborts, or a fault occurs.
// Each blocked step is reported to h as an InputEvent and each output value
// as an OutputEvent.
func Run(m *Machine, h Handler) error {
	return run(context.Background(), m, 0, h)
}

// RunContext is like Run but also stops before the next step once ctx is
// done, returning ctx.Err().
func RunContext(ctx context.Context, m *Machine, h Handler) error {
	return run(ctx, m, 0, h)
}

// RunBudget is like RunContext but executes at most n instructions,
// returning ErrBudget if the machine is still running after that.
func RunBudget(ctx context.Context, m *Machine, n int64, h Handler) error {
	if n <= 0 {
		return run(ctx, m, 0, h)
	}
	return run(ctx, m, m.Steps()+n, h)
}

func run(ctx context.Context, m *Machine, limit int64, h Handler) error {
	var (
		d    = &Driver{m: m}
		done = ctx.Done()
		in   int64
		have bool
	)
	for !d.aborted {
		select {
		case <-done:
			return ctx.Err()
		default:
		}
		if limit > 0 && m.steps >= limit {
			return errors.Wrapf(ErrBudget, "stopped at %d", m.IP)
		}
		r, err := m.Step(in, have)
		if err != nil {
			return err
		}
		in, have = 0, false
		switch r.State {
		case Halted:
			return nil
		case Blocked:
			in, have = h(d, Event{Kind: InputEvent})
		case Running:
			if r.Emitted {
				h(d, Event{Kind: OutputEvent, Value: r.Output})
			}
		}
	}
	return nil
}
