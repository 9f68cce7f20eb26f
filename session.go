package main

import (
	"context"

	"github.com/nf/intcode/intcode"
)

type stateKind int

const (
	clearState stateKind = iota
	quietState           // running; watches only
	breakState
	pauseState
	waitState // blocked on input
	haltState
	faultState
)

func (k stateKind) String() string {
	switch k {
	case breakState:
		return "[break]"
	case pauseState:
		return "[pause]"
	case waitState:
		return "[input]"
	case haltState:
		return "[HALT!]"
	case faultState:
		return "[FAULT]"
	}
	return "       "
}

// snapshot is passed to the state func from the session goroutine. The
// machine must not be retained after the func returns.
type snapshot struct {
	m     *intcode.Machine
	kind  stateKind
	err   error
	input []int64
}

type command struct {
	name string
	addr int64
	args []int64
	prog intcode.Program
}

// quietEvery is the number of steps between watch updates while running.
const quietEvery = 10000

// session owns a machine and executes debugger commands against it on a
// single goroutine.
type session struct {
	state  func(snapshot)
	output func(int64)
	cmds   chan command

	prog    intcode.Program
	m       *intcode.Machine
	breaks  map[int64]bool
	input   []int64
	running bool
	resume  bool // continue once input arrives
	steps   int
}

func newSession(p intcode.Program, state func(snapshot), output func(int64)) *session {
	return &session{
		state:  state,
		output: output,
		cmds:   make(chan command),
		prog:   p,
		m:      intcode.NewMachine(p),
		breaks: map[int64]bool{},
	}
}

// Debug sends a command to the session goroutine.
func (s *session) Debug(name string, addr int64, args ...int64) {
	s.cmds <- command{name: name, addr: addr, args: args}
}

// Swap replaces the program and resets the machine.
func (s *session) Swap(p intcode.Program) {
	s.cmds <- command{name: "load", prog: p}
}

// Run executes commands until ctx is done.
func (s *session) Run(ctx context.Context) {
	s.report(pauseState, nil)
	for {
		if s.running {
			select {
			case c := <-s.cmds:
				s.do(c)
			case <-ctx.Done():
				return
			default:
				s.tick()
			}
			continue
		}
		select {
		case c := <-s.cmds:
			s.do(c)
		case <-ctx.Done():
			return
		}
	}
}

func (s *session) do(c command) {
	switch c.name {
	case "s", "step":
		k, err := s.step(false)
		if k == clearState {
			k = pauseState
		}
		s.stop(k, err)
	case "c", "cont", "continue":
		if k, err := s.step(false); k != clearState {
			s.stop(k, err)
			return
		}
		s.running, s.resume = true, false
		s.report(clearState, nil)
	case "p", "pause":
		s.stop(pauseState, nil)
	case "b", "break":
		s.breaks[c.addr] = true
		s.report(quietState, nil)
	case "d", "delete":
		delete(s.breaks, c.addr)
		s.report(quietState, nil)
	case "B", "clear":
		s.breaks = map[int64]bool{}
		s.report(quietState, nil)
	case "i", "in", "input":
		s.input = append(s.input, c.args...)
		if s.resume {
			s.running, s.resume = true, false
			s.report(clearState, nil)
			return
		}
		s.report(quietState, nil)
	case "load":
		s.prog = c.prog
		fallthrough
	case "r", "reset":
		s.m = intcode.NewMachine(s.prog)
		s.input = nil
		s.stop(pauseState, nil)
	}
}

// tick executes one instruction of a running machine.
func (s *session) tick() {
	k, err := s.step(true)
	if k != clearState {
		s.stop(k, err)
		s.resume = k == waitState
		return
	}
	if s.steps++; s.steps%quietEvery == 0 {
		s.report(quietState, nil)
	}
}

// step executes the instruction at IP, consuming queued input if it is
// an Input instruction. With brk set a breakpoint at IP stops execution
// before the instruction runs.
func (s *session) step(brk bool) (stateKind, error) {
	m := s.m
	if m.Halted() {
		return haltState, nil
	}
	if brk && s.breaks[m.IP] {
		return breakState, nil
	}
	ins, _ := intcode.Decode(m.Mem.Get(m.IP))
	var in int64
	ok := len(s.input) > 0
	if ok {
		in = s.input[0]
	}
	r, err := m.Step(in, ok)
	if err != nil {
		return faultState, err
	}
	switch r.State {
	case intcode.Halted:
		return haltState, nil
	case intcode.Blocked:
		return waitState, nil
	}
	if ins.Op == intcode.Input {
		s.input = s.input[1:]
	}
	if r.Emitted && s.output != nil {
		s.output(r.Output)
	}
	return clearState, nil
}

func (s *session) stop(k stateKind, err error) {
	s.running, s.resume = false, false
	s.report(k, err)
}

func (s *session) report(k stateKind, err error) {
	if s.state != nil {
		s.state(snapshot{m: s.m, kind: k, err: err, input: s.input})
	}
}
