// Package intcode provides an implementation of an Intcode computer, called
// Machine, together with a batch runner and an interactive driver.
//
// A Machine executes one instruction per call to Step. An Input instruction
// with no value available leaves the machine Blocked at that instruction,
// so callers can feed input on demand and observe output one value at a
// time.
package intcode

import "fmt"

// Machine is an Intcode computer. Its memory is owned by the machine and
// must not be shared with other machines.
type Machine struct {
	Mem  Memory
	IP   int64 // instruction pointer
	Base int64 // relative base

	steps  int64
	halted bool
}

// NewMachine returns a machine with p loaded at address 0.
func NewMachine(p Program) *Machine {
	m := &Machine{Mem: make(Memory, len(p))}
	for i, v := range p {
		m.Mem[int64(i)] = v
	}
	return m
}

// Clone returns an independent copy of m, memory included.
func (m *Machine) Clone() *Machine {
	c := *m
	c.Mem = m.Mem.Clone()
	return &c
}

// Halted reports whether the machine has executed a Halt instruction.
func (m *Machine) Halted() bool { return m.halted }

// Steps returns the number of instructions executed so far.
func (m *Machine) Steps() int64 { return m.steps }

// State is the outcome of a single step.
type State byte

const (
	Running State = iota // executed an instruction, possibly emitting output
	Blocked              // waiting at an Input instruction
	Halted               // executed Halt; terminal
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Blocked:
		return "blocked"
	case Halted:
		return "halted"
	default:
		return fmt.Sprintf("state(%d)", byte(s))
	}
}

// Result is returned by Step.
type Result struct {
	State   State
	Output  int64 // valid if Emitted is set
	Emitted bool
}

// Step executes the instruction at m.IP.
//
// If the instruction is Input and ok is false, Step returns Blocked without
// advancing IP; calling Step again with a value retries the same
// instruction. Otherwise in is consumed by the Input instruction and
// ignored by all others.
//
// Step returns a Fault if the instruction cannot be decoded or writes to an
// immediate parameter. In that case the machine is left unchanged.
// Once the machine has halted Step does nothing and returns Halted.
func (m *Machine) Step(in int64, ok bool) (Result, error) {
	if m.halted {
		return Result{State: Halted}, nil
	}

	raw := m.Mem.Get(m.IP)
	ins, err := Decode(raw)
	if err != nil {
		return Result{}, m.fault(err.(FaultCode), raw)
	}

	switch ins.Op {
	case Add, Multiply, LessThan, Equals:
		a, b := m.load(ins, 0), m.load(ins, 1)
		dst, err := m.addr(ins, 2)
		if err != nil {
			return Result{}, m.fault(err.(FaultCode), raw)
		}
		var v int64
		switch ins.Op {
		case Add:
			v = a + b
		case Multiply:
			v = a * b
		case LessThan:
			v = boolWord(a < b)
		case Equals:
			v = boolWord(a == b)
		}
		m.Mem.Set(dst, v)
		m.IP += 4
	case Input:
		if !ok {
			return Result{State: Blocked}, nil
		}
		dst, err := m.addr(ins, 0)
		if err != nil {
			return Result{}, m.fault(err.(FaultCode), raw)
		}
		m.Mem.Set(dst, in)
		m.IP += 2
	case Output:
		v := m.load(ins, 0)
		m.IP += 2
		m.steps++
		return Result{State: Running, Output: v, Emitted: true}, nil
	case JumpIfTrue, JumpIfFalse:
		a, b := m.load(ins, 0), m.load(ins, 1)
		if (a != 0) == (ins.Op == JumpIfTrue) {
			m.IP = b
		} else {
			m.IP += 3
		}
	case AdjustBase:
		m.Base += m.load(ins, 0)
		m.IP += 2
	case Halt:
		m.halted = true
		m.steps++
		return Result{State: Halted}, nil
	}

	m.steps++
	return Result{State: Running}, nil
}

// param returns the raw value of parameter i of the current instruction.
func (m *Machine) param(i int) int64 {
	return m.Mem.Get(m.IP + 1 + int64(i))
}

// load resolves parameter i as a read operand.
func (m *Machine) load(ins Instruction, i int) int64 {
	v := m.param(i)
	switch ins.Modes[i] {
	case Immediate:
		return v
	case Relative:
		return m.Mem.Get(m.Base + v)
	default:
		return m.Mem.Get(v)
	}
}

// addr resolves parameter i as a write target.
func (m *Machine) addr(ins Instruction, i int) (int64, error) {
	v := m.param(i)
	switch ins.Modes[i] {
	case Immediate:
		return 0, AttemptedImmediateWrite
	case Relative:
		return m.Base + v, nil
	default:
		return v, nil
	}
}

func (m *Machine) fault(code FaultCode, raw int64) error {
	return Fault{FaultCode: code, Raw: raw, Addr: m.IP}
}

func boolWord(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// Fault is returned by Step when the instruction at Addr cannot be
// executed.
type Fault struct {
	FaultCode
	Raw  int64 // instruction word
	Addr int64
}

func (e Fault) Error() string {
	return fmt.Sprintf("%s executing %d at %d", e.FaultCode, e.Raw, e.Addr)
}

func (e Fault) Unwrap() error { return e.FaultCode }

// FaultCode signifies the type of condition that stopped execution.
type FaultCode byte

const (
	InvalidOpcode           FaultCode = 0x01
	InvalidAddressMode      FaultCode = 0x02
	AttemptedImmediateWrite FaultCode = 0x03
)

func (c FaultCode) String() string {
	if s, ok := map[FaultCode]string{
		InvalidOpcode:           "invalid opcode",
		InvalidAddressMode:      "invalid address mode",
		AttemptedImmediateWrite: "immediate mode write",
	}[c]; ok {
		return s
	}
	return fmt.Sprintf("unknown (%.2x)", byte(c))
}

func (c FaultCode) Error() string { return c.String() }
