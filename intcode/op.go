package intcode

import "fmt"

// Op represents an Intcode opcode, the low two decimal digits of an
// instruction word.
type Op int64

const (
	Add         Op = 1
	Multiply    Op = 2
	Input       Op = 3
	Output      Op = 4
	JumpIfTrue  Op = 5
	JumpIfFalse Op = 6
	LessThan    Op = 7
	Equals      Op = 8
	AdjustBase  Op = 9
	Halt        Op = 99
)

var opNames = map[Op]string{
	Add:         "ADD",
	Multiply:    "MUL",
	Input:       "IN",
	Output:      "OUT",
	JumpIfTrue:  "JNZ",
	JumpIfFalse: "JZ",
	LessThan:    "LT",
	Equals:      "EQ",
	AdjustBase:  "ARB",
	Halt:        "HLT",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return fmt.Sprintf("op(%d)", int64(o))
}

// Valid reports whether o is one of the known opcodes.
func (o Op) Valid() bool {
	_, ok := opNames[o]
	return ok
}

// Params reports the number of parameters the opcode takes.
func (o Op) Params() int {
	switch o {
	case Add, Multiply, LessThan, Equals:
		return 3
	case JumpIfTrue, JumpIfFalse:
		return 2
	case Input, Output, AdjustBase:
		return 1
	default:
		return 0
	}
}

// Size reports the number of memory cells the instruction occupies.
func (o Op) Size() int { return 1 + o.Params() }

// Writes reports whether parameter i (0 based) of o is a write target.
func (o Op) Writes(i int) bool {
	switch o {
	case Add, Multiply, LessThan, Equals:
		return i == 2
	case Input:
		return i == 0
	}
	return false
}

// Mode is a parameter addressing mode.
type Mode byte

const (
	Position  Mode = 0 // value is an address
	Immediate Mode = 1 // value is the operand
	Relative  Mode = 2 // value is an offset from the relative base
)

func (m Mode) String() string {
	switch m {
	case Position:
		return "position"
	case Immediate:
		return "immediate"
	case Relative:
		return "relative"
	default:
		return fmt.Sprintf("mode(%d)", byte(m))
	}
}

// Instruction is a decoded instruction word.
type Instruction struct {
	Op    Op
	Modes [3]Mode
}

func (i Instruction) String() string {
	return fmt.Sprintf("%v %v", i.Op, i.Modes[:i.Op.Params()])
}

// Decode decodes the instruction word raw. It returns InvalidOpcode or
// InvalidAddressMode if raw does not describe a valid instruction.
// Decode has no side effects; the engine calls it afresh on every step
// because programs may rewrite their own instructions.
func Decode(raw int64) (Instruction, error) {
	var ins Instruction
	if raw < 0 {
		return ins, InvalidOpcode
	}
	ins.Op = Op(raw % 100)
	if !ins.Op.Valid() {
		return ins, InvalidOpcode
	}
	digits := raw / 100
	for i := range ins.Modes {
		m := Mode(digits % 10)
		if m > Relative {
			return ins, InvalidAddressMode
		}
		ins.Modes[i] = m
		digits /= 10
	}
	return ins, nil
}
