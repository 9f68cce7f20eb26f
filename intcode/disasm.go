package intcode

import (
	"strconv"
	"strings"
)

// Disassemble formats the instruction stored at addr and returns it with
// the number of cells it occupies. Words that do not decode are shown as
// data and occupy one cell.
//
// Parameters are written as 123 for position mode, #123 for immediate and
// rb+123 for relative.
func Disassemble(mem Memory, addr int64) (string, int) {
	raw := mem.Get(addr)
	ins, err := Decode(raw)
	if err != nil {
		return "DATA " + strconv.FormatInt(raw, 10), 1
	}
	var b strings.Builder
	b.WriteString(ins.Op.String())
	for i := 0; i < ins.Op.Params(); i++ {
		if i == 0 {
			b.WriteByte(' ')
		} else {
			b.WriteString(", ")
		}
		v := strconv.FormatInt(mem.Get(addr+1+int64(i)), 10)
		switch ins.Modes[i] {
		case Immediate:
			b.WriteString("#" + v)
		case Relative:
			if v[0] != '-' {
				v = "+" + v
			}
			b.WriteString("rb" + v)
		default:
			b.WriteString(v)
		}
	}
	return b.String(), ins.Op.Size()
}

// Listing disassembles n instructions starting at addr, one per line,
// each prefixed with its address.
func Listing(mem Memory, addr int64, n int) string {
	var b strings.Builder
	for ; n > 0; n-- {
		s, size := Disassemble(mem, addr)
		b.WriteString(strconv.FormatInt(addr, 10))
		b.WriteByte('\t')
		b.WriteString(s)
		b.WriteByte('\n')
		addr += int64(size)
	}
	return b.String()
}
