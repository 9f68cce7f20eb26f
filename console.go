package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/nf/intcode/intcode"
)

// console connects an ASCII Intcode program to a terminal. Each line read
// from in becomes input, newline included. Outputs below 128 are written
// as text and larger values as decimal numbers on their own line.
type console struct {
	in  *bufio.Reader
	out io.Writer

	pending []int64
	err     error
}

func newConsole(in io.Reader, out io.Writer) *console {
	return &console{in: bufio.NewReader(in), out: out}
}

// Run runs m until it halts or input runs out.
func (c *console) Run(ctx context.Context, m *intcode.Machine, maxSteps int64) error {
	if err := intcode.RunBudget(ctx, m, maxSteps, c.Handle); err != nil {
		return err
	}
	return c.err
}

// Handle is an intcode.Handler. It aborts the run at the end of input.
func (c *console) Handle(d *intcode.Driver, ev intcode.Event) (int64, bool) {
	if ev.Kind == intcode.OutputEvent {
		c.write(ev.Value)
		return 0, false
	}
	if len(c.pending) == 0 {
		line, err := c.in.ReadString('\n')
		if line != "" && line[len(line)-1] != '\n' {
			line += "\n"
		}
		c.pending = intcode.ASCII(line)
		if len(c.pending) == 0 {
			if err != io.EOF {
				c.err = fmt.Errorf("reading input: %v", err)
			}
			d.Abort()
			return 0, false
		}
	}
	v := c.pending[0]
	c.pending = c.pending[1:]
	return v, true
}

func (c *console) write(v int64) {
	if v >= 0 && v < 128 {
		c.out.Write([]byte{byte(v)})
		return
	}
	io.WriteString(c.out, strconv.FormatInt(v, 10)+"\n")
}
