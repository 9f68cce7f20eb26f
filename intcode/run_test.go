package intcode

import (
	"context"
	"fmt"
	"testing"

	"github.com/pkg/errors"
)

const (
	compareProg = "3,21,1008,21,8,20,1005,20,22,107,8,21,20,1006,20,31,1106,0,36,98,0,0,1002,21,125,20,4,20,1105,1,46,104,999,1105,1,46,1101,1000,1,20,4,20,1105,1,46,98,99"
	quineProg   = "109,1,204,-1,1001,100,1,100,1008,100,16,101,1006,101,0,99"
)

func mustParse(t *testing.T, s string) Program {
	t.Helper()
	p, err := Parse(s)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func equalWords(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestExecute(t *testing.T) {
	for _, c := range []struct {
		prog string
		in   []int64
		want []int64
	}{
		{"3,0,4,0,99", []int64{-34}, []int64{-34}},
		{"3,9,8,9,10,9,4,9,99,-1,8", []int64{8}, []int64{1}},
		{"3,9,8,9,10,9,4,9,99,-1,8", []int64{7}, []int64{0}},
		{"3,9,7,9,10,9,4,9,99,-1,8", []int64{7}, []int64{1}},
		{"3,3,1108,-1,8,3,4,3,99", []int64{8}, []int64{1}},
		{"3,3,1107,-1,8,3,4,3,99", []int64{9}, []int64{0}},
		{"3,12,6,12,15,1,13,14,13,4,13,99,-1,0,1,9", []int64{0}, []int64{0}},
		{"3,12,6,12,15,1,13,14,13,4,13,99,-1,0,1,9", []int64{5}, []int64{1}},
		{"3,3,1105,-1,9,1101,0,0,12,4,12,99,1", []int64{0}, []int64{0}},
		{"3,3,1105,-1,9,1101,0,0,12,4,12,99,1", []int64{5}, []int64{1}},
		{compareProg, []int64{7}, []int64{999}},
		{compareProg, []int64{8}, []int64{1000}},
		{compareProg, []int64{9}, []int64{1001}},
		{"1102,34915192,34915192,7,4,7,99,0", nil, []int64{1219070632396864}},
		{"104,1125899906842624,99", nil, []int64{1125899906842624}},
		{quineProg, nil, mustParse(t, quineProg)},
		{"3,0,99", []int64{1, 2, 3}, nil},
	} {
		t.Run(fmt.Sprintf("%s_%v", c.prog, c.in), func(t *testing.T) {
			got, err := NewMachine(mustParse(t, c.prog)).Execute(c.in)
			if err != nil {
				t.Fatal(err)
			}
			if !equalWords(got, c.want) {
				t.Errorf("output is %v, want %v", got, c.want)
			}
		})
	}
}

func TestExecuteMemory(t *testing.T) {
	for _, c := range []struct {
		prog       string
		addr, want int64
	}{
		{"1,9,10,3,2,3,11,0,99,30,40,50", 0, 3500},
		{"1,0,0,0,99", 0, 2},
		{"2,3,0,3,99", 3, 6},
		{"2,4,4,5,99,0", 5, 9801},
		{"1,1,1,4,99,5,6,0,99", 0, 30},
		{"1002,4,3,4,33", 4, 99},
		{"1101,100,-1,4,0", 4, 99},
	} {
		m := NewMachine(mustParse(t, c.prog))
		if _, err := m.Execute(nil); err != nil {
			t.Errorf("%s: %v", c.prog, err)
			continue
		}
		if g := m.Mem.Get(c.addr); g != c.want {
			t.Errorf("%s: memory[%d] = %d, want %d", c.prog, c.addr, g, c.want)
		}
	}
}

func TestExecuteNoInput(t *testing.T) {
	m := NewMachine(mustParse(t, "3,10,4,10,3,11,99"))
	out, err := m.Execute([]int64{5})
	if !errors.Is(err, ErrNoInput) {
		t.Fatalf("error = %v, want %v", err, ErrNoInput)
	}
	if !equalWords(out, []int64{5}) {
		t.Errorf("output is %v, want [5]", out)
	}
	if m.IP != 4 {
		t.Errorf("IP is %d, want 4", m.IP)
	}
	// The machine is still usable once input arrives.
	if out, err := m.Execute([]int64{6}); err != nil || len(out) != 0 || !m.Halted() {
		t.Errorf("resumed Execute = %v, %v, halted %v", out, err, m.Halted())
	}
}

func TestExecuteFault(t *testing.T) {
	out, err := NewMachine(mustParse(t, "104,7,11101,1,1,4,99")).Execute(nil)
	if !errors.Is(err, AttemptedImmediateWrite) {
		t.Errorf("error = %v, want %v", err, AttemptedImmediateWrite)
	}
	var f Fault
	if !errors.As(err, &f) || f.Addr != 2 {
		t.Errorf("error = %v, want a Fault at 2", err)
	}
	if !equalWords(out, []int64{7}) {
		t.Errorf("output is %v, want [7]", out)
	}
}

// Feeding input through Run, even with spurious starvation, must produce
// the same output as Execute.
func TestRunMatchesExecute(t *testing.T) {
	for _, in := range []int64{7, 8, 9} {
		want, err := NewMachine(mustParse(t, compareProg)).Execute([]int64{in})
		if err != nil {
			t.Fatal(err)
		}
		var (
			got   []int64
			asked int
		)
		inputs := []int64{in}
		err = Run(NewMachine(mustParse(t, compareProg)), func(d *Driver, ev Event) (int64, bool) {
			switch ev.Kind {
			case InputEvent:
				asked++
				if asked < 3 || len(inputs) == 0 {
					return 0, false
				}
				v := inputs[0]
				inputs = inputs[1:]
				return v, true
			case OutputEvent:
				got = append(got, ev.Value)
			}
			return 0, false
		})
		if err != nil {
			t.Fatal(err)
		}
		if !equalWords(got, want) {
			t.Errorf("input %d: Run output %v, Execute output %v", in, got, want)
		}
		if asked != 3 {
			t.Errorf("input %d: handler asked %d times, want 3", in, asked)
		}
	}
}

func TestRunAbort(t *testing.T) {
	m := NewMachine(mustParse(t, "104,1,1105,1,0"))
	var n int
	err := Run(m, func(d *Driver, ev Event) (int64, bool) {
		if ev.Kind == OutputEvent {
			n++
			if n == 3 {
				d.Abort()
			}
			if d.Machine() != m {
				t.Error("Driver.Machine is not the running machine")
			}
		}
		return 0, false
	})
	if err != nil {
		t.Fatalf("aborted Run returned %v", err)
	}
	if n != 3 {
		t.Errorf("got %d outputs after abort, want 3", n)
	}
	if m.Halted() {
		t.Error("aborted machine is halted")
	}
	if m.IP != 2 {
		t.Errorf("IP is %d after abort, want 2", m.IP)
	}
}

func TestRunContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var n int
	err := RunContext(ctx, NewMachine(mustParse(t, "104,1,1105,1,0")), func(d *Driver, ev Event) (int64, bool) {
		n++
		if n == 5 {
			cancel()
		}
		return 0, false
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want %v", err, context.Canceled)
	}
	if n != 5 {
		t.Errorf("got %d outputs, want 5", n)
	}
}

func TestRunBudget(t *testing.T) {
	m := NewMachine(mustParse(t, "1105,1,0"))
	err := RunBudget(context.Background(), m, 100, func(*Driver, Event) (int64, bool) {
		t.Error("handler called")
		return 0, false
	})
	if !errors.Is(err, ErrBudget) {
		t.Errorf("error = %v, want %v", err, ErrBudget)
	}
	if m.Steps() != 100 {
		t.Errorf("Steps() = %d, want 100", m.Steps())
	}

	var out []int64
	err = RunBudget(context.Background(), NewMachine(mustParse(t, quineProg)), 0, func(_ *Driver, ev Event) (int64, bool) {
		out = append(out, ev.Value)
		return 0, false
	})
	if err != nil {
		t.Fatal(err)
	}
	if !equalWords(out, mustParse(t, quineProg)) {
		t.Errorf("unlimited RunBudget output is %v", out)
	}
}
