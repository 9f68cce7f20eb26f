package main

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/nf/intcode/intcode"
)

func TestDebuggerCommand(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	d := newDebugger()
	d.setSymbols(symbols{{addr: 4, label: "loop"}, {addr: 9, label: "acc"}})

	for _, c := range []struct {
		line string
		want command
		ok   bool
	}{
		{"s", command{name: "s"}, true},
		{"continue", command{name: "continue"}, true},
		{"b loop", command{name: "b", addr: 4}, true},
		{"break 12", command{name: "break", addr: 12}, true},
		{"d 12", command{name: "d", addr: 12}, true},
		{"w acc", command{}, false},
		{"b nowhere", command{}, false},
		{"frob", command{}, false},
		{"in x", command{}, false},
	} {
		got, ok := d.parseCommand(c.line)
		if ok != c.ok || got.name != c.want.name || got.addr != c.want.addr {
			t.Errorf("command(%q) = %+v, %v; want %+v, %v", c.line, got, ok, c.want, c.ok)
		}
	}
	if len(d.breaks) != 1 || d.breaks[0].label != "loop" {
		t.Errorf("breaks = %v, want just loop", d.breaks)
	}
	if len(d.watches) != 1 || d.watches[0].addr != 9 {
		t.Errorf("watches = %v, want acc", d.watches)
	}
	if !strings.Contains(buf.String(), `unknown command "frob"`) {
		t.Errorf("log %q does not report the unknown command", buf.String())
	}

	m := intcode.NewMachine(intcode.Program{3, 9, 4, 9, 1105, 1, 0, 0, 0, 42})
	if g, w := d.watchContent(m), "loop (4) brk!\nacc (9) 42\n"; g != w {
		t.Errorf("watchContent = %q, want %q", g, w)
	}
}

func TestDebuggerInput(t *testing.T) {
	d := newDebugger()
	for _, c := range []struct {
		line string
		want []int64
	}{
		{"in 1,2 3", []int64{1, 2, 3}},
		{"i -5", []int64{-5}},
		{`in "hi"`, []int64{'h', 'i', '\n'}},
	} {
		got, ok := d.parseCommand(c.line)
		if !ok || len(got.args) != len(c.want) {
			t.Errorf("command(%q) = %+v, %v; want args %v", c.line, got, ok, c.want)
			continue
		}
		for i := range c.want {
			if got.args[i] != c.want[i] {
				t.Errorf("command(%q) args = %v, want %v", c.line, got.args, c.want)
				break
			}
		}
	}
}

func TestStateMsg(t *testing.T) {
	m := intcode.NewMachine(intcode.Program{1002, 4, 3, 4, 33})
	syms := symbols{{addr: 0, label: "start"}}
	got := stateMsg(syms, snapshot{m: m, kind: breakState, input: []int64{7}})
	want := "     0 [break] start: MUL 4, #3, 4\nbase: 0 steps: 0 input: [7]\n"
	if got != want {
		t.Errorf("stateMsg =\n%q\nwant\n%q", got, want)
	}
}
