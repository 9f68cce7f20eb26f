package main

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/nf/intcode/intcode"
)

// listingLen is the number of instructions shown from IP.
const listingLen = 6

type debugger struct {
	s *session

	log   *tview.TextView
	watch *tview.TextView
	code  *tview.TextView
	state *tview.TextView
	input *tview.InputField
	cols  *tview.Flex
	rows  *tview.Flex
	app   *tview.Application

	mu      sync.Mutex
	syms    symbols
	breaks  []symbol
	watches []symbol
}

func (d *debugger) symbols() symbols {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.syms
}

func (d *debugger) setSymbols(s symbols) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.syms = s
}

func newDebugger() *debugger {
	d := &debugger{
		log: tview.NewTextView().
			SetMaxLines(1000),
		watch: tview.NewTextView().
			SetWrap(false).
			SetTextAlign(tview.AlignRight),
		code: tview.NewTextView().
			SetWrap(false),
		state: tview.NewTextView().
			SetWrap(false),
		input: tview.NewInputField(),
		cols:  tview.NewFlex(),
		rows: tview.NewFlex().
			SetDirection(tview.FlexRow),
		app: tview.NewApplication(),
	}
	d.log.SetChangedFunc(func() { d.app.Draw() })
	d.watch.SetBackgroundColor(tcell.ColorDarkBlue)
	d.code.SetBackgroundColor(tcell.ColorDarkSlateGray)
	d.state.SetBackgroundColor(tcell.ColorDarkGrey)
	d.cols.
		AddItem(d.watch, 0, 1, false).
		AddItem(d.code, 0, 1, false).
		AddItem(d.log, 0, 2, false)
	d.rows.
		AddItem(d.cols, 0, 1, false).
		AddItem(d.state, 3, 0, false).
		AddItem(d.input, 1, 0, true)
	d.app.SetRoot(d.rows, true)

	d.input.SetAutocompleteFunc(func(t string) (entries []string) {
		if cmd, arg, ok := strings.Cut(t, " "); ok {
			switch cmd {
			case "b", "break", "d", "delete", "w", "watch":
				for _, s := range d.symbols().withLabelPrefix(arg) {
					entries = append(entries, cmd+" "+s.label)
				}
			}
		}
		return
	})
	d.input.SetAutocompletedFunc(func(t string, index, src int) bool {
		if src != tview.AutocompletedNavigate {
			d.input.SetText(t)
		}
		return src == tview.AutocompletedEnter || src == tview.AutocompletedClick
	})
	d.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		cmd := d.input.GetText()
		if cmd == "" {
			return
		}
		d.input.SetText("")
		if cmd == "exit" || cmd == "q" {
			d.app.Stop()
			return
		}
		// Commands are sent from a fresh goroutine as the session may be
		// waiting for the UI to draw.
		if c, ok := d.parseCommand(cmd); ok {
			go func() { d.s.cmds <- c }()
		}
	})
	return d
}

// parseCommand parses a command line, applying any change to the view's own
// state, and returns the command for the session, if any.
func (d *debugger) parseCommand(line string) (command, bool) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "b", "break", "d", "delete", "w", "watch":
		s, ok := d.symbols().resolve(arg)
		if !ok {
			log.Printf("invalid address %q", arg)
			return command{}, false
		}
		d.mu.Lock()
		defer d.mu.Unlock()
		switch cmd[0] {
		case 'b':
			d.breaks = append(d.breaks, s)
			log.Printf("set break %v", s)
		case 'd':
			d.breaks = removeAddr(d.breaks, s.addr)
			log.Printf("cleared break %v", s)
		case 'w':
			d.watches = append(d.watches, s)
			log.Printf("watching %v", s)
			return command{}, false
		}
		return command{name: cmd, addr: s.addr}, true
	case "B", "clear":
		d.mu.Lock()
		d.breaks = nil
		d.mu.Unlock()
		log.Print("cleared breaks")
		return command{name: cmd}, true
	case "i", "in", "input":
		var vs []int64
		if a, ok := strings.CutPrefix(arg, "\""); ok {
			vs = intcode.ASCII(strings.TrimSuffix(a, "\"") + "\n")
		} else {
			for _, f := range strings.FieldsFunc(arg, func(r rune) bool { return r == ',' || r == ' ' }) {
				v, err := strconv.ParseInt(f, 10, 64)
				if err != nil {
					log.Printf("invalid input %q", f)
					return command{}, false
				}
				vs = append(vs, v)
			}
		}
		return command{name: cmd, args: vs}, true
	case "s", "step", "c", "cont", "continue", "p", "pause", "r", "reset":
		return command{name: cmd}, true
	}
	log.Printf("unknown command %q", cmd)
	return command{}, false
}

func removeAddr(ss []symbol, addr int64) []symbol {
	out := ss[:0]
	for _, s := range ss {
		if s.addr != addr {
			out = append(out, s)
		}
	}
	return out
}

func (d *debugger) Run() error { return d.app.Run() }

// StateFunc is called by the session whenever its state changes.
func (d *debugger) StateFunc(s snapshot) {
	var (
		watch = d.watchContent(s.m)
		code  string
		state string
	)
	if s.kind != quietState {
		code = intcode.Listing(s.m.Mem, s.m.IP, listingLen)
		state = stateMsg(d.symbols(), s)
	}
	d.app.QueueUpdateDraw(func() {
		switch s.kind {
		case clearState:
			d.state.SetTextColor(tcell.ColorBlack)
			d.state.SetBackgroundColor(tcell.ColorDarkGrey)
		case breakState:
			d.state.SetTextColor(tcell.ColorYellow)
			d.state.SetBackgroundColor(tcell.ColorDarkBlue)
		case pauseState, waitState:
			d.state.SetTextColor(tcell.ColorWhite)
			d.state.SetBackgroundColor(tcell.ColorDarkBlue)
		case haltState, faultState:
			d.state.SetTextColor(tcell.ColorWhite)
			d.state.SetBackgroundColor(tcell.ColorDarkRed)
		}
		d.watch.SetText(watch)
		if s.kind != quietState {
			d.code.SetText(code)
			d.state.SetText(state)
		}
	})
}

// Output is called by the session for each value the machine outputs.
func (d *debugger) Output(v int64) {
	if v >= ' ' && v < 127 {
		log.Printf("out %d %q", v, rune(v))
		return
	}
	log.Printf("out %d", v)
}

func stateMsg(syms symbols, s snapshot) string {
	m := s.m
	op, _ := intcode.Disassemble(m.Mem, m.IP)
	var pcSym string
	if ss := syms.forAddr(m.IP); len(ss) > 0 {
		pcSym = ss[0].label + ": "
	}
	msg := fmt.Sprintf("%6d %s %s%s\nbase: %d steps: %d input: %v\n",
		m.IP, s.kind, pcSym, op, m.Base, m.Steps(), s.input)
	if s.err != nil {
		msg += s.err.Error() + "\n"
	}
	return msg
}

func (d *debugger) watchContent(m *intcode.Machine) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var b strings.Builder
	for _, s := range d.breaks {
		fmt.Fprintf(&b, "%v brk!\n", s)
	}
	for _, w := range d.watches {
		fmt.Fprintf(&b, "%v %d\n", w, m.Mem.Get(w.addr))
	}
	return b.String()
}
