package main

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/nf/intcode/intcode"
)

// echoProg reads a value into 9, outputs it and loops.
var echoProg = intcode.Program{3, 9, 4, 9, 1105, 1, 0}

type sessionRecorder struct {
	kinds []stateKind
	ips   []int64
	errs  []error
	out   []int64
}

func (r *sessionRecorder) state(s snapshot) {
	r.kinds = append(r.kinds, s.kind)
	r.ips = append(r.ips, s.m.IP)
	r.errs = append(r.errs, s.err)
}

func (r *sessionRecorder) last() (stateKind, int64) {
	n := len(r.kinds) - 1
	return r.kinds[n], r.ips[n]
}

func newTestSession(p intcode.Program) (*session, *sessionRecorder) {
	r := &sessionRecorder{}
	return newSession(p, r.state, func(v int64) { r.out = append(r.out, v) }), r
}

// settle ticks s until it stops running.
func settle(t *testing.T, s *session) {
	t.Helper()
	for i := 0; s.running; i++ {
		if i > 1000 {
			t.Fatal("session did not stop")
		}
		s.tick()
	}
}

func TestSessionInput(t *testing.T) {
	s, r := newTestSession(echoProg)

	s.do(command{name: "step"})
	if k, ip := r.last(); k != waitState || ip != 0 {
		t.Fatalf("after step: %v at %d, want %v at 0", k, ip, waitState)
	}

	s.do(command{name: "in", args: []int64{5}})
	s.do(command{name: "cont"})
	if !s.running {
		t.Fatal("not running after cont")
	}
	settle(t, s)
	if k, ip := r.last(); k != waitState || ip != 0 {
		t.Fatalf("after cont: %v at %d, want %v at 0", k, ip, waitState)
	}

	// Input resumes a machine that stopped for want of it.
	s.do(command{name: "in", args: []int64{6, 7}})
	if !s.running {
		t.Fatal("input did not resume")
	}
	settle(t, s)
	if len(r.out) != 3 || r.out[0] != 5 || r.out[1] != 6 || r.out[2] != 7 {
		t.Errorf("output = %v, want [5 6 7]", r.out)
	}
	if len(s.input) != 0 {
		t.Errorf("input queue = %v, want empty", s.input)
	}
}

func TestSessionBreak(t *testing.T) {
	s, r := newTestSession(echoProg)
	s.do(command{name: "b", addr: 2})
	s.do(command{name: "in", args: []int64{1, 2}})

	s.do(command{name: "c"})
	settle(t, s)
	if k, ip := r.last(); k != breakState || ip != 2 {
		t.Fatalf("%v at %d, want %v at 2", k, ip, breakState)
	}
	if len(r.out) != 0 {
		t.Fatalf("output %v before the breakpoint", r.out)
	}

	// Continuing from a breakpoint executes it before checking again.
	s.do(command{name: "c"})
	settle(t, s)
	if k, ip := r.last(); k != breakState || ip != 2 || len(r.out) != 1 {
		t.Fatalf("%v at %d with output %v, want %v at 2 with one output", k, ip, r.out, breakState)
	}

	s.do(command{name: "d", addr: 2})
	s.do(command{name: "c"})
	settle(t, s)
	if k, _ := r.last(); k != waitState || len(r.out) != 2 {
		t.Errorf("%v with output %v, want %v with two outputs", k, r.out, waitState)
	}
}

func TestSessionReset(t *testing.T) {
	s, r := newTestSession(echoProg)
	s.do(command{name: "in", args: []int64{1, 2, 3}})
	s.do(command{name: "step"})
	s.do(command{name: "step"})
	if s.m.IP != 4 || len(s.input) != 2 {
		t.Fatalf("IP %d input %v, want 4 and two values", s.m.IP, s.input)
	}
	s.do(command{name: "reset"})
	if k, ip := r.last(); k != pauseState || ip != 0 || len(s.input) != 0 {
		t.Errorf("after reset: %v at %d with input %v", k, ip, s.input)
	}

	s.do(command{name: "load", prog: intcode.Program{99}})
	s.do(command{name: "step"})
	if k, _ := r.last(); k != haltState {
		t.Errorf("after load and step: %v, want %v", k, haltState)
	}
	s.do(command{name: "c"})
	if k, _ := r.last(); k != haltState || s.running {
		t.Errorf("continue after halt: %v, running %v", k, s.running)
	}
}

func TestSessionFault(t *testing.T) {
	s, r := newTestSession(intcode.Program{1101, 1, 1, 5, 42, 0})
	s.do(command{name: "c"})
	settle(t, s)
	k, ip := r.last()
	if k != faultState || ip != 4 {
		t.Fatalf("%v at %d, want %v at 4", k, ip, faultState)
	}
	if err := r.errs[len(r.errs)-1]; !errors.Is(err, intcode.InvalidOpcode) {
		t.Errorf("error = %v, want %v", err, intcode.InvalidOpcode)
	}
}

func TestSessionRun(t *testing.T) {
	kinds := make(chan stateKind, 16)
	s := newSession(intcode.Program{104, 1, 99}, func(s snapshot) { kinds <- s.kind }, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	s.Debug("c", 0)
	timeout := time.After(10 * time.Second)
	for {
		select {
		case k := <-kinds:
			if k == haltState {
				return
			}
		case <-timeout:
			t.Fatal("machine did not halt")
		}
	}
}
