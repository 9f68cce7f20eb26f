// Package network runs a network of Intcode computers that exchange
// packets. Each computer runs on its own goroutine with its own memory and
// reads from its own inbound queue; a NAT at address 255 watches for the
// network going idle and wakes computer 0.
package network

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nf/intcode/intcode"
)

const (
	// NATAddress is the address of the NAT.
	NATAddress = 255

	// IdleInput is the default value read by a computer whose queue is
	// empty.
	IdleInput int64 = -1

	// IdleReads is the default number of consecutive empty reads after
	// which a computer counts as idle.
	IdleReads = 2
)

var ErrHalted = errors.New("network halted")

// Packet is an X, Y pair addressed to Dest.
type Packet struct {
	Dest int
	X, Y int64
}

func (p Packet) String() string { return fmt.Sprintf("%d<-(%d,%d)", p.Dest, p.X, p.Y) }

// Network is a set of computers running the same program, addressed 0
// to Size-1.
type Network struct {
	Prog intcode.Program
	Size int

	// Idle is the value a computer reads when its queue is empty. The
	// network's idle state is tracked separately, so Idle may be any
	// value the program does not expect as real input.
	Idle int64

	// IdleReads is the number of consecutive empty reads after which a
	// computer counts as idle.
	IdleReads int

	// Trace, if set, is called for every packet sent.
	Trace func(Packet)

	mu     sync.Mutex
	queues [][]int64
	idle   []int // consecutive empty reads per computer
	halted []bool
	nat    *Packet
	woke   *Packet // last packet the NAT delivered
	result *Packet
	stop   context.CancelFunc
	first  bool // stop at the first packet to the NAT
}

// New returns a network of size computers running p.
func New(p intcode.Program, size int) *Network {
	return &Network{Prog: p, Size: size, Idle: IdleInput, IdleReads: IdleReads}
}

// FirstNAT runs the network until a packet is sent to the NAT and returns
// that packet.
func (n *Network) FirstNAT(ctx context.Context) (Packet, error) {
	return n.run(ctx, true)
}

// RepeatedWake runs the network with the NAT delivering the last packet
// it received to computer 0 whenever the network is idle, and returns
// the first packet it delivers twice in a row, judged by Y.
func (n *Network) RepeatedWake(ctx context.Context) (Packet, error) {
	return n.run(ctx, false)
}

func (n *Network) run(parent context.Context, first bool) (Packet, error) {
	ctx, stop := context.WithCancel(parent)
	defer stop()

	n.mu.Lock()
	n.queues = make([][]int64, n.Size)
	n.idle = make([]int, n.Size)
	n.halted = make([]bool, n.Size)
	for i := range n.queues {
		n.queues[i] = []int64{int64(i)}
	}
	n.nat, n.woke, n.result = nil, nil, nil
	n.stop, n.first = stop, first
	n.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n.Size; i++ {
		i := i
		g.Go(func() error {
			err := intcode.RunContext(gctx, intcode.NewMachine(n.Prog), n.node(i))
			n.mu.Lock()
			n.halted[i] = true
			n.mu.Unlock()
			if err != nil && ctx.Err() == nil {
				return fmt.Errorf("computer %d: %w", i, err)
			}
			return nil
		})
	}
	err := g.Wait()

	n.mu.Lock()
	defer n.mu.Unlock()
	switch {
	case n.result != nil:
		return *n.result, nil
	case err != nil:
		return Packet{}, err
	case parent.Err() != nil:
		return Packet{}, parent.Err()
	}
	return Packet{}, ErrHalted
}

// node returns the handler for computer addr.
func (n *Network) node(addr int) intcode.Handler {
	var (
		out [3]int64
		k   int
	)
	return func(d *intcode.Driver, ev intcode.Event) (int64, bool) {
		if ev.Kind == intcode.OutputEvent {
			out[k] = ev.Value
			if k++; k == 3 {
				k = 0
				n.send(addr, Packet{Dest: int(out[0]), X: out[1], Y: out[2]})
			}
			return 0, false
		}
		v, ok := n.recv(addr)
		if !ok {
			runtime.Gosched()
		}
		return v, true
	}
}

func (n *Network) send(from int, p Packet) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.idle[from] = 0
	if n.Trace != nil {
		n.Trace(p)
	}
	switch {
	case p.Dest == NATAddress:
		n.nat = &p
		if n.first && n.result == nil {
			n.result = &p
			n.stop()
		}
	case p.Dest >= 0 && p.Dest < n.Size:
		n.queues[p.Dest] = append(n.queues[p.Dest], p.X, p.Y)
	default:
		log.Printf("computer %d sent %d,%d to nonexistent address %d", from, p.X, p.Y, p.Dest)
	}
}

// recv pops the next value from addr's queue, or returns n.Idle and false
// if the queue is empty.
func (n *Network) recv(addr int) (int64, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if q := n.queues[addr]; len(q) > 0 {
		n.queues[addr] = q[1:]
		n.idle[addr] = 0
		return q[0], true
	}
	n.idle[addr]++
	if !n.first && n.idleLocked() {
		n.wakeLocked()
	}
	return n.Idle, false
}

func (n *Network) idleLocked() bool {
	for i, q := range n.queues {
		if n.halted[i] {
			continue
		}
		if len(q) > 0 || n.idle[i] < n.IdleReads {
			return false
		}
	}
	return true
}

// wakeLocked delivers the NAT's packet to computer 0.
func (n *Network) wakeLocked() {
	if n.nat == nil || n.result != nil {
		return
	}
	p := *n.nat
	p.Dest = 0
	if n.woke != nil && n.woke.Y == p.Y {
		n.result = &p
		n.stop()
		return
	}
	n.woke = &p
	n.queues[0] = append(n.queues[0], p.X, p.Y)
	for i := range n.idle {
		n.idle[i] = 0
	}
	if n.Trace != nil {
		n.Trace(p)
	}
}
