// Package droid maps an unknown area with the repair droid. The droid's
// program reads a movement command and reports whether the droid hit a
// wall, moved, or moved onto the oxygen system.
package droid

import (
	"context"
	"errors"
	"fmt"

	"github.com/nf/intcode/grid"
	"github.com/nf/intcode/intcode"
)

// Map tiles. Unexplored points are absent from the map.
const (
	Unknown int64 = iota
	Wall
	Open
	Oxygen
)

// Status codes reported by the droid.
const (
	HitWall  int64 = 0
	Moved    int64 = 1
	AtOxygen int64 = 2
)

// Glyphs are the characters used by Render for each tile.
var Glyphs = []rune{' ', '#', '.', 'O'}

// Palette colours the map for image rendering.
var Palette = grid.Palette{
	{0x00, 0x00, 0x00, 0xff},
	{0x60, 0x60, 0x70, 0xff},
	{0xd0, 0xd0, 0xc0, 0xff},
	{0x40, 0x90, 0xff, 0xff},
}

var ErrNoOxygen = errors.New("oxygen system not found")

// command maps directions to movement commands.
var command = map[grid.Dir]int64{
	grid.North: 1,
	grid.South: 2,
	grid.West:  3,
	grid.East:  4,
}

// Explorer drives the droid depth first, backtracking along its own path,
// until every reachable point has been seen.
type Explorer struct {
	Map    grid.Grid
	Pos    grid.Point
	Oxygen grid.Point
	Found  bool

	// StopAtOxygen ends the exploration as soon as the oxygen system
	// is found.
	StopAtOxygen bool

	path    []grid.Dir // moves from the origin to Pos
	pending grid.Dir
	back    bool // pending move retraces path
	err     error
}

// NewExplorer returns an explorer with the droid at the origin.
func NewExplorer() *Explorer {
	return &Explorer{Map: grid.Grid{{}: Open}}
}

// Explore runs the droid program p, handling its events with e.
func (e *Explorer) Explore(ctx context.Context, p intcode.Program) error {
	if err := intcode.RunContext(ctx, intcode.NewMachine(p), e.Handle); err != nil {
		return err
	}
	return e.err
}

// Handle is an intcode.Handler that chooses the droid's next move and
// records the outcome of the last one. It aborts the run once there is
// nothing left to explore.
func (e *Explorer) Handle(d *intcode.Driver, ev intcode.Event) (int64, bool) {
	if ev.Kind == intcode.InputEvent {
		return e.next(d)
	}
	to := e.Pos.Add(e.pending.Delta())
	switch ev.Value {
	case HitWall:
		if e.back {
			return e.fail(d, fmt.Errorf("droid: wall at %v on the way back", to))
		}
		e.Map[to] = Wall
		return 0, false
	case Moved, AtOxygen:
	default:
		return e.fail(d, fmt.Errorf("droid: bad status %d", ev.Value))
	}
	if e.back {
		e.path = e.path[:len(e.path)-1]
	} else {
		e.path = append(e.path, e.pending)
		e.Map[to] = Open
	}
	e.Pos = to
	if ev.Value == AtOxygen {
		e.Map[to] = Oxygen
		e.Oxygen, e.Found = to, true
		if e.StopAtOxygen {
			d.Abort()
		}
	}
	return 0, false
}

func (e *Explorer) next(d *intcode.Driver) (int64, bool) {
	for _, dir := range []grid.Dir{grid.North, grid.East, grid.South, grid.West} {
		if _, ok := e.Map[e.Pos.Add(dir.Delta())]; !ok {
			e.pending, e.back = dir, false
			return command[dir], true
		}
	}
	if len(e.path) == 0 {
		d.Abort()
		return 0, false
	}
	e.pending, e.back = e.path[len(e.path)-1].Reverse(), true
	return command[e.pending], true
}

func (e *Explorer) fail(d *intcode.Driver, err error) (int64, bool) {
	e.err = err
	d.Abort()
	return 0, false
}

// Render draws the map, marking the droid with D.
func (e *Explorer) Render() string {
	m := grid.Grid{}
	for p, v := range e.Map {
		m[p] = v
	}
	m[e.Pos] = -1
	return m.Render(func(v int64) rune {
		if v == -1 {
			return 'D'
		}
		if v < 0 || v >= int64(len(Glyphs)) {
			return '?'
		}
		return Glyphs[v]
	})
}

// Distances returns the number of moves from start to every open point
// reachable from it on the map.
func Distances(m grid.Grid, start grid.Point) map[grid.Point]int {
	dist := map[grid.Point]int{start: 0}
	queue := []grid.Point{start}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, q := range p.Neighbors() {
			if t := m[q]; t != Open && t != Oxygen {
				continue
			}
			if _, ok := dist[q]; ok {
				continue
			}
			dist[q] = dist[p] + 1
			queue = append(queue, q)
		}
	}
	return dist
}

// ShortestPath returns the number of moves from the origin to the oxygen
// system.
func (e *Explorer) ShortestPath() (int, error) {
	if !e.Found {
		return 0, ErrNoOxygen
	}
	return Distances(e.Map, grid.Point{})[e.Oxygen], nil
}

// FillTime returns the number of minutes oxygen takes to spread from the
// oxygen system to every open point, one step per minute.
func (e *Explorer) FillTime() (int, error) {
	if !e.Found {
		return 0, ErrNoOxygen
	}
	max := 0
	for _, d := range Distances(e.Map, e.Oxygen) {
		if d > max {
			max = d
		}
	}
	return max, nil
}
