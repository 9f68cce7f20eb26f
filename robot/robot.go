// Package robot drives the hull painting robot. The robot's program reads
// the colour of the panel under the robot and answers with a colour to
// paint and a direction to turn before moving forward one panel.
package robot

import (
	"context"
	"fmt"

	"github.com/nf/intcode/grid"
	"github.com/nf/intcode/intcode"
)

// Panel colours.
const (
	Black int64 = 0
	White int64 = 1
)

// Turn directions.
const (
	TurnLeft  int64 = 0
	TurnRight int64 = 1
)

// Palette draws black panels dark and white panels light.
var Palette = grid.Palette{
	{0x10, 0x10, 0x18, 0xff},
	{0xf0, 0xf0, 0xe8, 0xff},
}

// Robot is the painting robot and the hull it has painted.
type Robot struct {
	Hull   grid.Grid
	Pos    grid.Point
	Facing grid.Dir

	painted map[grid.Point]bool
	turn    bool // next output is a turn
	err     error
}

// New returns a robot facing up at the origin of an unpainted hull whose
// origin panel has the given colour.
func New(start int64) *Robot {
	r := &Robot{
		Hull:    grid.Grid{},
		Facing:  grid.North,
		painted: map[grid.Point]bool{},
	}
	if start != Black {
		r.Hull[grid.Point{}] = start
	}
	return r
}

// Painted returns the number of panels painted at least once.
func (r *Robot) Painted() int { return len(r.painted) }

// Run runs the robot program p until it halts.
func (r *Robot) Run(ctx context.Context, p intcode.Program) error {
	if err := intcode.RunContext(ctx, intcode.NewMachine(p), r.Handle); err != nil {
		return err
	}
	return r.err
}

// Handle is an intcode.Handler that moves the robot.
func (r *Robot) Handle(d *intcode.Driver, ev intcode.Event) (int64, bool) {
	if ev.Kind == intcode.InputEvent {
		return r.Hull[r.Pos], true
	}
	if !r.turn {
		if ev.Value != Black && ev.Value != White {
			return r.fail(d, fmt.Errorf("robot: bad colour %d at %v", ev.Value, r.Pos))
		}
		r.Hull[r.Pos] = ev.Value
		r.painted[r.Pos] = true
		r.turn = true
		return 0, false
	}
	switch ev.Value {
	case TurnLeft:
		r.Facing = r.Facing.Left()
	case TurnRight:
		r.Facing = r.Facing.Right()
	default:
		return r.fail(d, fmt.Errorf("robot: bad turn %d at %v", ev.Value, r.Pos))
	}
	r.Pos = r.Pos.Add(r.Facing.Delta())
	r.turn = false
	return 0, false
}

func (r *Robot) fail(d *intcode.Driver, err error) (int64, bool) {
	r.err = err
	d.Abort()
	return 0, false
}

// Render draws the hull with # for white panels.
func (r *Robot) Render() string {
	return r.Hull.Render(func(v int64) rune {
		if v == White {
			return '#'
		}
		return ' '
	})
}
