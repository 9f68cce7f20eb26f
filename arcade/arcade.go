// Package arcade runs the breakout game cabinet. The game program draws
// by emitting x, y, tile triples and reads the joystick position whenever
// it advances a frame. A triple at -1, 0 carries the score instead of a
// tile.
package arcade

import (
	"context"
	"errors"
	"fmt"

	"github.com/nf/intcode/grid"
	"github.com/nf/intcode/intcode"
)

// Tiles.
const (
	Empty int64 = iota
	Wall
	Block
	Paddle
	Ball
)

// Joystick positions.
const (
	Left    int64 = -1
	Neutral int64 = 0
	Right   int64 = 1
)

// Glyphs are the characters used by Render for each tile.
var Glyphs = []rune{' ', '#', '=', '-', 'o'}

// Palette colours the tiles for image rendering.
var Palette = grid.Palette{
	{0x00, 0x00, 0x00, 0xff},
	{0x80, 0x80, 0x80, 0xff},
	{0x40, 0xa0, 0xf0, 0xff},
	{0xf0, 0xf0, 0xf0, 0xff},
	{0xf0, 0x60, 0x20, 0xff},
}

var ErrNoJoystick = errors.New("game wants input but no joystick is connected")

// Screen is the cabinet display.
type Screen struct {
	Tiles  grid.Grid
	Score  int64
	Ball   grid.Point
	Paddle grid.Point

	out [3]int64
	n   int
}

// Blocks returns the number of block tiles on screen.
func (s *Screen) Blocks() int { return s.Tiles.Count(Block) }

// Render draws the tiles and score as text.
func (s *Screen) Render() string {
	return fmt.Sprintf("score %d\n%s", s.Score, s.Tiles.Render(glyph))
}

func glyph(v int64) rune {
	if v < 0 || v >= int64(len(Glyphs)) {
		return '?'
	}
	return Glyphs[v]
}

func (s *Screen) write(v int64) {
	s.out[s.n] = v
	if s.n++; s.n < 3 {
		return
	}
	s.n = 0
	x, y, t := s.out[0], s.out[1], s.out[2]
	if x == -1 && y == 0 {
		s.Score = t
		return
	}
	p := grid.Point{X: int(x), Y: int(y)}
	s.Tiles[p] = t
	switch t {
	case Ball:
		s.Ball = p
	case Paddle:
		s.Paddle = p
	}
}

// Joystick supplies the joystick position each time the game waits for
// input. The screen is complete for the current frame when Tilt is
// called. Returning ok false stops the game.
type Joystick interface {
	Tilt(s *Screen) (pos int64, ok bool)
}

// JoystickFunc adapts a function to the Joystick interface.
type JoystickFunc func(s *Screen) (int64, bool)

func (f JoystickFunc) Tilt(s *Screen) (int64, bool) { return f(s) }

// AutoPilot keeps the paddle under the ball.
type AutoPilot struct{}

func (AutoPilot) Tilt(s *Screen) (int64, bool) {
	switch {
	case s.Ball.X < s.Paddle.X:
		return Left, true
	case s.Ball.X > s.Paddle.X:
		return Right, true
	}
	return Neutral, true
}

// FreePlay returns a copy of p with the coin slot at address 0 set so the
// game can be played.
func FreePlay(p intcode.Program) intcode.Program {
	q := append(intcode.Program(nil), p...)
	if len(q) > 0 {
		q[0] = 2
	}
	return q
}

// Play runs the game program p with joystick j until it halts or the
// joystick stops it, and returns the final screen. A nil joystick is
// allowed for programs that only draw.
func Play(ctx context.Context, p intcode.Program, j Joystick) (*Screen, error) {
	s := &Screen{Tiles: grid.Grid{}}
	var err error
	runErr := intcode.RunContext(ctx, intcode.NewMachine(p), func(d *intcode.Driver, ev intcode.Event) (int64, bool) {
		if ev.Kind == intcode.OutputEvent {
			s.write(ev.Value)
			return 0, false
		}
		if j == nil {
			err = ErrNoJoystick
			d.Abort()
			return 0, false
		}
		pos, ok := j.Tilt(s)
		if !ok {
			d.Abort()
			return 0, false
		}
		return pos, true
	})
	if runErr != nil {
		return s, runErr
	}
	return s, err
}
