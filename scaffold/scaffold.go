// Package scaffold reads the ASCII camera of the scaffold cleaning robot
// and drives the robot along the scaffold with movement routines.
package scaffold

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nf/intcode/grid"
	"github.com/nf/intcode/intcode"
)

// Tiles.
const (
	Space    int64 = 0
	Scaffold int64 = 1
)

// Limits of the robot's movement logic.
const (
	MaxRoutineLen = 20 // characters per line, excluding the newline
	NumRoutines   = 3
)

var (
	ErrNoRobot    = errors.New("no robot in camera view")
	ErrNoCompress = errors.New("path does not fit in the movement routines")
)

var facing = map[byte]grid.Dir{'^': grid.North, '>': grid.East, 'v': grid.South, '<': grid.West}

// View is a parsed camera image.
type View struct {
	Grid     grid.Grid
	Robot    grid.Point
	Facing   grid.Dir
	HasRobot bool
}

// ParseView parses camera output: # is scaffold, . is space, and one of
// ^>v< is the robot standing on scaffold. A robot that has fallen off the
// scaffold is shown as X and is not reported.
func ParseView(text string) *View {
	v := &View{Grid: grid.Grid{}}
	for y, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		for x := 0; x < len(line); x++ {
			p := grid.Point{X: x, Y: y}
			c := line[x]
			if d, ok := facing[c]; ok {
				v.Robot, v.Facing, v.HasRobot = p, d, true
				c = '#'
			}
			if c == '#' {
				v.Grid[p] = Scaffold
			} else {
				v.Grid[p] = Space
			}
		}
	}
	return v
}

// Camera runs the camera program p and parses its image.
func Camera(p intcode.Program) (*View, error) {
	out, err := intcode.NewMachine(p).Execute(nil)
	if err != nil {
		return nil, fmt.Errorf("camera: %w", err)
	}
	return ParseView(Text(out)), nil
}

// Text converts ASCII program output to a string, writing values outside
// the ASCII range as decimal numbers.
func Text(out []int64) string {
	var b strings.Builder
	for _, v := range out {
		if v >= 0 && v < 128 {
			b.WriteByte(byte(v))
		} else {
			b.WriteString(strconv.FormatInt(v, 10))
		}
	}
	return b.String()
}

func (v *View) scaffold(p grid.Point) bool { return v.Grid[p] == Scaffold }

// Intersections returns the scaffold points whose four neighbours are
// also scaffold.
func (v *View) Intersections() []grid.Point {
	var ps []grid.Point
	r := v.Grid.Bounds()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			p := grid.Point{X: x, Y: y}
			if !v.scaffold(p) {
				continue
			}
			n := p.Neighbors()
			if v.scaffold(n[0]) && v.scaffold(n[1]) && v.scaffold(n[2]) && v.scaffold(n[3]) {
				ps = append(ps, p)
			}
		}
	}
	return ps
}

// Alignment returns the sum of x*y over all intersections.
func (v *View) Alignment() int {
	sum := 0
	for _, p := range v.Intersections() {
		sum += p.X * p.Y
	}
	return sum
}

// Move is one turn followed by a number of steps forward.
type Move struct {
	Turn  byte // 'L' or 'R'
	Steps int
}

func (m Move) String() string { return string(m.Turn) + "," + strconv.Itoa(m.Steps) }

// Path is a sequence of moves.
type Path []Move

func (p Path) String() string {
	s := make([]string, len(p))
	for i, m := range p {
		s[i] = m.String()
	}
	return strings.Join(s, ",")
}

func (p Path) hasPrefix(q Path) bool {
	if len(q) > len(p) {
		return false
	}
	for i := range q {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// Path returns the route that takes the robot from its position to the
// end of the scaffold, going straight across intersections.
func (v *View) Path() (Path, error) {
	if !v.HasRobot {
		return nil, ErrNoRobot
	}
	var (
		path Path
		pos  = v.Robot
		dir  = v.Facing
	)
	for {
		var m Move
		switch {
		case v.scaffold(pos.Add(dir.Left().Delta())):
			m.Turn, dir = 'L', dir.Left()
		case v.scaffold(pos.Add(dir.Right().Delta())):
			m.Turn, dir = 'R', dir.Right()
		default:
			return path, nil
		}
		for v.scaffold(pos.Add(dir.Delta())) {
			pos = pos.Add(dir.Delta())
			m.Steps++
		}
		path = append(path, m)
	}
}

// Routines is a path split into a main routine that calls up to
// NumRoutines movement functions.
type Routines struct {
	Main  []int // indexes into Funcs
	Funcs []Path
}

// Compress splits p into movement functions such that every line of the
// resulting input fits in MaxRoutineLen characters. It prefers earlier
// functions and shorter new functions.
func Compress(p Path) (*Routines, error) {
	r := &Routines{}
	if !r.compress(p) {
		return nil, ErrNoCompress
	}
	return r, nil
}

func (r *Routines) compress(rest Path) bool {
	if len(rest) == 0 {
		return true
	}
	if 2*len(r.Main)+1 > MaxRoutineLen {
		return false
	}
	for i, f := range r.Funcs {
		if rest.hasPrefix(f) {
			r.Main = append(r.Main, i)
			if r.compress(rest[len(f):]) {
				return true
			}
			r.Main = r.Main[:len(r.Main)-1]
		}
	}
	if len(r.Funcs) == NumRoutines {
		return false
	}
	for n := 1; n <= len(rest); n++ {
		f := rest[:n]
		if len(f.String()) > MaxRoutineLen {
			break
		}
		r.Funcs = append(r.Funcs, f)
		r.Main = append(r.Main, len(r.Funcs)-1)
		if r.compress(rest[n:]) {
			return true
		}
		r.Funcs = r.Funcs[:len(r.Funcs)-1]
		r.Main = r.Main[:len(r.Main)-1]
	}
	return false
}

// MainString returns the main routine in the robot's syntax, e.g. A,B,A.
func (r *Routines) MainString() string {
	s := make([]string, len(r.Main))
	for i, f := range r.Main {
		s[i] = string(rune('A' + f))
	}
	return strings.Join(s, ",")
}

// Expand returns the path described by r.
func (r *Routines) Expand() Path {
	var p Path
	for _, f := range r.Main {
		p = append(p, r.Funcs[f]...)
	}
	return p
}

// Input returns the text fed to the robot: the main routine, the three
// functions, and whether to show the continuous video feed. Unused
// functions repeat the first.
func (r *Routines) Input(video bool) string {
	var b strings.Builder
	b.WriteString(r.MainString())
	b.WriteByte('\n')
	for i := 0; i < NumRoutines; i++ {
		var f Path
		switch {
		case i < len(r.Funcs):
			f = r.Funcs[i]
		case len(r.Funcs) > 0:
			f = r.Funcs[0]
		}
		b.WriteString(f.String())
		b.WriteByte('\n')
	}
	if video {
		b.WriteString("y\n")
	} else {
		b.WriteString("n\n")
	}
	return b.String()
}

// Vacuum wakes the robot by setting address 0 to 2, feeds it input and
// returns the amount of dust it reports as its final, non-ASCII, output.
// If the robot's last output is text, that text is returned in the error.
func Vacuum(ctx context.Context, p intcode.Program, input string) (int64, error) {
	m := intcode.NewMachine(p)
	m.Mem.Set(0, 2)
	in := intcode.ASCII(input)
	var out []int64
	err := intcode.RunContext(ctx, m, func(d *intcode.Driver, ev intcode.Event) (int64, bool) {
		if ev.Kind == intcode.OutputEvent {
			out = append(out, ev.Value)
			return 0, false
		}
		if len(in) == 0 {
			d.Abort()
			return 0, false
		}
		v := in[0]
		in = in[1:]
		return v, true
	})
	if err != nil {
		return 0, fmt.Errorf("vacuum: %w", err)
	}
	if len(out) == 0 || (out[len(out)-1] >= 0 && out[len(out)-1] < 128) {
		return 0, fmt.Errorf("vacuum: robot said %q", Text(out))
	}
	return out[len(out)-1], nil
}
