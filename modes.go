package main

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/nf/intcode/amp"
	"github.com/nf/intcode/arcade"
	"github.com/nf/intcode/droid"
	"github.com/nf/intcode/gravity"
	"github.com/nf/intcode/grid"
	"github.com/nf/intcode/intcode"
	"github.com/nf/intcode/network"
	"github.com/nf/intcode/robot"
	"github.com/nf/intcode/scaffold"
)

// playFrame is how long the arcade player waits for a key each frame.
const playFrame = 150 * time.Millisecond

var modes = []string{"run", "ascii", "gravity", "amp", "robot", "arcade", "droid", "scaffold", "network"}

// config selects the device a program is attached to.
type config struct {
	mode     string
	in       string
	png      string
	scale    int
	maxSteps int64

	white    bool
	coins    bool
	play     bool
	feedback bool
	nat      bool
	nodes    int
	target   int64

	stdin io.Reader
	show  func(*image.RGBA) // live frames, if set

	last *image.RGBA
}

// run runs p attached to the configured device, writing results to out.
func (c *config) run(ctx context.Context, p intcode.Program, out io.Writer) error {
	inputs, err := parseInputs(c.in)
	if err != nil {
		return err
	}
	switch c.mode {
	case "run":
		err = c.runPlain(ctx, p, inputs, out)
	case "ascii":
		err = newConsole(c.stdin, out).Run(ctx, intcode.NewMachine(p), c.maxSteps)
	case "gravity":
		err = c.runGravity(p, inputs, out)
	case "amp":
		err = c.runAmp(ctx, p, inputs, out)
	case "robot":
		err = c.runRobot(ctx, p, out)
	case "arcade":
		err = c.runArcade(ctx, p, out)
	case "droid":
		err = c.runDroid(ctx, p, out)
	case "scaffold":
		err = c.runScaffold(ctx, p, out)
	case "network":
		err = c.runNetwork(ctx, p, out)
	default:
		return fmt.Errorf("unknown mode %q (want one of %s)", c.mode, strings.Join(modes, ", "))
	}
	if err != nil {
		return err
	}
	if c.png != "" && c.last != nil {
		return writePNG(c.png, c.last)
	}
	return nil
}

func parseInputs(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	p, err := intcode.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("-in: %w", err)
	}
	return p, nil
}

// frame renders g, showing it live if a viewer is attached.
func (c *config) frame(g grid.Grid, pal grid.Palette) {
	if c.show == nil && c.png == "" {
		return
	}
	scale := c.scale
	if scale < 1 {
		scale = 1
	}
	c.last = g.Image(pal, scale)
	if c.show != nil {
		c.show(c.last)
	}
}

func writePNG(file string, img image.Image) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// runPlain feeds the program its inputs on demand and prints every
// output on its own line.
func (c *config) runPlain(ctx context.Context, p intcode.Program, inputs []int64, out io.Writer) error {
	m := intcode.NewMachine(p)
	var starved bool
	err := intcode.RunBudget(ctx, m, c.maxSteps, func(d *intcode.Driver, ev intcode.Event) (int64, bool) {
		if ev.Kind == intcode.OutputEvent {
			fmt.Fprintln(out, ev.Value)
			return 0, false
		}
		if len(inputs) == 0 {
			starved = true
			d.Abort()
			return 0, false
		}
		v := inputs[0]
		inputs = inputs[1:]
		return v, true
	})
	if err != nil {
		return err
	}
	if starved {
		return fmt.Errorf("%w at %d after %d steps", intcode.ErrNoInput, m.IP, m.Steps())
	}
	return nil
}

func (c *config) runGravity(p intcode.Program, inputs []int64, out io.Writer) error {
	if c.target != 0 {
		noun, verb, err := gravity.Search(p, c.target)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "noun %d verb %d: %d\n", noun, verb, 100*noun+verb)
		return nil
	}
	noun, verb := int64(12), int64(2)
	if len(inputs) == 2 {
		noun, verb = inputs[0], inputs[1]
	} else if len(inputs) != 0 {
		return fmt.Errorf("-in: want noun,verb")
	}
	v, err := gravity.Output(p, noun, verb)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, v)
	return nil
}

func (c *config) runAmp(ctx context.Context, p intcode.Program, phases []int64, out io.Writer) error {
	run := func(order []int64) (int64, error) { return amp.Series(p, order) }
	if c.feedback {
		run = func(order []int64) (int64, error) { return amp.Feedback(ctx, p, order) }
	}
	if phases == nil {
		phases = []int64{0, 1, 2, 3, 4}
		if c.feedback {
			phases = []int64{5, 6, 7, 8, 9}
		}
	}
	best, order, err := amp.Best(phases, run)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%d phases %v\n", best, order)
	return nil
}

func (c *config) runRobot(ctx context.Context, p intcode.Program, out io.Writer) error {
	start := robot.Black
	if c.white {
		start = robot.White
	}
	r := robot.New(start)
	if err := r.Run(ctx, p); err != nil {
		return err
	}
	c.frame(r.Hull, robot.Palette)
	fmt.Fprintf(out, "painted %d panels\n%s", r.Painted(), r.Render())
	return nil
}

func (c *config) runArcade(ctx context.Context, p intcode.Program, out io.Writer) error {
	if c.coins {
		p = arcade.FreePlay(p)
	}
	var j arcade.Joystick = arcade.AutoPilot{}
	if c.play {
		scr, err := tcell.NewScreen()
		if err != nil {
			return err
		}
		if err := scr.Init(); err != nil {
			return err
		}
		defer scr.Fini()
		pl := newPlayer(scr, playFrame)
		go pl.poll()
		j = pl
	}
	if c.show != nil {
		inner := j
		j = arcade.JoystickFunc(func(s *arcade.Screen) (int64, bool) {
			c.frame(s.Tiles, arcade.Palette)
			return inner.Tilt(s)
		})
	}
	s, err := arcade.Play(ctx, p, j)
	if err != nil {
		return err
	}
	c.frame(s.Tiles, arcade.Palette)
	fmt.Fprintf(out, "%s\nblocks %d score %d\n", s.Render(), s.Blocks(), s.Score)
	return nil
}

func (c *config) runDroid(ctx context.Context, p intcode.Program, out io.Writer) error {
	e := droid.NewExplorer()
	if err := e.Explore(ctx, p); err != nil {
		return err
	}
	c.frame(e.Map, droid.Palette)
	fmt.Fprint(out, e.Render())
	n, err := e.ShortestPath()
	if err != nil {
		return err
	}
	fill, err := e.FillTime()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "oxygen at %v: %d moves, fills in %d minutes\n", e.Oxygen, n, fill)
	return nil
}

func (c *config) runScaffold(ctx context.Context, p intcode.Program, out io.Writer) error {
	v, err := scaffold.Camera(p)
	if err != nil {
		return err
	}
	c.frame(v.Grid, grid.Palette{{0, 0, 0, 0xff}, {0xc0, 0xc0, 0xc0, 0xff}})
	fmt.Fprintf(out, "%salignment %d\n", v.Grid.Render(scaffoldGlyph), v.Alignment())
	path, err := v.Path()
	if err != nil {
		return err
	}
	r, err := scaffold.Compress(path)
	if err != nil {
		return fmt.Errorf("%v: %w", path, err)
	}
	input := r.Input(false)
	fmt.Fprintf(out, "path %v\n%s", path, input)
	dust, err := scaffold.Vacuum(ctx, p, input)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "dust %d\n", dust)
	return nil
}

func scaffoldGlyph(v int64) rune {
	if v == scaffold.Scaffold {
		return '#'
	}
	return '.'
}

func (c *config) runNetwork(ctx context.Context, p intcode.Program, out io.Writer) error {
	n := network.New(p, c.nodes)
	var (
		pk  network.Packet
		err error
	)
	if c.nat {
		pk, err = n.RepeatedWake(ctx)
	} else {
		pk, err = n.FirstNAT(ctx)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%v\n", pk)
	return nil
}
