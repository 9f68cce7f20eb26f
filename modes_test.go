package main

import (
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/nf/intcode/droid"
	"github.com/nf/intcode/intcode"
)

func TestModes(t *testing.T) {
	for _, c := range []struct {
		name string
		cfg  config
		prog string
		want string
	}{
		{"run", config{mode: "run", in: "7"}, "3,0,4,0,99", "7\n"},
		{"run quine", config{mode: "run"}, "109,1,204,-1,1001,100,1,100,1008,100,16,101,1006,101,0,99",
			"109\n1\n204\n-1\n1001\n100\n1\n100\n1008\n100\n16\n101\n1006\n101\n0\n99\n"},
		{"ascii", config{mode: "ascii", stdin: strings.NewReader("ok.")}, shoutProg.String(), "ok"},
		{"gravity", config{mode: "gravity", in: "5,6"}, "1,0,0,0,99,7,11,13", "18\n"},
		{"gravity search", config{mode: "gravity", target: 20}, "1,0,0,0,99,7,11,13", "noun 2 verb 7: 207\n"},
		{"amp", config{mode: "amp"}, "3,15,3,16,1002,16,10,16,1,16,15,15,4,15,99,0,0", "43210 phases [4 3 2 1 0]\n"},
		{"amp feedback", config{mode: "amp", feedback: true},
			"3,26,1001,26,-4,26,3,27,1002,27,2,27,1,27,26,27,4,27,1001,28,-1,28,1005,28,6,99,0,0,5",
			"139629729 phases [9 8 7 6 5]\n"},
		{"robot", config{mode: "robot"}, "3,100,104,1,104,0,99", "painted 1 panels\n#\n"},
		{"arcade", config{mode: "arcade"}, "104,0,104,0,104,1,104,1,104,0,104,2,104,-1,104,0,104,5,99",
			"score 5\n#=\n\nblocks 1 score 5\n"},
		{"network", config{mode: "network", nodes: 50}, "3,100,104,255,4,100,104,42,3,101,1105,1,8", ",42)\n"},
	} {
		t.Run(c.name, func(t *testing.T) {
			p, err := intcode.Parse(c.prog)
			if err != nil {
				t.Fatal(err)
			}
			var out strings.Builder
			if err := c.cfg.run(context.Background(), p, &out); err != nil {
				t.Fatal(err)
			}
			if !strings.HasSuffix(out.String(), c.want) {
				t.Errorf("output\n%q\nwant\n%q", out.String(), c.want)
			}
		})
	}
}

func TestModeErrors(t *testing.T) {
	for _, c := range []struct {
		name string
		cfg  config
		prog intcode.Program
		err  error
	}{
		{"starved", config{mode: "run", in: "1"}, intcode.Program{3, 0, 3, 0, 99}, intcode.ErrNoInput},
		{"budget", config{mode: "run", maxSteps: 10}, intcode.Program{1105, 1, 0}, intcode.ErrBudget},
		{"fault", config{mode: "run"}, intcode.Program{11101, 1, 1, 1}, intcode.AttemptedImmediateWrite},
		{"no oxygen", config{mode: "droid"}, intcode.Program{3, 100, 104, 0, 1105, 1, 0}, droid.ErrNoOxygen},
	} {
		t.Run(c.name, func(t *testing.T) {
			err := c.cfg.run(context.Background(), c.prog, &strings.Builder{})
			if !errors.Is(err, c.err) {
				t.Errorf("error = %v, want %v", err, c.err)
			}
		})
	}

	for _, cfg := range []config{{mode: "bogus"}, {mode: "run", in: "1,x"}, {mode: "gravity", in: "1"}} {
		if err := cfg.run(context.Background(), intcode.Program{99}, &strings.Builder{}); err == nil {
			t.Errorf("%+v succeeded", cfg)
		}
	}
}

func TestModePNG(t *testing.T) {
	file := filepath.Join(t.TempDir(), "hull.png")
	cfg := config{mode: "robot", png: file, scale: 4}
	if err := cfg.run(context.Background(), intcode.Program{3, 100, 104, 1, 104, 0, 99}, &strings.Builder{}); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(file)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 4 {
		t.Errorf("image is %v, want 4x4", b)
	}
}
