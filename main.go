// Command intcode runs Intcode programs, either on their own or attached
// to one of the devices they were written for.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/pprof"
	"strings"

	"github.com/pkg/errors"

	"github.com/nf/intcode/intcode"
)

func main() {
	log.SetPrefix("intcode: ")
	log.SetFlags(0)

	var (
		cfg = config{stdin: os.Stdin}

		devFlag   = flag.Bool("dev", false, "enable developer mode (re-run the program whenever its file changes)")
		debugFlag = flag.Bool("debug", false, "run the program in the debugger")
		guiFlag   = flag.Bool("gui", false, "show grid output in a window")
		symFlag   = flag.String("sym", "", "debugger label `file` (default <program>.sym)")

		cpuProfileFlag = flag.String("cpu_profile", "", "write CPU profile to `file`")
	)
	flag.StringVar(&cfg.mode, "mode", "run", "`device` to attach: "+strings.Join(modes, ", "))
	flag.StringVar(&cfg.in, "in", "", "comma separated `values` to input (run), noun,verb (gravity) or phases (amp)")
	flag.StringVar(&cfg.png, "png", "", "write the final grid image to `file`")
	flag.IntVar(&cfg.scale, "scale", 8, "image pixels per grid tile")
	flag.Int64Var(&cfg.maxSteps, "max_steps", 0, "stop run and ascii modes after `n` instructions (0 means no limit)")
	flag.BoolVar(&cfg.white, "white", false, "robot: start on a white panel")
	flag.BoolVar(&cfg.coins, "coins", false, "arcade: set free play")
	flag.BoolVar(&cfg.play, "play", false, "arcade: play with the keyboard")
	flag.BoolVar(&cfg.feedback, "feedback", false, "amp: connect the amplifiers in a feedback loop")
	flag.BoolVar(&cfg.nat, "nat", false, "network: run until the NAT delivers the same Y twice")
	flag.IntVar(&cfg.nodes, "nodes", 50, "network: number of computers")
	flag.Int64Var(&cfg.target, "target", 0, "gravity: search for the noun and verb that produce `value`")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-mode device] [flags] <program>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s -debug [-dev] [-sym file] <program>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
	}
	progFile := flag.Arg(0)

	if *debugFlag {
		symFile := *symFlag
		if symFile == "" {
			symFile = progFile + ".sym"
		}
		if err := runDebugger(progFile, symFile, *devFlag); err != nil {
			log.Fatal(err)
		}
		return
	}
	if *devFlag {
		err := devMode(progFile, func(ctx context.Context, p intcode.Program) error {
			return cfg.run(ctx, p, os.Stdout)
		})
		log.Fatal(err)
	}

	var cpuProfile io.Closer
	if prof := *cpuProfileFlag; prof != "" {
		f, err := os.Create(prof)
		if err != nil {
			log.Fatalf("creating CPU profile file: %v", err)
		}
		pprof.StartCPUProfile(f)
		cpuProfile = f
	}

	err := run(progFile, &cfg, *guiFlag)

	if f := cpuProfile; f != nil {
		pprof.StopCPUProfile()
		f.Close()
	}

	if err != nil {
		log.Fatal(err)
	}
}

func run(progFile string, cfg *config, gui bool) error {
	p, err := intcode.Load(progFile)
	if err != nil {
		return err
	}
	if !gui {
		return cfg.run(context.Background(), p, os.Stdout)
	}

	// The window must be driven from the main goroutine, so the program
	// runs alongside it until it finishes or the window is closed.
	v := newViewer("intcode " + cfg.mode)
	cfg.show = v.Show
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		err := cfg.run(ctx, p, os.Stdout)
		if err == nil {
			log.Print("done; close the window to exit")
		}
		done <- err
	}()
	go func() {
		<-v.Closed()
		cancel()
	}()
	if err := v.Run(nil); err != nil {
		return err
	}
	cancel()
	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
