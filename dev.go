package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/howeyc/fsnotify"

	"github.com/nf/intcode/intcode"
)

// reloadDelay is how long the program file must be quiet before it is
// loaded again.
const reloadDelay = 100 * time.Millisecond

// progWatcher reloads a program file whenever it changes.
type progWatcher struct {
	file string
	w    *fsnotify.Watcher
}

func watchProgram(progFile string) (*progWatcher, error) {
	progFile = filepath.Clean(progFile)
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Editors often replace the file, so watch its directory.
	if err := w.Watch(filepath.Dir(progFile)); err != nil {
		w.Close()
		return nil, err
	}
	return &progWatcher{file: progFile, w: w}, nil
}

// Run calls load with the parsed program each time the file changes,
// until ctx is done. Programs that fail to parse are logged and skipped.
func (pw *progWatcher) Run(ctx context.Context, load func(intcode.Program)) error {
	defer pw.w.Close()
	var reload <-chan time.Time
	for {
		select {
		case <-reload:
			p, err := intcode.Load(pw.file)
			if err != nil {
				log.Printf("dev: %v", err)
				break
			}
			log.Printf("dev: reload %s", filepath.Base(pw.file))
			load(p)
		case ev := <-pw.w.Event:
			if filepath.Clean(ev.Name) == pw.file && !ev.IsAttrib() {
				reload = time.After(reloadDelay)
			}
		case err := <-pw.w.Error:
			log.Printf("dev: watcher: %v", err)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// devMode runs the program in progFile with run, restarting it each time
// the file changes.
func devMode(progFile string, run func(context.Context, intcode.Program) error) error {
	p, err := intcode.Load(progFile)
	if err != nil {
		return err
	}
	pw, err := watchProgram(progFile)
	if err != nil {
		return err
	}
	var (
		cancel = func() {}
		done   chan bool
	)
	start := func(p intcode.Program) {
		cancel()
		if done != nil {
			<-done
		}
		var ctx context.Context
		ctx, cancel = context.WithCancel(context.Background())
		done = make(chan bool)
		go func(done chan bool) {
			defer close(done)
			log.Printf("dev: start")
			if err := run(ctx, p); err != nil && ctx.Err() == nil {
				log.Printf("dev: %v", err)
				return
			}
			log.Printf("dev: done")
		}(done)
	}
	start(p)
	return pw.Run(context.Background(), start)
}

// runDebugger runs the program in progFile under the debugger, reloading
// it when the file changes if dev is set.
func runDebugger(progFile, symFile string, dev bool) error {
	p, err := intcode.Load(progFile)
	if err != nil {
		return err
	}
	syms, err := loadSymbols(symFile)
	if err != nil {
		return err
	}
	var pw *progWatcher
	if dev {
		if pw, err = watchProgram(progFile); err != nil {
			return err
		}
	}

	d := newDebugger()
	d.setSymbols(syms)
	d.s = newSession(p, d.StateFunc, d.Output)

	log.SetPrefix("")
	log.SetOutput(d.log)
	defer func() {
		log.SetOutput(os.Stderr)
		log.SetPrefix("intcode: ")
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.s.Run(ctx)
	if pw != nil {
		go pw.Run(ctx, func(p intcode.Program) {
			if syms, err := loadSymbols(symFile); err != nil {
				log.Printf("dev: reading symbols: %v", err)
			} else {
				d.setSymbols(syms)
			}
			d.s.Swap(p)
		})
	}
	return d.Run()
}
