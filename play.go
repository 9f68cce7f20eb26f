package main

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/nf/intcode/arcade"
)

var tileStyle = map[int64]tcell.Style{
	arcade.Wall:   tcell.StyleDefault.Foreground(tcell.ColorGray),
	arcade.Block:  tcell.StyleDefault.Foreground(tcell.ColorOrange),
	arcade.Paddle: tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true),
	arcade.Ball:   tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true),
}

// player is an arcade.Joystick driven from the keyboard. It draws each
// frame to a terminal screen and waits up to frame for a key: the left
// and right arrows tilt the joystick, a toggles the autopilot and Esc
// quits. With no key the joystick stays neutral.
type player struct {
	scr    tcell.Screen
	frame  time.Duration
	events chan tcell.Event
	auto   bool
}

func newPlayer(scr tcell.Screen, frame time.Duration) *player {
	return &player{scr: scr, frame: frame, events: make(chan tcell.Event, 16)}
}

// poll forwards screen events to the player until the screen is finalized.
func (p *player) poll() {
	for {
		ev := p.scr.PollEvent()
		if ev == nil {
			return
		}
		p.events <- ev
	}
}

func (p *player) Tilt(s *arcade.Screen) (int64, bool) {
	p.draw(s)
	timeout := time.After(p.frame)
	for {
		select {
		case ev := <-p.events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				p.scr.Sync()
				p.draw(s)
			case *tcell.EventKey:
				switch ev.Key() {
				case tcell.KeyEscape, tcell.KeyCtrlC:
					return 0, false
				case tcell.KeyLeft:
					return arcade.Left, true
				case tcell.KeyRight:
					return arcade.Right, true
				case tcell.KeyRune:
					if ev.Rune() == 'a' {
						p.auto = !p.auto
					}
				}
			}
		case <-timeout:
			if p.auto {
				return arcade.AutoPilot{}.Tilt(s)
			}
			return arcade.Neutral, true
		}
	}
}

func (p *player) draw(s *arcade.Screen) {
	p.scr.Clear()
	status := fmt.Sprintf("score %d  blocks %d", s.Score, s.Blocks())
	if p.auto {
		status += "  [auto]"
	}
	for i, r := range status {
		p.scr.SetContent(i, 0, r, nil, tcell.StyleDefault)
	}
	r := s.Tiles.Bounds()
	for pt, t := range s.Tiles {
		if t == arcade.Empty || t < 0 || t >= int64(len(arcade.Glyphs)) {
			continue
		}
		p.scr.SetContent(pt.X-r.Min.X, pt.Y-r.Min.Y+1, arcade.Glyphs[t], nil, tileStyle[t])
	}
	p.scr.Show()
}
