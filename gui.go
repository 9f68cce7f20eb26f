package main

import (
	"image"
	"image/draw"
	"log"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
)

// viewer shows the most recent frame sent to Show in a window.
type viewer struct {
	title  string
	frames chan *image.RGBA
	closed chan bool

	tex   screen.Texture
	buf   screen.Buffer
	dirty bool
}

func newViewer(title string) *viewer {
	return &viewer{
		title:  title,
		frames: make(chan *image.RGBA, 1),
		closed: make(chan bool),
	}
}

// Show replaces the frame waiting to be drawn with img. It never blocks,
// so frames are dropped when the program runs faster than the display.
func (v *viewer) Show(img *image.RGBA) {
	for {
		select {
		case v.frames <- img:
			return
		case <-v.frames:
		case <-v.closed:
			return
		}
	}
}

// Closed is closed when the window goes away.
func (v *viewer) Closed() <-chan bool { return v.closed }

// Run drives the window until exit is closed or the window is closed.
// It must be called from the main goroutine.
func (v *viewer) Run(exit <-chan bool) error {
	defer close(v.closed)
	driver.Main(func(s screen.Screen) {
		w, err := s.NewWindow(&screen.NewWindowOptions{Title: v.title})
		if err != nil {
			log.Fatal(err)
		}
		defer w.Release()
		defer v.release()

		type update struct{}
		done := make(chan bool)
		defer close(done)
		go func() {
			t := time.NewTicker(time.Second / 30)
			defer t.Stop()
			for {
				select {
				case <-t.C:
					w.Send(update{})
				case <-exit:
					w.Send(lifecycle.Event{To: lifecycle.StageDead})
					return
				case <-done:
					return
				}
			}
		}()

		var sz size.Event
		for {
			switch e := w.NextEvent().(type) {
			case size.Event:
				sz = e
				if sz.WidthPx+sz.HeightPx == 0 {
					return
				}
				v.dirty = true

			case lifecycle.Event:
				if e.To == lifecycle.StageDead {
					return
				}

			case key.Event:
				if e.Code == key.CodeEscape && e.Direction == key.DirPress {
					return
				}

			case paint.Event:
				v.dirty = true

			case update:
				select {
				case f := <-v.frames:
					if err := v.upload(s, f); err != nil {
						log.Printf("gui: %v", err)
						return
					}
				default:
				}
				if v.dirty && v.tex != nil {
					w.Fill(sz.Bounds(), image.Black, draw.Src)
					w.Scale(fit(sz.Bounds(), v.tex.Bounds()), v.tex, v.tex.Bounds(), draw.Src, nil)
					w.Publish()
					v.dirty = false
				}

			case error:
				log.Print(e)
			}
		}
	})
	return nil
}

func (v *viewer) upload(s screen.Screen, f *image.RGBA) (err error) {
	if sz := f.Bounds().Size(); v.tex == nil || v.tex.Size() != sz {
		v.release()
		if v.buf, err = s.NewBuffer(sz); err != nil {
			return err
		}
		if v.tex, err = s.NewTexture(sz); err != nil {
			return err
		}
	}
	draw.Draw(v.buf.RGBA(), v.buf.Bounds(), f, f.Bounds().Min, draw.Src)
	v.tex.Upload(image.Point{}, v.buf, v.buf.Bounds())
	v.dirty = true
	return nil
}

func (v *viewer) release() {
	if v.tex != nil {
		v.tex.Release()
		v.tex = nil
	}
	if v.buf != nil {
		v.buf.Release()
		v.buf = nil
	}
}

// fit returns the largest rectangle centred in dst with the aspect ratio
// of src.
func fit(dst, src image.Rectangle) image.Rectangle {
	dw, dh := dst.Dx(), dst.Dy()
	sw, sh := src.Dx(), src.Dy()
	if sw == 0 || sh == 0 || dw == 0 || dh == 0 {
		return dst
	}
	w, h := dw, dw*sh/sw
	if h > dh {
		w, h = dh*sw/sh, dh
	}
	min := dst.Min.Add(image.Pt((dw-w)/2, (dh-h)/2))
	return image.Rectangle{Min: min, Max: min.Add(image.Pt(w, h))}
}
