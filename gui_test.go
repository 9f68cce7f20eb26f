package main

import (
	"image"
	"testing"
)

func TestFit(t *testing.T) {
	for _, c := range []struct {
		dst, src, want image.Rectangle
	}{
		{image.Rect(0, 0, 100, 100), image.Rect(0, 0, 10, 10), image.Rect(0, 0, 100, 100)},
		{image.Rect(0, 0, 200, 100), image.Rect(0, 0, 10, 10), image.Rect(50, 0, 150, 100)},
		{image.Rect(0, 0, 100, 200), image.Rect(0, 0, 20, 10), image.Rect(0, 75, 100, 125)},
		{image.Rect(0, 0, 100, 100), image.Rectangle{}, image.Rect(0, 0, 100, 100)},
	} {
		if got := fit(c.dst, c.src); got != c.want {
			t.Errorf("fit(%v, %v) = %v, want %v", c.dst, c.src, got, c.want)
		}
	}
}

func TestViewerShow(t *testing.T) {
	v := newViewer("test")
	a := image.NewRGBA(image.Rect(0, 0, 1, 1))
	b := image.NewRGBA(image.Rect(0, 0, 2, 2))
	v.Show(a)
	v.Show(b)
	if got := <-v.frames; got != b {
		t.Errorf("pending frame is %v, want the latest", got.Bounds())
	}

	close(v.closed)
	v.Show(a)
	v.Show(b)
}
