package gravity

import (
	"errors"
	"testing"

	"github.com/nf/intcode/intcode"
)

func TestOutput(t *testing.T) {
	p, err := intcode.Parse("1,0,0,0,99,7,11,13")
	if err != nil {
		t.Fatal(err)
	}
	v, err := Output(p, 5, 6)
	if err != nil {
		t.Fatal(err)
	}
	if v != 18 {
		t.Errorf("Output(5, 6) = %d, want 18", v)
	}
	if p[1] != 0 || p[2] != 0 {
		t.Errorf("Output modified the program: %v", p)
	}
}

func TestSearch(t *testing.T) {
	p, err := intcode.Parse("1,0,0,0,99,7,11,13")
	if err != nil {
		t.Fatal(err)
	}
	noun, verb, err := Search(p, 20)
	if err != nil {
		t.Fatal(err)
	}
	if noun != 2 || verb != 7 {
		t.Errorf("Search(20) = %d, %d; want 2, 7", noun, verb)
	}
	if _, _, err := Search(p, 1000000); !errors.Is(err, ErrNotFound) {
		t.Errorf("Search(1000000) error = %v, want %v", err, ErrNotFound)
	}
}

func TestOutputFault(t *testing.T) {
	p, err := intcode.Parse("1,0,0,0,42")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Output(p, 0, 0); !errors.Is(err, intcode.InvalidOpcode) {
		t.Errorf("Output error = %v, want %v", err, intcode.InvalidOpcode)
	}
}
