package profile

import (
	"slices"
	"testing"
)

func TestMake(t *testing.T) {
	mode, path, quiet := Make()()
	if mode != "" || path != "" || quiet {
		t.Errorf("Make() = (%q, %q, %v), want zero", mode, path, quiet)
	}

	c := Make(WithMode("cpu"), WithPath("/tmp/p"), WithQuiet(true), WithMode("heap"))

	mode, path, quiet = c()
	if mode != "heap" || path != "/tmp/p" || !quiet {
		t.Errorf("Make(...) = (%q, %q, %v)", mode, path, quiet)
	}
}

func TestStart_NoMode(t *testing.T) {
	p := Make(WithPath(t.TempDir())).Start()
	if _, ok := p.(ignore); !ok {
		t.Errorf("Start() = %T, want no-op", p)
	}

	p.Stop()
}

func TestStart_UnknownMode(t *testing.T) {
	p := Make(WithMode("bogus"), WithPath(t.TempDir()), WithQuiet(true)).Start()
	if _, ok := p.(ignore); !ok {
		t.Errorf("Start() = %T, want no-op", p)
	}

	p.Stop()
}

func TestModes_Sorted(t *testing.T) {
	modes := slices.Collect(Modes())
	if !slices.IsSorted(modes) {
		t.Errorf("Modes() = %v, not sorted", modes)
	}

	if slices.Contains(modes, "quiet") {
		t.Error("Modes() lists quiet")
	}
}
