package linecraft

import "testing"

func TestASCIIWidth(t *testing.T) {
	wp := NewASCIIWidthProvider()
	if w := wp.RuneWidth('a'); w != 1 {
		t.Errorf("RuneWidth('a') = %d, want 1", w)
	}
	if w := wp.RuneWidth(0x07); w != 0 {
		t.Errorf("RuneWidth(BEL) = %d, want 0", w)
	}
	if w := wp.StringWidth("abc"); w != 3 {
		t.Errorf("StringWidth(abc) = %d, want 3", w)
	}
}

func TestRuneWidthProviderWide(t *testing.T) {
	wp := NewRuneWidthProvider()
	if w := wp.StringWidth("hello"); w != 5 {
		t.Errorf("StringWidth(hello) = %d, want 5", w)
	}
	// a fullwidth CJK character occupies two display columns.
	if w := wp.RuneWidth('한'); w != 2 {
		t.Errorf("RuneWidth('한') = %d, want 2", w)
	}
}

func TestUniwidthProviderWide(t *testing.T) {
	wp := NewUniwidthProvider()
	if w := wp.StringWidth("hello"); w != 5 {
		t.Errorf("StringWidth(hello) = %d, want 5", w)
	}
	// a fullwidth CJK character occupies two display columns under
	// uniwidth too, so an editor switched over via SetWidthProvider
	// keeps agreeing with a uniwidth-based terminal model.
	if w := wp.RuneWidth('한'); w != 2 {
		t.Errorf("RuneWidth('한') = %d, want 2", w)
	}
}

func TestSetWidthProviderSwitchesImplementation(t *testing.T) {
	e := &Editor{wp: NewRuneWidthProvider()}
	e.SetWidthProvider(NewUniwidthProvider())
	if _, ok := e.wp.(uniwidthProvider); !ok {
		t.Errorf("SetWidthProvider did not install the uniwidth provider, got %T", e.wp)
	}
}

func TestDisplayWidthSkipsCSI(t *testing.T) {
	wp := NewRuneWidthProvider()
	s := "\x1b[1;32mprompt>\x1b[0m "
	got := displayWidth(s, wp)
	want := wp.StringWidth("prompt> ")
	if got != want {
		t.Errorf("displayWidth = %d, want %d", got, want)
	}
}
