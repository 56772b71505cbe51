package linecraft

import "testing"

func TestEffectivePrompt(t *testing.T) {
	e := newTestEditor(t)
	e.prompt = "> "
	if got := e.effectivePrompt(); got != "> " {
		t.Errorf("effectivePrompt = %q, want %q", got, "> ")
	}
	e.tempPrompt = "(reverse-i-search`x'): "
	if got := e.effectivePrompt(); got != e.tempPrompt {
		t.Errorf("effectivePrompt should prefer tempPrompt, got %q", got)
	}
}

func TestIsCSIFinal(t *testing.T) {
	for _, r := range []rune{'A', 'm', 'K', 'H'} {
		if !isCSIFinal(r) {
			t.Errorf("isCSIFinal(%q) = false, want true", r)
		}
	}
	for _, r := range []rune{'1', ';', '['} {
		if isCSIFinal(r) {
			t.Errorf("isCSIFinal(%q) = true, want false", r)
		}
	}
}

func TestRefreshLineMarksDisplayed(t *testing.T) {
	e := newTestEditor(t)
	e.prompt = "> "
	e.setBuf("hello")
	e.isDisplayed = false
	e.refreshLine()
	if !e.isDisplayed {
		t.Error("expected isDisplayed to be set after refreshLine")
	}
	if e.needsRefresh {
		t.Error("expected needsRefresh to be cleared after refreshLine")
	}
}

func TestRefreshLineMultiline(t *testing.T) {
	e := newTestEditor(t)
	e.multiline = true
	e.prompt = "> "
	e.cols = 10
	e.setBuf("a line that is longer than ten columns")
	e.refreshLine()
	if e.maxRows < 2 {
		t.Errorf("maxRows = %d, want at least 2 for a wrapped line", e.maxRows)
	}
}

func TestDecNeedsResizeConsumesFlag(t *testing.T) {
	e := newTestEditor(t)
	e.dec.needsWinch.set(true)
	if !e.decNeedsResize() {
		t.Error("expected decNeedsResize to report true once")
	}
	if e.decNeedsResize() {
		t.Error("decNeedsResize should only fire once per resize")
	}
}
