package linecraft

import "github.com/mattn/go-runewidth"

// WidthProvider is the multi-byte character-width plug-in point. New and
// NewFd install the go-runewidth provider (NewRuneWidthProvider); an
// Editor does not start with a one-column-per-rune provider. That one is
// available via NewASCIIWidthProvider, and NewUniwidthProvider is a
// further alternative; install either with SetWidthProvider.
type WidthProvider interface {
	// RuneWidth returns the number of terminal columns occupied by r.
	RuneWidth(r rune) int
	// StringWidth returns the total column width of s.
	StringWidth(s string) int
}

// asciiWidth is the one-column-per-rune provider (control runes below
// 0x20 count as zero columns).
type asciiWidth struct{}

func (asciiWidth) RuneWidth(r rune) int {
	if r < 0x20 {
		return 0
	}
	return 1
}

func (asciiWidth) StringWidth(s string) int {
	n := 0
	for _, r := range s {
		n += asciiWidth{}.RuneWidth(r)
	}
	return n
}

// runeWidthProvider wraps github.com/mattn/go-runewidth. It is the
// default provider installed by New.
type runeWidthProvider struct{}

func (runeWidthProvider) RuneWidth(r rune) int {
	return runewidth.RuneWidth(r)
}

func (runeWidthProvider) StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// NewRuneWidthProvider returns the go-runewidth backed WidthProvider.
func NewRuneWidthProvider() WidthProvider { return runeWidthProvider{} }

// NewASCIIWidthProvider returns the trivial one-column-per-rune provider.
func NewASCIIWidthProvider() WidthProvider { return asciiWidth{} }
