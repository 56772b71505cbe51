package linecraft

import "github.com/unilibs/uniwidth"

// uniwidthProvider is an alternate WidthProvider backed by
// github.com/unilibs/uniwidth, the width library used by the pack's
// go-headless-term terminal emulator. A caller that is already rendering
// into a uniwidth-based terminal model can install this provider so the
// line editor's own column math agrees with the screen it is drawn on.
type uniwidthProvider struct{}

func (uniwidthProvider) RuneWidth(r rune) int {
	return uniwidth.RuneWidth(r)
}

func (uniwidthProvider) StringWidth(s string) int {
	return uniwidth.StringWidth(s)
}

// NewUniwidthProvider returns the uniwidth backed WidthProvider.
func NewUniwidthProvider() WidthProvider { return uniwidthProvider{} }
