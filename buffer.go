package linecraft

import "strings"

// appendBuffer accumulates escape sequences and text for one refresh so
// that a single write(2) reaches the terminal per redraw. Building the
// whole frame in memory before flushing is what keeps slow terminals
// (serial links, ssh) from visibly flickering mid-redraw.
type appendBuffer struct {
	b strings.Builder
}

func (a *appendBuffer) WriteString(s string) {
	a.b.WriteString(s)
}

func (a *appendBuffer) WriteByte(c byte) {
	a.b.WriteByte(c)
}

// Bytes returns the accumulated frame. The caller flushes it and the
// buffer is discarded; there is no framing.
func (a *appendBuffer) Bytes() []byte {
	return []byte(a.b.String())
}

func (a *appendBuffer) String() string {
	return a.b.String()
}

func (a *appendBuffer) Len() int {
	return a.b.Len()
}
