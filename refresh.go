package linecraft

import (
	"fmt"
)

// Hint carries optional inline completion-hint text drawn to the right
// of the cursor, in the dim/colored style of a shell's autosuggestion.
type Hint struct {
	Hint  string
	Color int
	Bold  bool
}

// HintsCallback returns a Hint for the current buffer, or nil for none.
type HintsCallback func(buf string) *Hint

// isCSIFinal reports whether r ends the small subset of ANSI CSI
// sequences the width scanner recognizes and skips (cursor/erase plus
// SGR); a prompt may carry its own SGR coloring, which the width
// calculator needs to skip over rather than count as visible columns.
func isCSIFinal(r rune) bool {
	switch r {
	case 'A', 'B', 'C', 'D', 'E', 'F', 'G', 'H', 'J', 'K', 'S', 'T', 'f', 'm':
		return true
	}
	return false
}

// displayWidth measures the visible column width of s, skipping ANSI CSI
// sequences entirely so a colored prompt still lines up the cursor.
func displayWidth(s string, wp WidthProvider) int {
	rs := []rune(s)
	width := 0
	i := 0
	for i < len(rs) {
		if rs[i] == 0x1b && i+1 < len(rs) && rs[i+1] == '[' {
			j := i + 2
			for j < len(rs) && !isCSIFinal(rs[j]) {
				j++
			}
			if j < len(rs) {
				j++
			}
			i = j
			continue
		}
		width += wp.RuneWidth(rs[i])
		i++
	}
	return width
}

// effectivePrompt returns tempPrompt when set (reverse-i-search), else
// the regular prompt; the temporary prompt always supersedes the normal one.
func (e *Editor) effectivePrompt() string {
	if e.tempPrompt != "" {
		return e.tempPrompt
	}
	return e.prompt
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}

// refreshHints returns the append-buffer pieces for the hint text shown
// to the right of the cursor, or nil if there is no room or no hint.
func (e *Editor) refreshHints(promptWidth int) []string {
	if e.hintsCallback == nil {
		return nil
	}
	hintCols := e.cols - promptWidth - e.wp.StringWidth(string(e.buf))
	if hintCols <= 0 {
		return nil
	}
	h := e.hintsCallback(string(e.buf))
	if h == nil || len(h.Hint) == 0 {
		return nil
	}
	text := h.Hint
	for e.wp.StringWidth(text) > hintCols {
		text = text[:len(text)-1]
	}
	var seq []string
	if h.Color >= 0 || h.Bold {
		seq = append(seq, fmt.Sprintf("\033[%d;%d;49m", btoi(h.Bold), h.Color))
	}
	seq = append(seq, text)
	if h.Color >= 0 || h.Bold {
		seq = append(seq, "\033[0m")
	}
	return seq
}

// refreshSingleline redraws the buffer as a single horizontally
// scrolling line, keeping the cursor's column in view.
func (e *Editor) refreshSingleline() {
	prompt := e.effectivePrompt()
	promptWidth := displayWidth(prompt, e.wp)
	bStart, bEnd := 0, len(e.buf)

	posWidth := e.wp.StringWidth(string(e.buf[:e.pos]))
	for promptWidth+posWidth >= e.cols {
		bStart++
		posWidth = e.wp.StringWidth(string(e.buf[bStart:e.pos]))
	}
	bufWidth := e.wp.StringWidth(string(e.buf[bStart:bEnd]))
	for promptWidth+bufWidth >= e.cols {
		bEnd--
		bufWidth = e.wp.StringWidth(string(e.buf[bStart:bEnd]))
	}

	var ab appendBuffer
	ab.WriteString("\r")
	ab.WriteString(prompt)
	ab.WriteString(string(e.buf[bStart:bEnd]))
	for _, s := range e.refreshHints(promptWidth) {
		ab.WriteString(s)
	}
	ab.WriteString("\x1b[0K")
	ab.WriteString(fmt.Sprintf("\r\x1b[%dC", promptWidth+posWidth))

	writeAll(e.ofd, ab.String())
	e.isDisplayed = true
	e.needsRefresh = false
}

// refreshMultiline redraws the buffer wrapped across as many terminal
// rows as it needs, including the right-edge wrap quirk where a buffer
// that exactly fills the last column needs an extra blank row reserved
// for the cursor.
func (e *Editor) refreshMultiline() {
	prompt := e.effectivePrompt()
	promptWidth := displayWidth(prompt, e.wp)
	bufWidth := e.wp.StringWidth(string(e.buf))
	oldRows := e.maxRows
	rpos := (promptWidth + e.oldColPos + e.cols) / e.cols
	rows := (promptWidth + bufWidth + e.cols - 1) / e.cols
	if rows > e.maxRows {
		e.maxRows = rows
	}

	var ab appendBuffer
	if oldRows-rpos > 0 {
		ab.WriteString(fmt.Sprintf("\x1b[%dB", oldRows-rpos))
	}
	for j := 0; j < oldRows-1; j++ {
		ab.WriteString("\r\x1b[0K\x1b[1A")
	}
	ab.WriteString("\r\x1b[0K")
	ab.WriteString(prompt)
	ab.WriteString(string(e.buf))
	for _, s := range e.refreshHints(promptWidth) {
		ab.WriteString(s)
	}
	if e.pos != 0 && e.pos == len(e.buf) && (displayWidth(string(e.buf), e.wp)+promptWidth)%e.cols == 0 {
		ab.WriteString("\n\r")
		rows++
		if rows > e.maxRows {
			e.maxRows = rows
		}
	}
	rpos2 := (promptWidth + e.wp.StringWidth(string(e.buf[:e.pos])) + e.cols) / e.cols
	if rows-rpos2 > 0 {
		ab.WriteString(fmt.Sprintf("\x1b[%dA", rows-rpos2))
	}
	col := (promptWidth + e.wp.StringWidth(string(e.buf[:e.pos]))) % e.cols
	if col != 0 {
		ab.WriteString(fmt.Sprintf("\r\x1b[%dC", col))
	} else {
		ab.WriteString("\r")
	}
	e.oldColPos = e.wp.StringWidth(string(e.buf[:e.pos]))
	e.oldRowPos = rpos2

	writeAll(e.ofd, ab.String())
	e.isDisplayed = true
	e.needsRefresh = false
}

// refreshLine dispatches to single- or multi-line redraw per the
// editor's current mode, and refreshes cols first if a resize was seen.
func (e *Editor) refreshLine() {
	if e.decNeedsResize() {
		e.cols = getColumns(e.ifd, e.ofd)
	}
	if e.multiline {
		e.refreshMultiline()
	} else {
		e.refreshSingleline()
	}
}

func (e *Editor) decNeedsResize() bool {
	if e.dec.needsWinch.get() {
		e.dec.needsWinch.set(false)
		return true
	}
	return false
}

func (e *Editor) beep() {
	beep(e.ofd)
}
