package linecraft

// This file implements the editor's in-place buffer mutations. Every
// operation works on the rune buffer and finishes with a refresh, except
// insert's single-line fast path below.

// String returns the current contents of the line being edited.
func (e *Editor) String() string {
	return string(e.buf)
}

func (e *Editor) setBuf(s string) {
	e.buf = []rune(s)
	e.pos = len(e.buf)
}

// insertRunes inserts rs at pos, advancing pos past the inserted text.
// If the insertion lands at the end of the buffer, fits in the current
// line, the line isn't in multiline mode and no hints callback is
// installed, it bypasses a full refresh and writes the new bytes directly.
func (e *Editor) insertRunes(rs []rune) {
	tail := append([]rune{}, e.buf[e.pos:]...)
	e.buf = append(e.buf[:e.pos], append(append([]rune{}, rs...), tail...)...)
	atEnd := e.pos == len(e.buf)-len(rs)
	e.pos += len(rs)
	if !e.multiline && atEnd && e.hintsCallback == nil {
		promptWidth := displayWidth(e.effectivePrompt(), e.wp)
		if promptWidth+e.wp.StringWidth(string(e.buf)) < e.cols {
			writeAll(e.ofd, string(rs))
			e.isDisplayed = true
			e.needsRefresh = false
			return
		}
	}
	e.refreshLine()
}

// MoveLeft moves the cursor one character left.
func (e *Editor) MoveLeft() {
	if e.pos > 0 {
		e.pos--
		e.refreshLine()
	}
}

// MoveRight moves the cursor one character right.
func (e *Editor) MoveRight() {
	if e.pos != len(e.buf) {
		e.pos++
		e.refreshLine()
	}
}

// MoveHome moves the cursor to the start of the line.
func (e *Editor) MoveHome() {
	if e.pos > 0 {
		e.pos = 0
		e.refreshLine()
	}
}

// MoveEnd moves the cursor to the end of the line.
func (e *Editor) MoveEnd() {
	if e.pos != len(e.buf) {
		e.pos = len(e.buf)
		e.refreshLine()
	}
}

// Backspace removes the character to the left of the cursor.
func (e *Editor) Backspace() {
	if e.pos > 0 && len(e.buf) > 0 {
		e.buf = append(e.buf[:e.pos-1], e.buf[e.pos:]...)
		e.pos--
		e.refreshLine()
	}
}

// Delete removes the character at the cursor.
func (e *Editor) Delete() {
	if len(e.buf) > 0 && e.pos < len(e.buf) {
		e.buf = append(e.buf[:e.pos], e.buf[e.pos+1:]...)
		e.refreshLine()
	}
}

// KillLine clears the entire buffer (CTRL_U).
func (e *Editor) KillLine() {
	e.buf = nil
	e.pos = 0
	e.refreshLine()
}

// KillToEnd truncates the buffer at the cursor (CTRL_K).
func (e *Editor) KillToEnd() {
	e.buf = e.buf[:e.pos]
	e.refreshLine()
}

// Transpose swaps the character at pos-1 with the one at pos (CTRL_T).
// Only active if 0 < pos < len.
func (e *Editor) Transpose() {
	if e.pos > 0 && e.pos < len(e.buf) {
		e.buf[e.pos-1], e.buf[e.pos] = e.buf[e.pos], e.buf[e.pos-1]
		if e.pos != len(e.buf)-1 {
			e.pos++
		}
		e.refreshLine()
	}
}

// DeletePrevWord deletes back to the preceding space (CTRL_W). Space is
// the only word separator.
func (e *Editor) DeletePrevWord() {
	oldPos := e.pos
	for e.pos > 0 && e.buf[e.pos-1] == ' ' {
		e.pos--
	}
	for e.pos > 0 && e.buf[e.pos-1] != ' ' {
		e.pos--
	}
	e.buf = append(e.buf[:e.pos], e.buf[oldPos:]...)
	e.refreshLine()
}

// ClearScreen implements CTRL_L: clear the terminal, reset the
// multi-line row high-water mark, and redraw.
func (e *Editor) ClearScreen() {
	writeAll(e.ofd, clearScreenSeq())
	e.maxRows = 0
	e.oldRowPos = 0
	e.oldColPos = 0
	e.refreshLine()
}
