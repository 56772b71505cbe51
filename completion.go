package linecraft

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Candidate is one completion option.
type Candidate struct {
	// Suggestion is the partial-word text used for common-prefix
	// computation, for the candidate grid, and as the text written at the
	// anchor during rotation.
	Suggestion string
	// CompletedText is the full line to install when this candidate is
	// the only one (the single-candidate case).
	CompletedText string
	// CaretPos is where the cursor lands after CompletedText is
	// installed.
	CaretPos int
}

// CompletionSet accumulates the candidates produced by one invocation of
// the completion callback.
type CompletionSet struct {
	Candidates []Candidate
	MaxStrlen  int

	displayed bool
	rotIdx    int
	anchor    int // byte offset in buf where the inserted suffix begins
}

// AddCompletion appends one candidate.
func (cs *CompletionSet) AddCompletion(suggestion, completedText string, caretPos int) {
	cs.Candidates = append(cs.Candidates, Candidate{suggestion, completedText, caretPos})
	if w := runewidth.StringWidth(suggestion); w > cs.MaxStrlen {
		cs.MaxStrlen = w
	}
}

func (cs *CompletionSet) sortLex() {
	sort.Slice(cs.Candidates, func(i, j int) bool {
		return cs.Candidates[i].Suggestion < cs.Candidates[j].Suggestion
	})
}

// CompletionCallback is invoked with the current buffer and cursor
// position; it populates out via out.AddCompletion.
type CompletionCallback func(buf string, pos int, out *CompletionSet)

// manyCandidatesThreshold is the candidate count at or above which the
// grid display asks for confirmation before printing.
const manyCandidatesThreshold = 100

// longestCommonPrefix returns the longest common prefix of every
// candidate's Suggestion field.
func longestCommonPrefix(cands []Candidate) string {
	if len(cands) == 0 {
		return ""
	}
	prefix := cands[0].Suggestion
	for _, c := range cands[1:] {
		prefix = commonPrefixOf(prefix, c.Suggestion)
		if prefix == "" {
			break
		}
	}
	return prefix
}

func commonPrefixOf(a, b string) string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return a[:i]
}

// longestMatchingSuffix returns the length of the longest suffix of
// preCursor that is also a prefix of commonPrefix, so a partially typed
// word isn't duplicated when the common prefix is inserted.
func longestMatchingSuffix(preCursor, commonPrefix string) int {
	max := len(preCursor)
	if len(commonPrefix) < max {
		max = len(commonPrefix)
	}
	for l := max; l > 0; l-- {
		if preCursor[len(preCursor)-l:] == commonPrefix[:l] {
			return l
		}
	}
	return 0
}

func padRight(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// startCompletion runs the completion callback and handles the
// 0/1/many-candidate branches. It returns true if completion entered
// multi-candidate mode and the editor should stay in ModeCompletion to
// observe the next key.
func (e *Editor) startCompletion() bool {
	if e.completionCallback == nil {
		return false
	}
	cs := &CompletionSet{}
	e.completionCallback(e.String(), e.pos, cs)
	if len(cs.Candidates) == 0 {
		e.beep()
		return false
	}
	cs.sortLex()
	if len(cs.Candidates) == 1 {
		e.applyCandidateLine(cs.Candidates[0])
		return false
	}
	prefix := longestCommonPrefix(cs.Candidates)
	preCursor := string(e.buf[:e.pos])
	matched := longestMatchingSuffix(preCursor, prefix)
	// anchor marks where the matched portion of the prefix begins, not
	// where the cursor currently sits, so a rotation later rebuilds the
	// buffer from the start of the matched text rather than duplicating
	// it ahead of the cursor.
	matchedRunes := len([]rune(preCursor[len(preCursor)-matched:]))
	cs.anchor = e.pos - matchedRunes
	suffix := prefix[matched:]
	if suffix != "" {
		e.insertRunes([]rune(suffix))
	}
	e.completion = cs
	return true
}

// applyCandidateLine installs a single chosen candidate as the whole
// buffer; a trailing space is appended unless the candidate looks like
// a directory (ends with '/').
func (e *Editor) applyCandidateLine(c Candidate) {
	e.setBuf(c.CompletedText)
	if c.CaretPos < len(e.buf) {
		e.pos = c.CaretPos
	} else {
		e.pos = len(e.buf)
	}
	if !strings.HasSuffix(c.CompletedText, "/") {
		atEnd := e.pos == len(e.buf)
		e.buf = append(e.buf, ' ')
		if atEnd {
			e.pos++
		}
	}
	e.refreshLine()
}

// driveCompletion handles every TAB seen while mode == ModeCompletion:
// the first one displays the grid (after an optional confirmation for
// large candidate sets), every subsequent one rotates to the next
// candidate.
func (e *Editor) driveCompletion() {
	cs := e.completion
	if cs == nil {
		return
	}
	if !cs.displayed {
		if len(cs.Candidates) >= manyCandidatesThreshold {
			if !e.confirmDisplayAll(len(cs.Candidates)) {
				return
			}
		}
		e.displayCandidateGrid(cs)
		cs.displayed = true
		cs.rotIdx = -1
		return
	}
	cs.rotIdx = (cs.rotIdx + 1) % len(cs.Candidates)
	e.applyRotatedCandidate(cs)
}

// applyRotatedCandidate rewrites the buffer at the anchor recorded when
// completion started, installing candidate k's Suggestion text.
func (e *Editor) applyRotatedCandidate(cs *CompletionSet) {
	c := cs.Candidates[cs.rotIdx]
	prefix := string(e.buf[:cs.anchor])
	rest := string(e.buf[e.pos:])
	e.setBuf(prefix + c.Suggestion + rest)
	e.pos = cs.anchor + len([]rune(c.Suggestion))
	e.refreshLine()
}

// confirmDisplayAll implements the "Display all N possibilities?
// (y or n)" prompt for candidate sets of 100 or more.
func (e *Editor) confirmDisplayAll(n int) bool {
	writeAll(e.ofd, fmt.Sprintf("\r\nDisplay all %d possibilities? (y or n)", n))
	for {
		k := e.dec.readKey()
		switch k.Kind {
		case KeyRune:
			switch k.Rune {
			case 'y', 'Y':
				return true
			case 'n', 'N':
				e.refreshLine()
				return false
			default:
				e.beep()
			}
		case KeyCtrlC:
			e.cancelled = true
			return false
		case KeyClosed, KeyCancelled, KeyError:
			return false
		default:
			e.beep()
		}
	}
}

// displayCandidateGrid renders the candidate set in column-major order
// below the current line.
func (e *Editor) displayCandidateGrid(cs *CompletionSet) {
	colWidth := cs.MaxStrlen + 2
	cols := e.cols / colWidth
	if cols < 1 {
		cols = 1
	}
	n := len(cs.Candidates)
	rows := (n + cols - 1) / cols
	var sb strings.Builder
	sb.WriteString("\r\n")
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			idx := c*rows + r
			if idx < n {
				cell := cs.Candidates[idx].Suggestion
				if c == cols-1 || idx == n-1 {
					sb.WriteString(cell)
				} else {
					sb.WriteString(padRight(cell, colWidth))
				}
			}
		}
		sb.WriteString("\r\n")
	}
	writeAll(e.ofd, sb.String())
	e.maxRows = 0
	e.oldRowPos = 0
	e.oldColPos = 0
	e.refreshLine()
}
