package linecraft

import "fmt"

// historySearchState is the substate driving CTRL_R reverse-incremental
// search.
type historySearchState struct {
	query      []rune
	matchIndex int // offset into "past" history entries, -1 = no match yet
	found      bool
}

// historyPastLen returns the number of committed history entries,
// excluding the sentinel that aliases the in-progress buffer at index 0.
func (e *Editor) historyPastLen() int {
	n := e.history.Len()
	if n == 0 {
		return 0
	}
	return n - 1
}

func (e *Editor) historyPastGet(i int) string {
	return e.history.get(i + 1)
}

// runesEqual reports whether two rune slices hold identical contents.
func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// runeLastSubstringEnd returns the end offset (in runes) of the LAST
// occurrence of query within line: among multiple matches in one history
// entry, the latest occurrence wins.
func runeLastSubstringEnd(line, query []rune) (int, bool) {
	if len(query) == 0 || len(query) > len(line) {
		return 0, false
	}
	last := -1
	for i := 0; i+len(query) <= len(line); i++ {
		if runesEqual(line[i:i+len(query)], query) {
			last = i
		}
	}
	if last < 0 {
		return 0, false
	}
	return last + len(query), true
}

// searchHistory scans past history entries from start (inclusive, 0 =
// most recent) toward the oldest, returning the first entry whose text
// contains query, and the rune offset just past its last occurrence.
func (e *Editor) searchHistory(query []rune, start int) (idx, pos int, ok bool) {
	n := e.historyPastLen()
	for i := start; i < n; i++ {
		line := []rune(e.historyPastGet(i))
		if end, found := runeLastSubstringEnd(line, query); found {
			return i, end, true
		}
	}
	return -1, 0, false
}

// enterHistorySearch transitions into ModeHistorySearch and installs
// the dynamic "(reverse-i-search`Q'): " temp prompt.
func (e *Editor) enterHistorySearch() {
	e.histSearch = &historySearchState{matchIndex: -1}
	e.tempPrompt = "(reverse-i-search`': "
	e.refreshLine()
}

// handleHistorySearchKey dispatches one key while mode == ModeHistorySearch.
func (e *Editor) handleHistorySearchKey(k Key) {
	hs := e.histSearch
	switch k.Kind {
	case KeyCtrlC:
		e.cancelled = true
	case KeyBackspace:
		if len(hs.query) > 0 {
			hs.query = hs.query[:len(hs.query)-1]
			e.rerunHistorySearch(0)
		} else {
			e.renderSearchPrompt()
		}
	case KeyCtrlR:
		start := 0
		if hs.matchIndex >= 0 {
			start = hs.matchIndex + 1
		}
		e.rerunHistorySearch(start)
	case KeyRune:
		hs.query = append(hs.query, k.Rune)
		start := 0
		if hs.matchIndex >= 0 {
			start = hs.matchIndex
		}
		e.rerunHistorySearch(start)
	default:
		// any other control exits search; the key is pushed back so the
		// editor resumes in ModeRead with the currently selected line.
		e.dec.backlog.pushFrontKey(k)
		e.exitHistorySearch()
	}
}

func (e *Editor) exitHistorySearch() {
	e.histSearch = nil
	e.tempPrompt = ""
	e.mode = ModeRead
	e.refreshLine()
}

func (e *Editor) rerunHistorySearch(start int) {
	hs := e.histSearch
	idx, pos, ok := e.searchHistory(hs.query, start)
	if ok {
		hs.matchIndex = idx
		hs.found = true
		e.buf = []rune(e.historyPastGet(idx))
		if pos > len(e.buf) {
			pos = len(e.buf)
		}
		e.pos = pos
	} else {
		hs.found = false
		e.beep()
	}
	e.renderSearchPrompt()
}

func (e *Editor) renderSearchPrompt() {
	e.tempPrompt = fmt.Sprintf("(reverse-i-search`%s'): ", string(e.histSearch.query))
	e.refreshLine()
}
