package linecraft

import "testing"

func TestRuneLastSubstringEnd(t *testing.T) {
	line := []rune("the cat sat on the mat")
	query := []rune("at")
	end, ok := runeLastSubstringEnd(line, query)
	if !ok {
		t.Fatal("expected a match")
	}
	// "mat" is the last occurrence of "at"; it ends at len(line).
	if end != len(line) {
		t.Errorf("end = %d, want %d", end, len(line))
	}
}

func TestRuneLastSubstringEndNoMatch(t *testing.T) {
	_, ok := runeLastSubstringEnd([]rune("hello"), []rune("xyz"))
	if ok {
		t.Error("expected no match")
	}
}

func TestSearchHistoryLatestWins(t *testing.T) {
	e := newTestEditor(t)
	e.history.Add("cat food")
	e.history.Add("category theory")
	e.history.Add("dog food")
	e.history.pushSentinel() // the in-progress alias at index 0

	idx, _, ok := e.searchHistory([]rune("cat"), 0)
	if !ok {
		t.Fatal("expected a match")
	}
	// historyPastGet(0) is the newest *committed* entry, "dog food", which
	// doesn't match; the next is "category theory".
	if got := e.historyPastGet(idx); got != "category theory" {
		t.Errorf("matched entry = %q, want %q", got, "category theory")
	}
}

func TestHistorySearchRerunAdvancesPastCurrentMatch(t *testing.T) {
	e := newTestEditor(t)
	e.history.Add("alpha")
	e.history.Add("alert")
	e.history.pushSentinel()

	e.enterHistorySearch()
	e.histSearch.query = []rune("al")
	e.rerunHistorySearch(0)
	if got := e.String(); got != "alert" {
		t.Fatalf("first match = %q, want %q", got, "alert")
	}

	// CTRL_R again should search past the current match, landing on "alpha".
	e.rerunHistorySearch(e.histSearch.matchIndex + 1)
	if got := e.String(); got != "alpha" {
		t.Fatalf("second match = %q, want %q", got, "alpha")
	}
}

func TestHistorySearchBackspaceRestartsFromNewest(t *testing.T) {
	e := newTestEditor(t)
	e.history.Add("bandit")
	e.history.Add("banana")
	e.history.pushSentinel()

	e.enterHistorySearch()
	e.handleHistorySearchKey(Key{Kind: KeyRune, Rune: 'b'})
	e.handleHistorySearchKey(Key{Kind: KeyRune, Rune: 'a'})
	e.handleHistorySearchKey(Key{Kind: KeyRune, Rune: 'n'})
	if got := e.String(); got != "banana" {
		t.Fatalf("after typing 'ban', buf = %q, want %q", got, "banana")
	}
	// typing 'd' no longer matches "banana" (the newest entry), so the
	// search advances to the older "bandit".
	e.handleHistorySearchKey(Key{Kind: KeyRune, Rune: 'd'})
	if got := e.String(); got != "bandit" {
		t.Fatalf("after typing 'band', buf = %q, want %q", got, "bandit")
	}
	// backspacing restarts the scan from the newest entry, which matches
	// "ban" again.
	e.handleHistorySearchKey(Key{Kind: KeyBackspace})
	if got := e.String(); got != "banana" {
		t.Fatalf("after backspace to 'ban', buf = %q, want %q", got, "banana")
	}
}
