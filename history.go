package linecraft

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// History is a bounded FIFO ring of prior lines. The newest entry sits
// at index 0 when walked via get/set ("0 is the last entry
// added"); internally entries are stored oldest-first so Add can simply
// append.
type History struct {
	entries []string
	maxLen  int
	// Dedup, when true (the default), skips adding a line identical to
	// the most recently added entry.
	Dedup bool
	// DedupFunc, if set, overrides the default most-recent-entry
	// comparison used by Dedup.
	DedupFunc func(newLine, lastLine string) bool
}

// defaultHistoryMaxLen is the default capacity of a new history ring.
const defaultHistoryMaxLen = 100

// NewHistory returns an empty history ring with the default capacity.
func NewHistory() *History {
	return &History{maxLen: defaultHistoryMaxLen, Dedup: true}
}

// Len returns the number of entries currently stored.
func (h *History) Len() int { return len(h.entries) }

// Add appends line to the ring, dropping the oldest entry if full.
// Returns false if the line was rejected by the dedup policy.
func (h *History) Add(line string) bool {
	if h.maxLen == 0 {
		return false
	}
	if h.Dedup && len(h.entries) > 0 {
		last := h.entries[len(h.entries)-1]
		same := last == line
		if h.DedupFunc != nil {
			same = h.DedupFunc(line, last)
		}
		if same {
			return false
		}
	}
	if len(h.entries) == h.maxLen {
		h.entries = h.entries[1:]
	}
	h.entries = append(h.entries, line)
	return true
}

// pushSentinel appends the empty-string entry that aliases the
// in-progress edit buffer at index 0. It bypasses Dedup so an empty
// buffer is always represented.
func (h *History) pushSentinel() {
	if h.maxLen == 0 {
		return
	}
	if len(h.entries) == h.maxLen {
		h.entries = h.entries[1:]
	}
	h.entries = append(h.entries, "")
}

// popSentinel removes the entry at idx (absolute index from newest,
// 0 = newest), used to discard the sentinel on accept/cancel.
func (h *History) popSentinel(idxFromNewest int) string {
	if idxFromNewest < 0 {
		idxFromNewest = 0
	}
	i := len(h.entries) - 1 - idxFromNewest
	if i < 0 || i >= len(h.entries) {
		return ""
	}
	s := h.entries[i]
	h.entries = append(h.entries[:i], h.entries[i+1:]...)
	return s
}

// get returns the entry idxFromNewest back from the newest (0 = newest).
func (h *History) get(idxFromNewest int) string {
	i := len(h.entries) - 1 - idxFromNewest
	if i < 0 || i >= len(h.entries) {
		return ""
	}
	return h.entries[i]
}

// set overwrites the entry idxFromNewest back from the newest.
func (h *History) set(idxFromNewest int, line string) {
	i := len(h.entries) - 1 - idxFromNewest
	if i < 0 || i >= len(h.entries) {
		return
	}
	h.entries[i] = line
}

// List returns the entries, newest last (the storage order).
func (h *History) List() []string {
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

// SetMaxLen changes the capacity, truncating the oldest entries if the
// ring is currently over the new limit.
func (h *History) SetMaxLen(n int) {
	if n < 0 {
		return
	}
	h.maxLen = n
	if len(h.entries) > h.maxLen {
		h.entries = h.entries[len(h.entries)-h.maxLen:]
	}
}

// MaxLen returns the current capacity.
func (h *History) MaxLen() int { return h.maxLen }

// Save writes the history, one entry per line, to path.
func (h *History) Save(path string) error {
	if len(h.entries) == 0 {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return newError(KindIOError, "creating history file", err)
	}
	defer f.Close()
	if _, err := f.WriteString(strings.Join(h.entries, "\n")); err != nil {
		return newError(KindIOError, "writing history file", err)
	}
	return nil
}

// Load replaces the history with the contents of path, one entry per
// line with CR/LF trimmed, silently doing nothing if path is absent.
func (h *History) Load(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}
	if !info.Mode().IsRegular() {
		return newError(KindInvalidArgument, path+" is not a regular file", nil)
	}
	f, err := os.Open(path)
	if err != nil {
		return newError(KindIOError, "opening history file", err)
	}
	defer f.Close()
	r := bufio.NewReader(f)
	entries := make([]string, 0, h.maxLen)
	for {
		s, err := r.ReadString('\n')
		if err == nil || err == io.EOF {
			s = strings.TrimRight(s, "\r\n")
			if len(s) != 0 {
				entries = append(entries, s)
			}
			if err == io.EOF {
				break
			}
			continue
		}
		return newError(KindIOError, "reading history file", err)
	}
	if h.maxLen > 0 && len(entries) > h.maxLen {
		entries = entries[len(entries)-h.maxLen:]
	}
	h.entries = entries
	return nil
}
