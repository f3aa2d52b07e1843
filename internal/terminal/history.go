package terminal

import "sync"

// History is the list of submitted commands with shell-style up/down
// navigation. The zero value is ready to use.
type History struct {
	mu      sync.Mutex
	entries []string
	// pos is 0 when not browsing, otherwise 1 + steps back from the newest
	pos int
}

// Push records a submitted command and stops browsing
func (h *History) Push(cmd string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, cmd)
	h.pos = 0
}

// Entries returns the recorded commands, oldest first
func (h *History) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.entries...)
}

// Up steps to the previous command, stopping at the oldest one
func (h *History) Up() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) == 0 {
		return "", false
	}
	if h.pos < len(h.entries) {
		h.pos++
	}
	return h.entries[len(h.entries)-h.pos], true
}

// Down steps to the next command. Stepping past the newest one returns ""
// and stops browsing.
func (h *History) Down() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pos > 1 {
		h.pos--
		return h.entries[len(h.entries)-h.pos]
	}
	h.pos = 0
	return ""
}
