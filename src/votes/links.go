package votes

import "sync"

// LinkTable maps a posted vote-announcement message to the tracker issue it
// represents. Links are written once when the announcement is posted and
// never updated; the table lives for the process lifetime, so reactions on
// announcements from before a restart are not reconcilable until a new
// announcement re-links them.
type LinkTable struct {
	mu    sync.RWMutex
	links map[string]int
}

func NewLinkTable() *LinkTable {
	return &LinkTable{links: make(map[string]int)}
}

// Link registers messageID as the vote announcement for issueNumber.
func (t *LinkTable) Link(messageID string, issueNumber int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.links[messageID] = issueNumber
}

// Resolve returns the issue number for a vote message, or false when the
// message is not one this system manages.
func (t *LinkTable) Resolve(messageID string) (int, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, ok := t.links[messageID]
	return n, ok
}
