package drafts

import (
	"sync"
	"time"

	"github.com/stake-plus/ideaforge/src/enrich"
)

// Phase is where a draft sits in the submission flow.
type Phase string

const (
	PhaseAwaitingAnswers  Phase = "awaiting_answers"
	PhaseAwaitingApproval Phase = "awaiting_approval"
)

const (
	// TTL bounds how long an abandoned draft stays actionable.
	TTL = 10 * time.Minute
	// SweepInterval is how often expired drafts are evicted.
	SweepInterval = time.Minute
)

// Draft is an in-flight idea submission. It lives in the store from creation
// until publish, cancellation, or TTL expiry. Only AuthorID may advance it.
type Draft struct {
	ID        string
	AuthorID  string
	AuthorTag string
	RawText   string

	Title string
	Body  string
	Note  *enrich.Note

	OpenQuestions []string // capped at 5
	AnswersText   string   // concatenated "Q1: ...\nA1: ..." transcript
	Phase         Phase
	CreatedAt     time.Time

	// Most recent interactive prompt, so stale controls can be retracted
	// when the draft advances.
	PromptChannelID string
	PromptMessageID string

	// Where the flow runs and where the vote announcement goes.
	ThreadID        string
	ParentChannelID string
}

// Store holds in-flight drafts keyed by ID. Get and Put exchange copies
// under the mutex, so handlers on different goroutines never share writable
// draft state. A fast double-click can still observe the pre-transition
// phase, which downstream idempotent operations tolerate.
type Store struct {
	mu     sync.Mutex
	drafts map[string]*Draft
	ttl    time.Duration
	now    func() time.Time
}

func NewStore() *Store {
	return &Store{
		drafts: make(map[string]*Draft),
		ttl:    TTL,
		now:    time.Now,
	}
}

// Put inserts or overwrites the draft for its ID. Last write wins. The
// store keeps its own copy, so the caller's draft stays private.
func (s *Store) Put(d *Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *d
	s.drafts[d.ID] = &cp
}

// Get looks up a draft. A miss is an expected outcome (expired or unknown
// ID), never an internal fault. A draft is gone from exactly T+TTL onward.
// The returned draft is a snapshot; callers mutate their copy and Put it
// back, so concurrent event handlers never share writable state.
func (s *Store) Get(id string) (*Draft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[id]
	if !ok {
		return nil, false
	}
	if s.now().Sub(d.CreatedAt) >= s.ttl {
		delete(s.drafts, id)
		return nil, false
	}
	cp := *d
	return &cp, true
}

// Delete removes a draft. Deleting an absent ID is a no-op.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, id)
}

// Sweep evicts every draft at or past the TTL regardless of phase and
// returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	evicted := 0
	for id, d := range s.drafts {
		if now.Sub(d.CreatedAt) >= s.ttl {
			delete(s.drafts, id)
			evicted++
		}
	}
	return evicted
}

// Len reports how many drafts are held, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.drafts)
}
