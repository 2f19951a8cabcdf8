package drafts

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func newTestStore(now *time.Time) *Store {
	s := NewStore()
	s.now = func() time.Time { return *now }
	return s
}

func TestStorePutGetDelete(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := newTestStore(&now)

	d := &Draft{ID: "a", AuthorID: "u1", RawText: "add fishing", Phase: PhaseAwaitingApproval, CreatedAt: now}
	s.Put(d)

	got, ok := s.Get("a")
	if !ok {
		t.Fatal("expected draft to be present")
	}
	if got.AuthorID != "u1" || got.Phase != PhaseAwaitingApproval {
		t.Errorf("got %+v", got)
	}

	if _, ok := s.Get("missing"); ok {
		t.Error("expected miss for unknown id")
	}

	s.Delete("a")
	if _, ok := s.Get("a"); ok {
		t.Error("expected draft gone after delete")
	}

	// Deleting again is a no-op.
	s.Delete("a")
}

func TestStoreExpiryOnGet(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := newTestStore(&now)

	s.Put(&Draft{ID: "a", CreatedAt: now})

	now = now.Add(TTL - time.Second)
	if _, ok := s.Get("a"); !ok {
		t.Error("draft just under TTL should still be readable")
	}

	now = now.Add(time.Second)
	if _, ok := s.Get("a"); ok {
		t.Error("draft at exactly TTL must be absent")
	}
	if s.Len() != 0 {
		t.Errorf("expired draft should be evicted on read, len=%d", s.Len())
	}
}

func TestGetReturnsSnapshot(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := newTestStore(&now)

	s.Put(&Draft{ID: "a", Phase: PhaseAwaitingAnswers, CreatedAt: now})

	d1, _ := s.Get("a")
	d1.Phase = PhaseAwaitingApproval
	d1.PromptMessageID = "m1"

	stored, _ := s.Get("a")
	if stored.Phase != PhaseAwaitingAnswers || stored.PromptMessageID != "" {
		t.Errorf("mutating a returned draft leaked into the store: %+v", stored)
	}

	s.Put(d1)
	stored, _ = s.Get("a")
	if stored.Phase != PhaseAwaitingApproval || stored.PromptMessageID != "m1" {
		t.Errorf("Put should persist the mutated copy: %+v", stored)
	}
}

func TestConcurrentGetAndPut(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := newTestStore(&now)
	s.Put(&Draft{ID: "a", CreatedAt: now})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				d, ok := s.Get("a")
				if !ok {
					continue
				}
				d.PromptMessageID = fmt.Sprintf("m%d-%d", n, j)
				s.Put(d)
			}
		}(i)
	}
	wg.Wait()

	if _, ok := s.Get("a"); !ok {
		t.Error("draft should survive concurrent read/modify/write")
	}
}

func TestStoreSweep(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := newTestStore(&now)

	s.Put(&Draft{ID: "old", CreatedAt: now.Add(-TTL - time.Minute)})
	s.Put(&Draft{ID: "edge", CreatedAt: now.Add(-TTL)})
	s.Put(&Draft{ID: "fresh", CreatedAt: now})

	if n := s.Sweep(); n != 2 {
		t.Errorf("Sweep() = %d, want 2", n)
	}
	if s.Len() != 1 {
		t.Errorf("len after sweep = %d, want 1", s.Len())
	}
	if _, ok := s.Get("fresh"); !ok {
		t.Error("fresh draft should survive sweep")
	}
}
