package votes

import (
	"context"
	"fmt"
)

// UpvoteEmoji is the canonical voting reaction.
const UpvoteEmoji = "👍"

// VoteSink is the tracker-side half of reconciliation.
type VoteSink interface {
	UpsertVoteComment(ctx context.Context, issueNumber, count int) error
}

// Event is a reaction added or removed on some message.
type Event struct {
	MessageID string
	Emoji     string
	FromBot   bool
	// Total is the gateway-reported reaction count for the emoji after the
	// event, including the seed reaction this system leaves on every
	// announcement.
	Total int
}

// Reconciler mirrors up-vote reactions onto the tracker's vote comment.
// Each event independently recomputes the full count and overwrites the
// comment: last writer wins, and concurrent events converge on the true
// count rather than double-applying deltas.
type Reconciler struct {
	links *LinkTable
	sink  VoteSink
}

func NewReconciler(links *LinkTable, sink VoteSink) *Reconciler {
	return &Reconciler{links: links, sink: sink}
}

// Count discounts the system's own seed reaction, floored at zero.
func Count(total int) int {
	if total <= 1 {
		return 0
	}
	return total - 1
}

// Manages reports whether messageID is a vote announcement this system
// tracks, letting callers skip gateway lookups for unrelated messages.
func (r *Reconciler) Manages(messageID string) bool {
	_, ok := r.links.Resolve(messageID)
	return ok
}

// Resolve returns the issue a vote announcement belongs to.
func (r *Reconciler) Resolve(messageID string) (int, bool) {
	return r.links.Resolve(messageID)
}

// HandleEvent processes one reaction add/remove. Events from automated
// identities, non-upvote emoji, or messages outside the link table are
// ignored silently.
func (r *Reconciler) HandleEvent(ctx context.Context, ev Event) error {
	if ev.FromBot || ev.Emoji != UpvoteEmoji {
		return nil
	}
	issue, ok := r.links.Resolve(ev.MessageID)
	if !ok {
		return nil
	}
	if err := r.sink.UpsertVoteComment(ctx, issue, Count(ev.Total)); err != nil {
		return fmt.Errorf("upsert vote comment for issue #%d: %w", issue, err)
	}
	return nil
}
