package ranking

import (
	"context"
	"log"

	"github.com/stake-plus/ideaforge/src/tracker"
	"github.com/stake-plus/ideaforge/src/types"
)

// VoteSource is the tracker-side data needed to rank ideas.
type VoteSource interface {
	ListOpenIdeas(ctx context.Context, limit int) ([]tracker.OpenIdea, error)
	ReadVoteCount(ctx context.Context, issueNumber int) (int, error)
}

// TopIdeas lists open ideas, reads each mirrored vote count, and returns
// them ranked, capped at count. A vote comment that cannot be read counts
// as zero rather than failing the whole listing.
func TopIdeas(ctx context.Context, src VoteSource, count int) ([]types.IdeaIssue, error) {
	open, err := src.ListOpenIdeas(ctx, 100)
	if err != nil {
		return nil, err
	}

	ideas := make([]types.IdeaIssue, 0, len(open))
	for _, i := range open {
		voteCount, err := src.ReadVoteCount(ctx, i.Number)
		if err != nil {
			log.Printf("read vote count for #%d: %v", i.Number, err)
			voteCount = 0
		}
		ideas = append(ideas, types.IdeaIssue{
			Number: i.Number,
			Title:  i.Title,
			URL:    i.URL,
			Votes:  voteCount,
			Labels: i.Labels,
		})
	}

	ranked := Rank(ideas)
	if count > 0 && len(ranked) > count {
		ranked = ranked[:count]
	}
	return ranked, nil
}
