package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stake-plus/ideaforge/src/drafts"
	"github.com/stake-plus/ideaforge/src/enrich"
	"github.com/stake-plus/ideaforge/src/tracker"
	"github.com/stake-plus/ideaforge/src/votes"
)

// MaxQuestions caps how many clarification questions a draft carries.
const MaxQuestions = 5

var (
	// ErrNotFound means the draft ID is unknown or expired. User visible,
	// non fatal; it ends the flow for that ID.
	ErrNotFound = errors.New("draft not found or expired")
	// ErrUnauthorized means the acting identity is not the draft author.
	// No state changes.
	ErrUnauthorized = errors.New("only the original submitter can continue this flow")
	// ErrWrongPhase means the transition is not legal from the draft's
	// current phase.
	ErrWrongPhase = errors.New("draft is not in the right phase for this action")
)

// Enricher turns raw text into structured design notes.
type Enricher interface {
	FirstPass(ctx context.Context, raw, author string) (enrich.Note, error)
	Refine(ctx context.Context, raw, answers, author string, previous *enrich.Note) (enrich.Note, error)
}

// Tracker is the slice of the tracker client the lifecycle needs.
type Tracker interface {
	CreateIssue(ctx context.Context, title, body string) (tracker.Issue, error)
	UpsertVoteComment(ctx context.Context, issueNumber, count int) error
}

// Controller drives a draft from creation through clarification to publish
// or cancellation. It owns the state transition rules; all rendering and
// transport stays with the caller.
type Controller struct {
	store    *drafts.Store
	enricher Enricher
	tracker  Tracker
	links    *votes.LinkTable
	newID    func() string
	now      func() time.Time
}

func NewController(store *drafts.Store, enricher Enricher, tr Tracker, links *votes.LinkTable) *Controller {
	return &Controller{
		store:    store,
		enricher: enricher,
		tracker:  tr,
		links:    links,
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// CreateInput is a new submission.
type CreateInput struct {
	AuthorID  string
	AuthorTag string
	RawText   string
}

// Create runs first-pass enrichment and stores the new draft. The draft
// enters awaiting_answers when the note carries open questions, otherwise
// awaiting_approval.
func (c *Controller) Create(ctx context.Context, in CreateInput) (*drafts.Draft, error) {
	note, err := c.enricher.FirstPass(ctx, in.RawText, in.AuthorTag)
	if err != nil {
		return nil, fmt.Errorf("enrich idea: %w", err)
	}

	questions := note.OpenQuestions
	if len(questions) > MaxQuestions {
		questions = questions[:MaxQuestions]
	}

	d := &drafts.Draft{
		ID:            c.newID(),
		AuthorID:      in.AuthorID,
		AuthorTag:     in.AuthorTag,
		RawText:       in.RawText,
		Title:         enrich.IssueTitle(note, in.RawText),
		Body:          enrich.IssueBody(note, in.AuthorTag, in.AuthorID, in.RawText, ""),
		Note:          &note,
		OpenQuestions: questions,
		CreatedAt:     c.now(),
	}
	if len(questions) > 0 {
		d.Phase = drafts.PhaseAwaitingAnswers
	} else {
		d.Phase = drafts.PhaseAwaitingApproval
	}

	c.store.Put(d)
	return d, nil
}

// RecordContext remembers where the flow runs (thread) and where the vote
// announcement belongs (parent channel). The thread is created after
// enrichment since it is named from the enriched title.
func (c *Controller) RecordContext(id, threadID, parentChannelID string) {
	d, ok := c.store.Get(id)
	if !ok {
		return
	}
	d.ThreadID = threadID
	d.ParentChannelID = parentChannelID
	c.store.Put(d)
}

// RecordPrompt remembers the most recent interactive prompt so its controls
// can be retracted when the draft advances.
func (c *Controller) RecordPrompt(id, channelID, messageID string) {
	d, ok := c.store.Get(id)
	if !ok {
		return
	}
	d.PromptChannelID = channelID
	d.PromptMessageID = messageID
	c.store.Put(d)
}

// Questions returns the outstanding clarification questions for the draft's
// author, for rendering the answer form.
func (c *Controller) Questions(id, actorID string) ([]string, error) {
	d, err := c.authed(id, actorID)
	if err != nil {
		return nil, err
	}
	return d.OpenQuestions, nil
}

// Answer folds the author's clarification answers into the draft via the
// refinement pass and advances it to awaiting_approval. Blank answers are
// preserved as asked-but-unanswered. On a transport-level enrichment fault
// the draft is left untouched so the author can retry.
func (c *Controller) Answer(ctx context.Context, id, actorID string, answers []string) (*drafts.Draft, error) {
	d, err := c.authed(id, actorID)
	if err != nil {
		return nil, err
	}
	if d.Phase != drafts.PhaseAwaitingAnswers {
		return nil, ErrWrongPhase
	}

	transcript := Transcript(d.OpenQuestions, answers)
	note, err := c.enricher.Refine(ctx, d.RawText, transcript, d.AuthorTag, d.Note)
	if err != nil {
		return nil, fmt.Errorf("refine idea: %w", err)
	}

	d.Note = &note
	d.AnswersText = transcript
	d.Title = enrich.IssueTitle(note, d.RawText)
	d.Body = enrich.IssueBody(note, d.AuthorTag, d.AuthorID, d.RawText, transcript)
	d.Phase = drafts.PhaseAwaitingApproval
	c.store.Put(d)
	return d, nil
}

// Skip advances the draft to awaiting_approval without another enrichment
// pass.
func (c *Controller) Skip(id, actorID string) (*drafts.Draft, error) {
	d, err := c.authed(id, actorID)
	if err != nil {
		return nil, err
	}
	if d.Phase != drafts.PhaseAwaitingAnswers {
		return nil, ErrWrongPhase
	}
	d.Phase = drafts.PhaseAwaitingApproval
	c.store.Put(d)
	return d, nil
}

// Approve publishes the draft as a tracker issue and removes it from the
// store. A tracker fault leaves the draft in awaiting_approval for a retry.
// Posting the vote announcement and linking it happen afterwards, via
// RegisterVoteMessage.
func (c *Controller) Approve(ctx context.Context, id, actorID string) (*drafts.Draft, tracker.Issue, error) {
	d, err := c.authed(id, actorID)
	if err != nil {
		return nil, tracker.Issue{}, err
	}
	if d.Phase != drafts.PhaseAwaitingApproval {
		return nil, tracker.Issue{}, ErrWrongPhase
	}

	issue, err := c.tracker.CreateIssue(ctx, d.Title, d.Body)
	if err != nil {
		return nil, tracker.Issue{}, fmt.Errorf("create tracker issue: %w", err)
	}

	c.store.Delete(id)
	return d, issue, nil
}

// RegisterVoteMessage links a posted vote announcement to its issue and
// seeds the tracker's vote-count comment at zero.
func (c *Controller) RegisterVoteMessage(ctx context.Context, messageID string, issueNumber int) error {
	c.links.Link(messageID, issueNumber)
	if err := c.tracker.UpsertVoteComment(ctx, issueNumber, 0); err != nil {
		return fmt.Errorf("seed vote comment: %w", err)
	}
	return nil
}

// Cancel discards the draft. Terminal; no tracker interaction.
func (c *Controller) Cancel(id, actorID string) (*drafts.Draft, error) {
	d, err := c.authed(id, actorID)
	if err != nil {
		return nil, err
	}
	if d.Phase != drafts.PhaseAwaitingApproval {
		return nil, ErrWrongPhase
	}
	c.store.Delete(id)
	return d, nil
}

func (c *Controller) authed(id, actorID string) (*drafts.Draft, error) {
	d, ok := c.store.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	if d.AuthorID != actorID {
		return nil, ErrUnauthorized
	}
	return d, nil
}

// Transcript concatenates question/answer pairs into the refinement
// transcript. Questions with blank answers keep their Q line only.
func Transcript(questions, answers []string) string {
	var lines []string
	for i, q := range questions {
		if i >= MaxQuestions {
			break
		}
		var a string
		if i < len(answers) {
			a = strings.TrimSpace(answers[i])
		}
		if q == "" && a == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("Q%d: %s", i+1, q))
		if a != "" {
			lines = append(lines, fmt.Sprintf("A%d: %s", i+1, a))
		}
	}
	return strings.Join(lines, "\n")
}
