package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stake-plus/ideaforge/src/drafts"
	"github.com/stake-plus/ideaforge/src/enrich"
	"github.com/stake-plus/ideaforge/src/tracker"
	"github.com/stake-plus/ideaforge/src/votes"
)

type fakeEnricher struct {
	firstPass  enrich.Note
	firstErr   error
	refined    enrich.Note
	refineErr  error
	transcript string
}

func (f *fakeEnricher) FirstPass(_ context.Context, raw, author string) (enrich.Note, error) {
	if f.firstErr != nil {
		return enrich.Note{}, f.firstErr
	}
	return f.firstPass, nil
}

func (f *fakeEnricher) Refine(_ context.Context, raw, answers, author string, previous *enrich.Note) (enrich.Note, error) {
	f.transcript = answers
	if f.refineErr != nil {
		return enrich.Note{}, f.refineErr
	}
	return f.refined, nil
}

type fakeTracker struct {
	issue     tracker.Issue
	createErr error
	created   []string // titles
	upserts   []struct {
		issue int
		count int
	}
}

func (f *fakeTracker) CreateIssue(_ context.Context, title, body string) (tracker.Issue, error) {
	if f.createErr != nil {
		return tracker.Issue{}, f.createErr
	}
	f.created = append(f.created, title)
	return f.issue, nil
}

func (f *fakeTracker) UpsertVoteComment(_ context.Context, issue, count int) error {
	f.upserts = append(f.upserts, struct {
		issue int
		count int
	}{issue, count})
	return nil
}

func newTestController(e Enricher, tr Tracker) (*Controller, *drafts.Store, *votes.LinkTable) {
	store := drafts.NewStore()
	links := votes.NewLinkTable()
	c := NewController(store, e, tr, links)
	return c, store, links
}

func noteWith(title string, questions ...string) enrich.Note {
	return enrich.Note{
		Title:         title,
		Summary:       "summary",
		OpenQuestions: questions,
	}
}

func TestCreateWithQuestions(t *testing.T) {
	e := &fakeEnricher{firstPass: noteWith("Add fishing", "Where?", "How deep?")}
	c, _, _ := newTestController(e, &fakeTracker{})

	d, err := c.Create(context.Background(), CreateInput{AuthorID: "u1", AuthorTag: "alice", RawText: "add fishing"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if d.Phase != drafts.PhaseAwaitingAnswers {
		t.Errorf("phase = %s, want awaiting_answers", d.Phase)
	}
	if len(d.OpenQuestions) != 2 {
		t.Errorf("questions = %d, want 2", len(d.OpenQuestions))
	}
	if d.Title != "[IDEA] Add fishing" {
		t.Errorf("title = %q", d.Title)
	}
}

func TestCreateWithoutQuestions(t *testing.T) {
	e := &fakeEnricher{firstPass: noteWith("Add fishing")}
	c, _, _ := newTestController(e, &fakeTracker{})

	d, err := c.Create(context.Background(), CreateInput{AuthorID: "u1", RawText: "add fishing"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if d.Phase != drafts.PhaseAwaitingApproval {
		t.Errorf("phase = %s, want awaiting_approval", d.Phase)
	}
}

func TestCreateCapsQuestions(t *testing.T) {
	e := &fakeEnricher{firstPass: noteWith("X", "q1", "q2", "q3", "q4", "q5", "q6", "q7")}
	c, _, _ := newTestController(e, &fakeTracker{})

	d, err := c.Create(context.Background(), CreateInput{AuthorID: "u1", RawText: "x"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(d.OpenQuestions) != MaxQuestions {
		t.Errorf("questions = %d, want %d", len(d.OpenQuestions), MaxQuestions)
	}
}

func TestAnswerRefinesAndAdvances(t *testing.T) {
	e := &fakeEnricher{
		firstPass: noteWith("Add fishing", "Where?"),
		refined:   noteWith("Add lake fishing"),
	}
	c, _, _ := newTestController(e, &fakeTracker{})
	ctx := context.Background()

	d, _ := c.Create(ctx, CreateInput{AuthorID: "u1", RawText: "add fishing"})

	got, err := c.Answer(ctx, d.ID, "u1", []string{"in the lakes"})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if got.Phase != drafts.PhaseAwaitingApproval {
		t.Errorf("phase = %s, want awaiting_approval", got.Phase)
	}
	if got.Title != "[IDEA] Add lake fishing" {
		t.Errorf("title = %q", got.Title)
	}
	want := "Q1: Where?\nA1: in the lakes"
	if e.transcript != want {
		t.Errorf("transcript = %q, want %q", e.transcript, want)
	}
	if got.AnswersText != want {
		t.Errorf("AnswersText = %q, want %q", got.AnswersText, want)
	}
}

func TestAnswerEnrichFaultLeavesDraft(t *testing.T) {
	e := &fakeEnricher{
		firstPass: noteWith("Add fishing", "Where?"),
		refineErr: errors.New("api down"),
	}
	c, store, _ := newTestController(e, &fakeTracker{})
	ctx := context.Background()

	d, _ := c.Create(ctx, CreateInput{AuthorID: "u1", RawText: "add fishing"})

	if _, err := c.Answer(ctx, d.ID, "u1", []string{"lakes"}); err == nil {
		t.Fatal("expected error from failed refinement")
	}
	kept, ok := store.Get(d.ID)
	if !ok {
		t.Fatal("draft should survive a refinement fault")
	}
	if kept.Phase != drafts.PhaseAwaitingAnswers {
		t.Errorf("phase = %s, want awaiting_answers", kept.Phase)
	}
}

func TestSkip(t *testing.T) {
	e := &fakeEnricher{firstPass: noteWith("Add fishing", "Where?")}
	c, _, _ := newTestController(e, &fakeTracker{})
	ctx := context.Background()

	d, _ := c.Create(ctx, CreateInput{AuthorID: "u1", RawText: "add fishing"})

	got, err := c.Skip(d.ID, "u1")
	if err != nil {
		t.Fatalf("Skip: %v", err)
	}
	if got.Phase != drafts.PhaseAwaitingApproval {
		t.Errorf("phase = %s, want awaiting_approval", got.Phase)
	}

	// Skipping again is a phase violation.
	if _, err := c.Skip(d.ID, "u1"); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("second Skip err = %v, want ErrWrongPhase", err)
	}
}

func TestApprovePublishesAndDeletes(t *testing.T) {
	e := &fakeEnricher{firstPass: noteWith("Add fishing")}
	tr := &fakeTracker{issue: tracker.Issue{Number: 12, Title: "[IDEA] Add fishing", URL: "https://example.com/12"}}
	c, store, links := newTestController(e, tr)
	ctx := context.Background()

	d, _ := c.Create(ctx, CreateInput{AuthorID: "u1", RawText: "add fishing"})

	got, issue, err := c.Approve(ctx, d.ID, "u1")
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if issue.Number != 12 {
		t.Errorf("issue number = %d, want 12", issue.Number)
	}
	if got.ID != d.ID {
		t.Errorf("returned draft ID = %q, want %q", got.ID, d.ID)
	}
	if _, ok := store.Get(d.ID); ok {
		t.Error("draft should be deleted after approve")
	}

	if err := c.RegisterVoteMessage(ctx, "msg9", issue.Number); err != nil {
		t.Fatalf("RegisterVoteMessage: %v", err)
	}
	if n, ok := links.Resolve("msg9"); !ok || n != 12 {
		t.Errorf("link = %d, %v; want 12, true", n, ok)
	}
	if len(tr.upserts) != 1 || tr.upserts[0].count != 0 {
		t.Errorf("upserts = %+v, want one seed at zero", tr.upserts)
	}
}

func TestApproveTrackerFaultKeepsDraft(t *testing.T) {
	e := &fakeEnricher{firstPass: noteWith("Add fishing")}
	tr := &fakeTracker{createErr: errors.New("503")}
	c, store, _ := newTestController(e, tr)
	ctx := context.Background()

	d, _ := c.Create(ctx, CreateInput{AuthorID: "u1", RawText: "add fishing"})

	if _, _, err := c.Approve(ctx, d.ID, "u1"); err == nil {
		t.Fatal("expected error from tracker fault")
	}
	kept, ok := store.Get(d.ID)
	if !ok {
		t.Fatal("draft should survive a tracker fault")
	}
	if kept.Phase != drafts.PhaseAwaitingApproval {
		t.Errorf("phase = %s, want awaiting_approval", kept.Phase)
	}
}

func TestAuthorOnlyTransitions(t *testing.T) {
	e := &fakeEnricher{firstPass: noteWith("Add fishing", "Where?")}
	c, store, _ := newTestController(e, &fakeTracker{})
	ctx := context.Background()

	d, _ := c.Create(ctx, CreateInput{AuthorID: "u1", RawText: "add fishing"})

	if _, err := c.Skip(d.ID, "u2"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Skip by non-author err = %v, want ErrUnauthorized", err)
	}
	if _, err := c.Answer(ctx, d.ID, "u2", nil); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Answer by non-author err = %v, want ErrUnauthorized", err)
	}
	if _, _, err := c.Approve(ctx, d.ID, "u2"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Approve by non-author err = %v, want ErrUnauthorized", err)
	}

	kept, _ := store.Get(d.ID)
	if kept.Phase != drafts.PhaseAwaitingAnswers {
		t.Errorf("phase = %s after denied actions, want awaiting_answers", kept.Phase)
	}
}

func TestConcurrentPromptRecording(t *testing.T) {
	e := &fakeEnricher{firstPass: noteWith("Add fishing", "Where?")}
	c, store, _ := newTestController(e, &fakeTracker{})
	ctx := context.Background()

	d, _ := c.Create(ctx, CreateInput{AuthorID: "u1", RawText: "add fishing"})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c.RecordPrompt(d.ID, "chan", fmt.Sprintf("msg-%d-%d", n, j))
				if _, err := c.Questions(d.ID, "u1"); err != nil {
					t.Errorf("Questions during concurrent updates: %v", err)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	kept, ok := store.Get(d.ID)
	if !ok {
		t.Fatal("draft should survive concurrent prompt updates")
	}
	if kept.PromptMessageID == "" {
		t.Error("a prompt message should have been recorded")
	}
}

func TestUnknownDraft(t *testing.T) {
	c, _, _ := newTestController(&fakeEnricher{}, &fakeTracker{})

	if _, err := c.Questions("nope", "u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Questions err = %v, want ErrNotFound", err)
	}
	if _, err := c.Cancel("nope", "u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Cancel err = %v, want ErrNotFound", err)
	}
}

func TestCancel(t *testing.T) {
	e := &fakeEnricher{firstPass: noteWith("Add fishing")}
	c, store, _ := newTestController(e, &fakeTracker{})
	ctx := context.Background()

	d, _ := c.Create(ctx, CreateInput{AuthorID: "u1", RawText: "add fishing"})

	if _, err := c.Cancel(d.ID, "u1"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if _, ok := store.Get(d.ID); ok {
		t.Error("draft should be gone after cancel")
	}
}

func TestTranscript(t *testing.T) {
	tests := []struct {
		name      string
		questions []string
		answers   []string
		want      string
	}{
		{
			name:      "all answered",
			questions: []string{"Where?", "When?"},
			answers:   []string{"lakes", "winter"},
			want:      "Q1: Where?\nA1: lakes\nQ2: When?\nA2: winter",
		},
		{
			name:      "blank answer keeps question",
			questions: []string{"Where?", "When?"},
			answers:   []string{"", "winter"},
			want:      "Q1: Where?\nQ2: When?\nA2: winter",
		},
		{
			name:      "more answers than questions",
			questions: []string{"Where?"},
			answers:   []string{"lakes", "extra"},
			want:      "Q1: Where?\nA1: lakes",
		},
		{
			name: "empty",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Transcript(tt.questions, tt.answers); got != tt.want {
				t.Errorf("Transcript() = %q, want %q", got, tt.want)
			}
		})
	}
}
