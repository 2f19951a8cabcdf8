package enrich

import (
	"strings"
	"testing"
)

func TestNormalizeEmptyNote(t *testing.T) {
	raw := "let players trade mounts"
	n := Normalize(Note{}, raw)

	if n.Title != raw {
		t.Errorf("title = %q, want raw text", n.Title)
	}
	if n.Summary != raw {
		t.Errorf("summary = %q, want raw text", n.Summary)
	}
	if n.GameplayImpact == "" {
		t.Error("gameplay impact should get a default")
	}
	for name, list := range map[string][]string{
		"client":    n.Scope.Client,
		"server":    n.Scope.Server,
		"impl":      n.ImplementationNotes,
		"risks":     n.Risks,
		"telem":     n.Telemetry,
		"anticheat": n.AntiCheat,
		"deps":      n.Dependencies,
		"tags":      n.Tags,
	} {
		if len(list) != 1 || list[0] != "None" {
			t.Errorf("%s = %v, want [None]", name, list)
		}
	}
	if len(n.Scope.Database) != 1 || n.Scope.Database[0] != "No changes" {
		t.Errorf("database = %v, want [No changes]", n.Scope.Database)
	}
	if len(n.OpenQuestions) != 0 {
		t.Errorf("open questions = %v, want empty", n.OpenQuestions)
	}
}

func TestNormalizeTitleTruncated(t *testing.T) {
	raw := strings.Repeat("x", 200)
	n := Normalize(Note{}, raw)
	if len([]rune(n.Title)) != 80 {
		t.Errorf("title length = %d, want 80", len([]rune(n.Title)))
	}
}

func TestNormalizeScrubsPlaceholders(t *testing.T) {
	n := Normalize(Note{
		Scope: Scope{
			Client: []string{"UI", "3D assets", "New fishing rod model"},
			Server: []string{"API/WS endpoint", " "},
		},
		Tags: []string{"fishing", ""},
	}, "raw")

	if len(n.Scope.Client) != 1 || n.Scope.Client[0] != "New fishing rod model" {
		t.Errorf("client = %v, want the single real entry", n.Scope.Client)
	}
	if len(n.Scope.Server) != 1 || n.Scope.Server[0] != "None" {
		t.Errorf("server = %v, want [None] after scrubbing", n.Scope.Server)
	}
	if len(n.Tags) != 1 || n.Tags[0] != "fishing" {
		t.Errorf("tags = %v, want [fishing]", n.Tags)
	}
}

func TestNormalizeCapsOpenQuestions(t *testing.T) {
	n := Normalize(Note{
		OpenQuestions: []string{"q1", "", "q2", "q3", "q4"},
	}, "raw")
	want := []string{"q1", "q2", "q3"}
	if len(n.OpenQuestions) != len(want) {
		t.Fatalf("open questions = %v, want %v", n.OpenQuestions, want)
	}
	for i := range want {
		if n.OpenQuestions[i] != want[i] {
			t.Errorf("open questions = %v, want %v", n.OpenQuestions, want)
			break
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		s    string
		n    int
		want string
	}{
		{"short", 80, "short"},
		{"abcdef", 3, "abc"},
		{"héllo wörld", 5, "héllo"},
		{"", 10, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.s, tt.n); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.s, tt.n, got, tt.want)
		}
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"```\n{\"a\":1}\n```", "{\"a\":1}"},
		{"{\"a\":1}", "{\"a\":1}"},
	}
	for _, tt := range tests {
		if got := stripFences(tt.in); got != tt.want {
			t.Errorf("stripFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIssueTitle(t *testing.T) {
	n := Note{Title: "Add mount trading"}
	if got := IssueTitle(n, "raw"); got != "[IDEA] Add mount trading" {
		t.Errorf("IssueTitle = %q", got)
	}
	if got := IssueTitle(Note{}, "fallback text"); got != "[IDEA] fallback text" {
		t.Errorf("IssueTitle fallback = %q", got)
	}
	long := strings.Repeat("y", 120)
	if got := IssueTitle(Note{Title: long}, "raw"); got != "[IDEA] "+strings.Repeat("y", 80) {
		t.Errorf("long title not capped: %q", got)
	}
}

func TestIssueBody(t *testing.T) {
	n := Normalize(Note{
		Title:   "Add mount trading",
		Summary: "Players can trade mounts.",
		Scope:   Scope{Server: []string{"Trade validation endpoint"}},
		Tags:    []string{"economy"},
	}, "let players trade mounts")

	body := IssueBody(n, "alice", "u1", "let players trade mounts", "Q1: Which mounts?\nA1: All")

	for _, want := range []string{
		"Submitted by **alice** (Discord ID: u1)",
		"**Summary**\nPlayers can trade mounts.",
		"- Trade validation endpoint",
		"**Database**\n- No changes",
		"`economy`",
		"**Player Clarifications**\nQ1: Which mounts?\nA1: All",
		"**Original Player Text**\n> let players trade mounts",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q\n%s", want, body)
		}
	}
}

func TestIssueBodyNoClarifications(t *testing.T) {
	n := Normalize(Note{Summary: "s"}, "raw")
	body := IssueBody(n, "bob", "u2", "raw", "")
	if strings.Contains(body, "Player Clarifications") {
		t.Error("body should omit clarifications section when transcript is empty")
	}
}
