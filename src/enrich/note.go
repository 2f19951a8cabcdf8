package enrich

import (
	"strings"
)

// Note is the structured design note produced by the enrichment model.
// Field names mirror the JSON contract the model is asked to honor.
type Note struct {
	Title               string   `json:"title"`
	Summary             string   `json:"summary"`
	GameplayImpact      string   `json:"gameplayImpact"`
	Scope               Scope    `json:"scope"`
	ImplementationNotes []string `json:"implementationNotes"`
	Risks               []string `json:"risks"`
	Telemetry           []string `json:"telemetry"`
	AntiCheat           []string `json:"antiCheat"`
	Dependencies        []string `json:"dependencies"`
	OpenQuestions       []string `json:"openQuestions"`
	Tags                []string `json:"tags"`
}

// Scope is the three-part work breakdown of a note.
type Scope struct {
	Client   []string `json:"client"`
	Server   []string `json:"server"`
	Database []string `json:"database"`
}

const (
	sentinelNone      = "None"
	sentinelNoChanges = "No changes"

	maxTitleLen      = 80
	maxOpenQuestions = 3
)

// Known placeholder strings the model sometimes echoes back from the prompt
// examples. They are noise, not content.
var placeholderTokens = map[string]struct{}{
	"UI": {}, "3D assets": {}, "Animation": {}, "FX": {}, "Input": {}, "Game Logic": {},
	"API/WS endpoint": {}, "Jobs/queues": {}, "State sync": {}, "Economy logic": {},
	"Schema change?": {}, "New entities/fields?": {}, "No changes?": {},
}

// Normalize repairs a note at the boundary so downstream code can rely on
// non-empty fields: missing title/summary fall back to the raw submission,
// placeholder entries are dropped, and every content list gets a sentinel
// value when nothing usable remains. OpenQuestions stays empty when there
// are none; it drives the clarification phase.
func Normalize(n Note, raw string) Note {
	title := strings.TrimSpace(n.Title)
	if title == "" {
		title = Truncate(raw, maxTitleLen)
	}
	summary := strings.TrimSpace(n.Summary)
	if summary == "" {
		summary = raw
	}
	impact := strings.TrimSpace(n.GameplayImpact)
	if impact == "" {
		impact = "Quality-of-life or feature addition."
	}

	out := Note{
		Title:          title,
		Summary:        summary,
		GameplayImpact: impact,
		Scope: Scope{
			Client:   scrubList(n.Scope.Client, sentinelNone),
			Server:   scrubList(n.Scope.Server, sentinelNone),
			Database: scrubList(n.Scope.Database, sentinelNoChanges),
		},
		ImplementationNotes: scrubList(n.ImplementationNotes, sentinelNone),
		Risks:               scrubList(n.Risks, sentinelNone),
		Telemetry:           scrubList(n.Telemetry, sentinelNone),
		AntiCheat:           scrubList(n.AntiCheat, sentinelNone),
		Dependencies:        scrubList(n.Dependencies, sentinelNone),
		Tags:                scrubList(n.Tags, sentinelNone),
	}

	qs := cleanList(n.OpenQuestions)
	if len(qs) > maxOpenQuestions {
		qs = qs[:maxOpenQuestions]
	}
	out.OpenQuestions = qs

	return out
}

// scrubList drops empties and placeholder noise, substituting the sentinel
// when nothing real is left.
func scrubList(list []string, sentinel string) []string {
	cleaned := make([]string, 0, len(list))
	for _, item := range list {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, placeholder := placeholderTokens[item]; placeholder {
			continue
		}
		cleaned = append(cleaned, item)
	}
	if len(cleaned) == 0 {
		return []string{sentinel}
	}
	return cleaned
}

func cleanList(list []string) []string {
	cleaned := make([]string, 0, len(list))
	for _, item := range list {
		if item = strings.TrimSpace(item); item != "" {
			cleaned = append(cleaned, item)
		}
	}
	return cleaned
}

// Truncate caps s at n runes.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
