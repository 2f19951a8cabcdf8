package enrich

import (
	"fmt"
	"strings"
)

const titlePrefix = "[IDEA] "

// IssueTitle builds the tracker issue title from a note, falling back to the
// raw text when the model produced no title.
func IssueTitle(n Note, raw string) string {
	title := n.Title
	if title == "" {
		title = raw
	}
	return titlePrefix + Truncate(title, maxTitleLen)
}

// IssueBody renders the markdown report published to the tracker.
func IssueBody(n Note, userTag, userID, raw, qa string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Submitted by **%s** (Discord ID: %s)\n\n", userTag, userID)
	fmt.Fprintf(&b, "**Summary**\n%s\n\n", orText(n.Summary, "(missing)"))
	fmt.Fprintf(&b, "**Gameplay Impact**\n%s\n\n", orText(n.GameplayImpact, "(unspecified)"))
	fmt.Fprintf(&b, "**Client (Unity)**\n%s\n\n", bulletList(n.Scope.Client))
	fmt.Fprintf(&b, "**Server (Go)**\n%s\n\n", bulletList(n.Scope.Server))
	fmt.Fprintf(&b, "**Database**\n%s\n\n", bulletList(n.Scope.Database))
	fmt.Fprintf(&b, "**Implementation Notes**\n%s\n\n", bulletList(n.ImplementationNotes))
	fmt.Fprintf(&b, "**Risks**\n%s\n\n", bulletList(n.Risks))
	fmt.Fprintf(&b, "**Telemetry**\n%s\n\n", bulletList(n.Telemetry))
	fmt.Fprintf(&b, "**Anti-Cheat / Validation**\n%s\n\n", bulletList(n.AntiCheat))
	fmt.Fprintf(&b, "**Dependencies**\n%s\n", bulletList(n.Dependencies))

	if len(n.Tags) > 0 {
		tags := make([]string, len(n.Tags))
		for i, t := range n.Tags {
			tags[i] = "`" + t + "`"
		}
		fmt.Fprintf(&b, "\n**Tags**\n%s\n", strings.Join(tags, " "))
	}

	if qa != "" {
		fmt.Fprintf(&b, "\n**Player Clarifications**\n%s\n", qa)
	}

	fmt.Fprintf(&b, "\n---\n\n**Original Player Text**\n> %s\n", raw)

	return b.String()
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return "- (none)"
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + item
	}
	return strings.Join(lines, "\n")
}

func orText(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
