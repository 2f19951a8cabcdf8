package bot

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/stake-plus/ideaforge/src/drafts"
	"github.com/stake-plus/ideaforge/src/enrich"
	"github.com/stake-plus/ideaforge/src/lifecycle"
)

const (
	embedColor = 0x00ae86

	// customIDNamespace scopes every interactive control this bot owns;
	// activations outside it are ignored.
	customIDNamespace = "idea"

	actionAnswer  = "answer"
	actionSkip    = "skip"
	actionApprove = "approve"
	actionCancel  = "cancel"
	actionAnswers = "answers" // modal submit
)

func customID(action, draftID string) string {
	return fmt.Sprintf("%s:%s:%s", customIDNamespace, action, draftID)
}

// parseCustomID splits "idea:action:draftID"; ok is false for identifiers
// outside this bot's namespace.
func parseCustomID(id string) (action, draftID string, ok bool) {
	parts := strings.SplitN(id, ":", 3)
	if len(parts) != 3 || parts[0] != customIDNamespace {
		return "", "", false
	}
	return parts[1], parts[2], true
}

func questionsEmbed(note *enrich.Note, questions []string) *discordgo.MessageEmbed {
	list := make([]string, len(questions))
	for i, q := range questions {
		list[i] = fmt.Sprintf("**Q%d.** %s", i+1, q)
	}
	title := "Idea"
	summary := ""
	if note != nil {
		title = note.Title
		summary = note.Summary
	}
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: fmt.Sprintf("**Draft Summary**\n%s\n\n**Open Questions**\n%s", summary, strings.Join(list, "\n")),
		Color:       embedColor,
	}
}

func previewEmbed(note *enrich.Note) *discordgo.MessageEmbed {
	if note == nil {
		return &discordgo.MessageEmbed{Title: "Idea", Color: embedColor}
	}

	impl := "• (to be refined)"
	if len(note.ImplementationNotes) > 0 {
		lines := make([]string, len(note.ImplementationNotes))
		for i, n := range note.ImplementationNotes {
			lines[i] = "• " + n
		}
		impl = strings.Join(lines, "\n")
	}

	parts := []string{
		fmt.Sprintf("**Summary**\n%s", orMissing(note.Summary, "(missing)")),
		fmt.Sprintf("\n**Gameplay Impact**\n%s", orMissing(note.GameplayImpact, "(unspecified)")),
		fmt.Sprintf("\n**Key Implementation Notes**\n%s", impl),
	}
	if len(note.Tags) > 0 {
		tags := make([]string, len(note.Tags))
		for i, t := range note.Tags {
			tags[i] = "`" + t + "`"
		}
		parts = append(parts, fmt.Sprintf("\n**Tags**\n%s", strings.Join(tags, " ")))
	}

	return &discordgo.MessageEmbed{
		Title:       orMissing(note.Title, "Idea"),
		Description: strings.Join(parts, "\n"),
		Color:       embedColor,
	}
}

func answerSkipRow(draftID string) discordgo.ActionsRow {
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "Answer questions",
				Style:    discordgo.PrimaryButton,
				CustomID: customID(actionAnswer, draftID),
			},
			discordgo.Button{
				Label:    "Skip to approval",
				Style:    discordgo.SecondaryButton,
				CustomID: customID(actionSkip, draftID),
			},
		},
	}
}

func approveCancelRow(draftID string) discordgo.ActionsRow {
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "Approve & Post",
				Style:    discordgo.SuccessButton,
				CustomID: customID(actionApprove, draftID),
			},
			discordgo.Button{
				Label:    "Cancel",
				Style:    discordgo.SecondaryButton,
				CustomID: customID(actionCancel, draftID),
			},
		},
	}
}

// retractPrompt disables the controls of a superseded prompt. Best effort:
// the message may already be gone.
func (b *Bot) retractPrompt(d *drafts.Draft) {
	if d == nil || d.PromptChannelID == "" || d.PromptMessageID == "" {
		return
	}
	empty := []discordgo.MessageComponent{}
	_, err := b.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    d.PromptChannelID,
		ID:         d.PromptMessageID,
		Components: &empty,
	})
	if err != nil {
		log.Printf("retract prompt %s/%s: %v", d.PromptChannelID, d.PromptMessageID, err)
	}
}

// userFacingError converts lifecycle faults into the message shown to the
// member; raw internal errors never reach the channel unformatted.
func userFacingError(err error) string {
	switch {
	case errors.Is(err, lifecycle.ErrNotFound):
		return "❌ This draft expired. Please try again."
	case errors.Is(err, lifecycle.ErrUnauthorized):
		return "⛔ Only the original submitter can continue this flow."
	case errors.Is(err, lifecycle.ErrWrongPhase):
		return "❌ This action is no longer available for this draft."
	default:
		return "❌ Something went wrong. Please try again."
	}
}

func orMissing(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
