package bot

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/stake-plus/ideaforge/src/enrich"
	"github.com/stake-plus/ideaforge/src/lifecycle"
	"github.com/stake-plus/ideaforge/src/votes"
)

func (b *Bot) handleInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleSlashCommand(s, i)
	case discordgo.InteractionMessageComponent:
		b.handleButton(s, i)
	case discordgo.InteractionModalSubmit:
		b.handleModalSubmit(s, i)
	}
}

func (b *Bot) handleSlashCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()

	switch data.Name {
	case CommandIdea:
		b.handleIdeaSlash(s, i, data)
	case CommandIdeas:
		b.handleIdeasSlash(s, i, data)
	case CommandPriority:
		b.handlePrioritySlash(s, i, data)
	default:
		respondEphemeral(s, i, "Unknown command")
	}
}

func (b *Bot) handleIdeaSlash(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	if i.GuildID == "" {
		respondEphemeral(s, i, "❌ Use this in a server channel.")
		return
	}

	rawText := ""
	if len(data.Options) > 0 {
		rawText = b.sanitize(strings.TrimSpace(data.Options[0].StringValue()))
	}
	if rawText == "" {
		respondEphemeral(s, i, "❗ Describe your idea.")
		return
	}

	// Enrichment takes a while; acknowledge within the 3s window.
	if err := deferResponse(s, i, true); err != nil {
		log.Printf("defer idea command: %v", err)
		return
	}

	threadID, err := b.startIdeaFlow(context.Background(), s, rawText, interactionUser(i), i.ChannelID, "")
	if err != nil {
		log.Printf("idea flow: %v", err)
		editResponse(s, i, userFacingError(err))
		return
	}
	editResponse(s, i, fmt.Sprintf("🧵 Thread opened: <#%s>", threadID))
}

func (b *Bot) handleIdeasSlash(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	if len(data.Options) == 0 || data.Options[0].Name != "top" {
		respondEphemeral(s, i, "Unknown subcommand")
		return
	}

	count := defaultIdeasListed
	for _, opt := range data.Options[0].Options {
		if opt.Name == "count" {
			count = int(opt.IntValue())
		}
	}

	if err := deferResponse(s, i, false); err != nil {
		log.Printf("defer ideas command: %v", err)
		return
	}

	ranked, err := b.rankedIdeas(context.Background(), count)
	if err != nil {
		log.Printf("list ideas: %v", err)
		editResponse(s, i, "❌ Failed to fetch ideas.")
		return
	}

	lines := make([]string, len(ranked))
	for idx, idea := range ranked {
		lines[idx] = fmt.Sprintf("**%d.** #%d — %s  (Discord 👍 %d)", idx+1, idea.Number, idea.Title, idea.Votes)
	}
	description := strings.Join(lines, "\n\n")
	if description == "" {
		description = "No ideas found."
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Top %d Ideas (Discord votes)", count),
		Description: description,
		Color:       embedColor,
	}
	editResponseEmbed(s, i, embed)
}

func (b *Bot) handlePrioritySlash(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	var issue, level int
	for _, opt := range data.Options {
		switch opt.Name {
		case "issue":
			issue = int(opt.IntValue())
		case "level":
			level = int(opt.IntValue())
		}
	}

	if err := deferResponse(s, i, false); err != nil {
		log.Printf("defer priority command: %v", err)
		return
	}

	if err := b.tracker.SetPriorityLabel(context.Background(), issue, level); err != nil {
		log.Printf("set priority: %v", err)
		editResponse(s, i, "❌ Failed to set priority.")
		return
	}
	editResponse(s, i, fmt.Sprintf("✅ Set priority **P%d** on issue #%d", level, issue))
}

func (b *Bot) handleButton(s *discordgo.Session, i *discordgo.InteractionCreate) {
	action, draftID, ok := parseCustomID(i.MessageComponentData().CustomID)
	if !ok {
		return
	}
	user := interactionUser(i)

	switch action {
	case actionAnswer:
		b.handleAnswerButton(s, i, draftID, user)
	case actionSkip:
		b.handleSkipButton(s, i, draftID, user)
	case actionApprove:
		b.handleApproveButton(s, i, draftID, user)
	case actionCancel:
		b.handleCancelButton(s, i, draftID, user)
	}
}

func (b *Bot) handleAnswerButton(s *discordgo.Session, i *discordgo.InteractionCreate, draftID string, user *discordgo.User) {
	questions, err := b.ctrl.Questions(draftID, user.ID)
	if err != nil {
		respondEphemeral(s, i, userFacingError(err))
		return
	}
	if len(questions) == 0 {
		respondEphemeral(s, i, "No questions to answer.")
		return
	}

	rows := make([]discordgo.MessageComponent, 0, len(questions))
	for idx, q := range questions {
		rows = append(rows, discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID: fmt.Sprintf("q%d", idx+1),
					// Labels are capped short; the full question goes in
					// the placeholder.
					Label:       fmt.Sprintf("Q%d", idx+1),
					Style:       discordgo.TextInputParagraph,
					Placeholder: enrich.Truncate(q, 100),
					Required:    false,
					MaxLength:   1000,
				},
			},
		})
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID:   customID(actionAnswers, draftID),
			Title:      "Answer questions (you can skip any)",
			Components: rows,
		},
	})
	if err != nil {
		log.Printf("show answers modal: %v", err)
	}
}

func (b *Bot) handleSkipButton(s *discordgo.Session, i *discordgo.InteractionCreate, draftID string, user *discordgo.User) {
	d, err := b.ctrl.Skip(draftID, user.ID)
	if err != nil {
		respondEphemeral(s, i, userFacingError(err))
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       strings.TrimPrefix(d.Title, "[IDEA] "),
		Description: "You chose to skip questions. Approve to post.",
		Color:       embedColor,
	}
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    "Review the draft below.",
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: []discordgo.MessageComponent{approveCancelRow(draftID)},
		},
	})
	if err != nil {
		log.Printf("update skip prompt: %v", err)
		return
	}
	if i.Message != nil {
		b.ctrl.RecordPrompt(draftID, i.ChannelID, i.Message.ID)
	}
}

func (b *Bot) handleApproveButton(s *discordgo.Session, i *discordgo.InteractionCreate, draftID string, user *discordgo.User) {
	ctx := context.Background()

	d, issue, err := b.ctrl.Approve(ctx, draftID, user.ID)
	if err != nil {
		respondEphemeral(s, i, userFacingError(err))
		return
	}

	// Clear the clicked prompt's controls and retract any earlier one.
	empty := []discordgo.MessageComponent{}
	respErr := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    "Posting your idea…",
			Embeds:     []*discordgo.MessageEmbed{},
			Components: empty,
		},
	})
	if respErr != nil {
		log.Printf("ack approve: %v", respErr)
	}
	b.retractPrompt(d)

	voteContent := fmt.Sprintf("Idea #%d: %s\n(React with %s to vote)", issue.Number, issue.Title, votes.UpvoteEmoji)

	// The vote announcement goes to the parent channel; fall back to the
	// interaction channel when it cannot be resolved.
	var voteMsg *discordgo.Message
	if parentID := b.resolveParentChannel(s, d.ThreadID, d.ParentChannelID); parentID != "" {
		voteMsg, err = s.ChannelMessageSend(parentID, voteContent)
		if err != nil {
			log.Printf("post vote announcement: %v", err)
			voteMsg = nil
		}
	}
	if voteMsg == nil {
		voteMsg, err = s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{Content: voteContent})
		if err != nil {
			log.Printf("post vote announcement followup: %v", err)
		}
	}

	if voteMsg != nil {
		if err := s.MessageReactionAdd(voteMsg.ChannelID, voteMsg.ID, votes.UpvoteEmoji); err != nil {
			log.Printf("seed vote reaction: %v", err)
		}
		if err := b.ctrl.RegisterVoteMessage(ctx, voteMsg.ID, issue.Number); err != nil {
			log.Printf("register vote message: %v", err)
		}
	}

	if d.ThreadID != "" {
		b.reply(s, d.ThreadID, fmt.Sprintf("✅ Created idea **#%d** - %s", issue.Number, issue.Title))
	}

	b.publishEvent(ctx, map[string]interface{}{
		"event":  "idea_published",
		"issue":  issue.Number,
		"title":  issue.Title,
		"url":    issue.URL,
		"author": user.ID,
	})

	if _, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: fmt.Sprintf("Done. Idea #%d posted.", issue.Number),
		Flags:   discordgo.MessageFlagsEphemeral,
	}); err != nil {
		log.Printf("approve confirmation: %v", err)
	}
}

func (b *Bot) handleCancelButton(s *discordgo.Session, i *discordgo.InteractionCreate, draftID string, user *discordgo.User) {
	d, err := b.ctrl.Cancel(draftID, user.ID)
	if err != nil {
		respondEphemeral(s, i, userFacingError(err))
		return
	}
	b.retractPrompt(d)

	empty := []discordgo.MessageComponent{}
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    "Draft **canceled**.",
			Embeds:     []*discordgo.MessageEmbed{},
			Components: empty,
		},
	})
	if err != nil {
		log.Printf("ack cancel: %v", err)
	}
}

func (b *Bot) handleModalSubmit(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ModalSubmitData()
	action, draftID, ok := parseCustomID(data.CustomID)
	if !ok || action != actionAnswers {
		return
	}
	user := interactionUser(i)

	// Validate before deferring so refusals stay ephemeral.
	if _, err := b.ctrl.Questions(draftID, user.ID); err != nil {
		respondEphemeral(s, i, userFacingError(err))
		return
	}

	if err := deferResponse(s, i, false); err != nil {
		log.Printf("defer modal response: %v", err)
		return
	}

	answers := extractModalAnswers(data)
	d, err := b.ctrl.Answer(context.Background(), draftID, user.ID, answers)
	if err != nil {
		editResponse(s, i, userFacingError(err))
		return
	}
	b.retractPrompt(d)

	content := "Thanks! Here's the refined draft. Approve to post."
	embeds := []*discordgo.MessageEmbed{previewEmbed(d.Note)}
	components := []discordgo.MessageComponent{approveCancelRow(draftID)}
	msg, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content:    &content,
		Embeds:     &embeds,
		Components: &components,
	})
	if err != nil {
		log.Printf("post refined prompt: %v", err)
		return
	}
	b.ctrl.RecordPrompt(draftID, i.ChannelID, msg.ID)
}

// extractModalAnswers pulls the qN text inputs out of a modal submission in
// question order. Blank answers stay blank.
func extractModalAnswers(data discordgo.ModalSubmitInteractionData) []string {
	byID := make(map[string]string)
	for _, row := range data.Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, comp := range actionsRow.Components {
			input, ok := comp.(*discordgo.TextInput)
			if !ok {
				continue
			}
			byID[input.CustomID] = input.Value
		}
	}

	answers := make([]string, 0, len(byID))
	for n := 1; n <= lifecycle.MaxQuestions; n++ {
		v, ok := byID[fmt.Sprintf("q%d", n)]
		if !ok {
			break
		}
		answers = append(answers, v)
	}
	return answers
}

// resolveParentChannel finds where the vote announcement belongs.
func (b *Bot) resolveParentChannel(s *discordgo.Session, threadID, storedParentID string) string {
	if threadID != "" {
		if ch, err := s.Channel(threadID); err == nil && ch.IsThread() && ch.ParentID != "" {
			return ch.ParentID
		}
	}
	return storedParentID
}

func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("ephemeral response: %v", err)
	}
}

func deferResponse(s *discordgo.Session, i *discordgo.InteractionCreate, ephemeral bool) error {
	data := &discordgo.InteractionResponseData{}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: data,
	})
}

func editResponse(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &content}); err != nil {
		log.Printf("edit response: %v", err)
	}
}

func editResponseEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	embeds := []*discordgo.MessageEmbed{embed}
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Embeds: &embeds}); err != nil {
		log.Printf("edit response: %v", err)
	}
}
