package bot

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/stake-plus/ideaforge/src/drafts"
	"github.com/stake-plus/ideaforge/src/enrich"
	"github.com/stake-plus/ideaforge/src/lifecycle"
	"github.com/stake-plus/ideaforge/src/ranking"
	"github.com/stake-plus/ideaforge/src/types"
)

const (
	threadNameLimit    = 95
	threadAutoArchive  = 1440 // minutes
	defaultIdeasListed = 5
)

func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.Bot || m.Author.ID == s.State.User.ID {
		return
	}
	if !strings.HasPrefix(m.Content, prefix) {
		return
	}

	args := strings.Fields(strings.TrimPrefix(m.Content, prefix))
	if len(args) == 0 {
		return
	}
	command := strings.ToLower(args[0])
	args = args[1:]

	switch command {
	case CommandIdea:
		if m.GuildID == "" {
			b.reply(s, m.ChannelID, "❌ Use this in a server channel.")
			return
		}
		rawText := b.sanitize(strings.TrimSpace(strings.Join(args, " ")))
		if rawText == "" {
			b.reply(s, m.ChannelID, "❗ Usage: `!idea <your idea>`")
			return
		}
		if _, err := b.startIdeaFlow(context.Background(), s, rawText, m.Author, m.ChannelID, m.ID); err != nil {
			log.Printf("idea flow: %v", err)
			b.reply(s, m.ChannelID, userFacingError(err))
		}

	case CommandIdeas:
		count := defaultIdeasListed
		if len(args) > 0 {
			if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
				count = n
			}
		}
		ranked, err := b.rankedIdeas(context.Background(), count)
		if err != nil {
			log.Printf("list ideas: %v", err)
			b.reply(s, m.ChannelID, "❌ Failed to fetch ideas.")
			return
		}
		if len(ranked) == 0 {
			b.reply(s, m.ChannelID, "No ideas found.")
			return
		}
		lines := make([]string, len(ranked))
		for i, idea := range ranked {
			lines[i] = fmt.Sprintf("**%d.** #%d — %s (Discord 👍 %d)\n%s", i+1, idea.Number, idea.Title, idea.Votes, idea.URL)
		}
		b.reply(s, m.ChannelID, strings.Join(lines, "\n\n"))
	}
}

// startIdeaFlow runs first-pass enrichment, opens (or reuses) the idea
// thread, and posts the first interactive prompt inside it. Returns the
// thread ID so callers can point the submitter at it.
func (b *Bot) startIdeaFlow(ctx context.Context, s *discordgo.Session, rawText string, author *discordgo.User, channelID, messageID string) (string, error) {
	d, err := b.ctrl.Create(ctx, lifecycle.CreateInput{
		AuthorID:  author.ID,
		AuthorTag: userTag(author),
		RawText:   rawText,
	})
	if err != nil {
		return "", err
	}

	thread, parentID, err := b.getOrStartIdeaThread(s, channelID, messageID, threadTitle(d))
	if err != nil {
		return "", fmt.Errorf("start idea thread: %w", err)
	}
	b.ctrl.RecordContext(d.ID, thread.ID, parentID)

	var msg *discordgo.Message
	if len(d.OpenQuestions) > 0 {
		msg, err = s.ChannelMessageSendComplex(thread.ID, &discordgo.MessageSend{
			Content:    fmt.Sprintf("<@%s> I have a few quick questions before finalizing. Answer now or skip:", author.ID),
			Embeds:     []*discordgo.MessageEmbed{questionsEmbed(d.Note, d.OpenQuestions)},
			Components: []discordgo.MessageComponent{answerSkipRow(d.ID)},
		})
	} else {
		msg, err = s.ChannelMessageSendComplex(thread.ID, &discordgo.MessageSend{
			Content:    fmt.Sprintf("<@%s> Here's the AI-enriched draft. Approve to post.", author.ID),
			Embeds:     []*discordgo.MessageEmbed{previewEmbed(d.Note)},
			Components: []discordgo.MessageComponent{approveCancelRow(d.ID)},
		})
	}
	if err != nil {
		return "", fmt.Errorf("post prompt: %w", err)
	}
	b.ctrl.RecordPrompt(d.ID, thread.ID, msg.ID)
	return thread.ID, nil
}

// getOrStartIdeaThread creates a public thread off the invoking message, or
// reuses the current channel when it already is a thread. Returns the thread
// and the parent channel for the eventual vote announcement.
func (b *Bot) getOrStartIdeaThread(s *discordgo.Session, channelID, messageID, title string) (*discordgo.Channel, string, error) {
	ch, err := s.Channel(channelID)
	if err == nil && ch.IsThread() {
		return ch, ch.ParentID, nil
	}

	name := enrich.Truncate("[IDEA] "+title, threadNameLimit)

	var thread *discordgo.Channel
	if messageID != "" {
		thread, err = s.MessageThreadStartComplex(channelID, messageID, &discordgo.ThreadStart{
			Name:                name,
			AutoArchiveDuration: threadAutoArchive,
		})
	} else {
		thread, err = s.ThreadStartComplex(channelID, &discordgo.ThreadStart{
			Name:                name,
			AutoArchiveDuration: threadAutoArchive,
			Type:                discordgo.ChannelTypeGuildPublicThread,
		})
	}
	if err != nil {
		return nil, "", err
	}
	return thread, channelID, nil
}

// rankedIdeas lists open idea issues, reads each mirrored Discord vote
// count, and orders them by score.
func (b *Bot) rankedIdeas(ctx context.Context, count int) ([]types.IdeaIssue, error) {
	return ranking.TopIdeas(ctx, b.tracker, count)
}

func (b *Bot) reply(s *discordgo.Session, channelID, content string) {
	for _, chunk := range splitMessage(content) {
		if _, err := s.ChannelMessageSend(channelID, chunk); err != nil {
			log.Printf("send message: %v", err)
			return
		}
	}
}

func threadTitle(d *drafts.Draft) string {
	if d.Note != nil && d.Note.Title != "" {
		return enrich.Truncate(d.Note.Title, 80)
	}
	return enrich.Truncate(d.RawText, 80)
}

func userTag(u *discordgo.User) string {
	if u.Discriminator != "" && u.Discriminator != "0" {
		return u.Username + "#" + u.Discriminator
	}
	return u.Username
}
