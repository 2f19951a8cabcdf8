package bot

import (
	"context"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/stake-plus/ideaforge/src/votes"
)

func (b *Bot) handleReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	fromBot := r.UserID == s.State.User.ID
	if !fromBot && r.Member != nil && r.Member.User != nil {
		fromBot = r.Member.User.Bot
	}
	b.handleReaction(s, r.MessageReaction, fromBot)
}

func (b *Bot) handleReactionRemove(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
	fromBot := r.UserID == s.State.User.ID
	if !fromBot && r.Emoji.Name == votes.UpvoteEmoji && b.rec.Manages(r.MessageID) {
		// Removal events carry no member payload; resolve the reactor to
		// filter automated identities.
		if u, err := s.User(r.UserID); err == nil {
			fromBot = u.Bot
		}
	}
	b.handleReaction(s, r.MessageReaction, fromBot)
}

func (b *Bot) handleReaction(s *discordgo.Session, r *discordgo.MessageReaction, fromBot bool) {
	if fromBot || r.Emoji.Name != votes.UpvoteEmoji {
		return
	}
	if !b.rec.Manages(r.MessageID) {
		return
	}

	total, err := b.upvoteTotal(s, r.ChannelID, r.MessageID)
	if err != nil {
		log.Printf("fetch reaction total for %s: %v", r.MessageID, err)
		return
	}

	ctx := context.Background()
	err = b.rec.HandleEvent(ctx, votes.Event{
		MessageID: r.MessageID,
		Emoji:     r.Emoji.Name,
		FromBot:   fromBot,
		Total:     total,
	})
	if err != nil {
		log.Printf("reconcile votes for %s: %v", r.MessageID, err)
		return
	}

	if issue, ok := b.rec.Resolve(r.MessageID); ok {
		b.publishEvent(ctx, map[string]interface{}{
			"event": "vote_updated",
			"issue": issue,
			"votes": votes.Count(total),
		})
	}
}

// upvoteTotal reads the current 👍 count on a message, including this bot's
// seed reaction.
func (b *Bot) upvoteTotal(s *discordgo.Session, channelID, messageID string) (int, error) {
	msg, err := s.ChannelMessage(channelID, messageID)
	if err != nil {
		return 0, err
	}
	for _, reaction := range msg.Reactions {
		if reaction.Emoji != nil && reaction.Emoji.Name == votes.UpvoteEmoji {
			return reaction.Count, nil
		}
	}
	return 0, nil
}
