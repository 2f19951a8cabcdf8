package bot

import (
	"context"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/stake-plus/ideaforge/src/data"
	"github.com/stake-plus/ideaforge/src/lifecycle"
	"github.com/stake-plus/ideaforge/src/tracker"
	"github.com/stake-plus/ideaforge/src/votes"
)

const prefix = "!"

type Config struct {
	Token      string
	GuildID    string
	Controller *lifecycle.Controller
	Reconciler *votes.Reconciler
	Tracker    *tracker.Client
	Redis      *redis.Client // optional; lifecycle events are published when set
}

// Bot wires the idea lifecycle to Discord: prefix and slash commands in,
// prompts and vote announcements out, reaction events into the reconciler.
type Bot struct {
	session   *discordgo.Session
	guildID   string
	ctrl      *lifecycle.Controller
	rec       *votes.Reconciler
	tracker   *tracker.Client
	rdb       *redis.Client
	sanitizer *bluemonday.Policy
}

func New(cfg Config) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, err
	}

	b := &Bot{
		session:   dg,
		guildID:   cfg.GuildID,
		ctrl:      cfg.Controller,
		rec:       cfg.Reconciler,
		tracker:   cfg.Tracker,
		rdb:       cfg.Redis,
		sanitizer: bluemonday.StrictPolicy(),
	}

	dg.AddHandler(b.handleReady)
	dg.AddHandler(b.handleMessageCreate)
	dg.AddHandler(b.handleInteractionCreate)
	dg.AddHandler(b.handleReactionAdd)
	dg.AddHandler(b.handleReactionRemove)

	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent |
		discordgo.IntentsGuildMessageReactions

	return b, nil
}

func (b *Bot) Start() error {
	return b.session.Open()
}

func (b *Bot) Stop() error {
	return b.session.Close()
}

func (b *Bot) handleReady(s *discordgo.Session, event *discordgo.Ready) {
	log.Printf("Discord bot logged in as %s", event.User.Username)
}

// publishEvent mirrors a lifecycle event onto the shared stream. Best effort.
func (b *Bot) publishEvent(ctx context.Context, payload map[string]interface{}) {
	if b.rdb == nil {
		return
	}
	if err := data.PublishEvent(ctx, b.rdb, payload); err != nil {
		log.Printf("publish event: %v", err)
	}
}

// sanitize strips markup from user-submitted text before it reaches the
// enrichment model or the tracker.
func (b *Bot) sanitize(raw string) string {
	return b.sanitizer.Sanitize(raw)
}
