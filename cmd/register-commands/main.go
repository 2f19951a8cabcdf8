package main

import (
	"flag"
	"log"
	"os"

	"github.com/bwmarrin/discordgo"
	"github.com/stake-plus/ideaforge/src/bot"
	"github.com/stake-plus/ideaforge/src/config"
)

// One-shot utility to (re)register the guild slash commands. Run it after a
// command definition changes; the bot itself never registers commands.
func main() {
	remove := flag.Bool("delete", false, "delete all guild commands instead of registering")
	flag.Parse()

	cfg := config.Load(nil)
	if cfg.DiscordToken == "" {
		log.Fatal("DISCORD_TOKEN not set")
	}
	if cfg.GuildID == "" {
		log.Fatal("DISCORD_GUILD_ID not set")
	}

	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		log.Fatalf("discord session: %v", err)
	}
	if err := dg.Open(); err != nil {
		log.Fatalf("discord open: %v", err)
	}
	defer dg.Close()

	if *remove {
		if err := bot.DeleteSlashCommands(dg, cfg.GuildID); err != nil {
			log.Fatalf("delete commands: %v", err)
		}
		log.Println("slash commands deleted")
		return
	}

	names := flag.Args()
	if err := bot.RegisterSlashCommands(dg, cfg.GuildID, names...); err != nil {
		log.Printf("register commands: %v", err)
		os.Exit(1)
	}
	log.Println("slash commands registered")
}
