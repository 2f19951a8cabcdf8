package config

import (
	"os"

	"github.com/stake-plus/ideaforge/src/data"
	"gorm.io/gorm"
)

type Config struct {
	// Discord
	DiscordToken string
	AppID        string
	GuildID      string

	// Enrichment (OpenAI-compatible chat completions)
	OpenAIKey   string
	OpenAIModel string

	// Tracker (GitHub)
	GithubToken string
	GithubOwner string
	GithubRepo  string

	// Infrastructure
	MySQLDSN   string
	RedisURL   string
	ListenAddr string
	JWTSecret  string
}

// Load resolves configuration from the settings table when a database is
// available, falling back to environment variables. db may be nil.
func Load(db *gorm.DB) Config {
	return Config{
		DiscordToken: setting(db, "discord_token", "DISCORD_TOKEN", ""),
		AppID:        setting(db, "discord_app_id", "DISCORD_APP_ID", ""),
		GuildID:      setting(db, "guild_id", "DISCORD_GUILD_ID", ""),
		OpenAIKey:    setting(db, "openai_api_key", "OPENAI_API_KEY", ""),
		OpenAIModel:  setting(db, "openai_model", "OPENAI_MODEL", "gpt-4o-mini"),
		GithubToken:  setting(db, "github_token", "GITHUB_TOKEN", ""),
		GithubOwner:  setting(db, "github_owner", "GITHUB_OWNER", ""),
		GithubRepo:   setting(db, "github_repo", "GITHUB_REPO", ""),
		MySQLDSN:     getenv("MYSQL_DSN", ""),
		RedisURL:     getenv("REDIS_URL", ""),
		ListenAddr:   setting(db, "listen_addr", "LISTEN_ADDR", ":8090"),
		JWTSecret:    setting(db, "jwt_secret", "JWT_SECRET", ""),
	}
}

func setting(db *gorm.DB, name, envKey, def string) string {
	if db != nil {
		if v := data.GetSetting(name); v != "" {
			return v
		}
	}
	return getenv(envKey, def)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
