package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/stake-plus/ideaforge/src/bot"
	"github.com/stake-plus/ideaforge/src/config"
	"github.com/stake-plus/ideaforge/src/data"
	"github.com/stake-plus/ideaforge/src/drafts"
	"github.com/stake-plus/ideaforge/src/enrich"
	"github.com/stake-plus/ideaforge/src/lifecycle"
	"github.com/stake-plus/ideaforge/src/tracker"
	"github.com/stake-plus/ideaforge/src/votes"
	"github.com/stake-plus/ideaforge/src/webserver"
	"gorm.io/gorm"
)

func main() {
	// Settings table is optional; env-only deployments skip MySQL entirely.
	var db *gorm.DB
	if dsn := os.Getenv("MYSQL_DSN"); dsn != "" {
		db = data.MustMySQL(dsn)
		if err := data.LoadSettings(db); err != nil {
			log.Printf("load settings: %v", err)
		}
	}

	cfg := config.Load(db)
	if cfg.DiscordToken == "" {
		log.Fatal("discord token not set in database or environment")
	}
	if cfg.GithubToken == "" || cfg.GithubOwner == "" || cfg.GithubRepo == "" {
		log.Fatal("github token, owner and repo must be set")
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb = data.MustRedis(cfg.RedisURL)
	}

	enricher := enrich.New(enrich.Config{
		APIKey: cfg.OpenAIKey,
		Model:  cfg.OpenAIModel,
	})
	trackerClient := tracker.NewClient(tracker.Config{
		Owner: cfg.GithubOwner,
		Repo:  cfg.GithubRepo,
		Token: cfg.GithubToken,
	})

	store := drafts.NewStore()
	links := votes.NewLinkTable()
	ctrl := lifecycle.NewController(store, enricher, trackerClient, links)
	rec := votes.NewReconciler(links, trackerClient)

	b, err := bot.New(bot.Config{
		Token:      cfg.DiscordToken,
		GuildID:    cfg.GuildID,
		Controller: ctrl,
		Reconciler: rec,
		Tracker:    trackerClient,
		Redis:      rdb,
	})
	if err != nil {
		log.Fatalf("create bot: %v", err)
	}
	if err := b.Start(); err != nil {
		log.Fatalf("start bot: %v", err)
	}

	// Background maintenance: expired-draft sweep every minute, settings
	// refresh every five when a database is attached.
	c := cron.New()
	if _, err := c.AddFunc("@every 60s", func() {
		if n := store.Sweep(); n > 0 {
			log.Printf("swept %d expired drafts", n)
		}
	}); err != nil {
		log.Fatalf("schedule sweep: %v", err)
	}
	if db != nil {
		if _, err := c.AddFunc("@every 5m", func() {
			if err := data.RefreshSettings(db); err != nil {
				log.Printf("refresh settings: %v", err)
			}
		}); err != nil {
			log.Fatalf("schedule settings refresh: %v", err)
		}
	}
	c.Start()

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: webserver.New(cfg, trackerClient),
	}
	go func() {
		log.Printf("http api listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http api: %v", err)
		}
	}()

	log.Println("ideaforge is running. Press CTRL-C to exit.")

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	c.Stop()
	if err := b.Stop(); err != nil {
		log.Printf("bot stop: %v", err)
	}
	log.Println("ideaforge stopped gracefully")
}
