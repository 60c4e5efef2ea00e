package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/stake-plus/lazy-consensus-bot/src/LCApi/webserver"
	"github.com/stake-plus/lazy-consensus-bot/src/LCBot/bot"
	"github.com/stake-plus/lazy-consensus-bot/src/LCBot/components/scheduler"
	"github.com/stake-plus/lazy-consensus-bot/src/LCBot/config"
	"github.com/stake-plus/lazy-consensus-bot/src/consensus"
	"github.com/stake-plus/lazy-consensus-bot/src/data"
	"github.com/stake-plus/lazy-consensus-bot/src/discord"
)

func main() {
	_ = godotenv.Load(".env")

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		mysqlDSN = "lazyconsensus:lazyconsensus@tcp(127.0.0.1:3306)/lazyconsensus"
	}
	db := data.MustMySQL(mysqlDSN)

	if err := data.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	cfg := config.Load(db)
	if cfg.Token == "" {
		log.Fatal("discord_token not set in database or environment")
	}
	if cfg.GuildID == "" || cfg.VotingChannelID == "" {
		log.Fatal("guild_id and voting_channel_id must be set")
	}

	rdb := data.MustRedis(cfg.RedisURL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := data.NewProposalStore(db)
	index, err := consensus.LoadIndex(ctx, store)
	if err != nil {
		log.Fatalf("load proposal index: %v", err)
	}
	log.Printf("Loaded %d active proposals from the database", index.Len())

	gate := consensus.NewRecoveryGate()
	archiver := consensus.NewArchiver(store, func(channelID, messageID string) string {
		return discord.MessageURL(cfg.GuildID, channelID, messageID)
	})
	engine := consensus.NewEngine(store, index, gate, archiver)

	b, err := bot.New(cfg, engine, rdb)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}
	if err := b.Start(); err != nil {
		log.Fatalf("Failed to start bot: %v", err)
	}

	sched := scheduler.New(engine, 15*time.Second, b.ApplyGrant, b.AnnounceAccepted)
	go sched.Run(ctx)

	router := webserver.New(webserver.Config{
		Port:      cfg.Port,
		JWTSecret: cfg.JWTSecret,
		APIKey:    cfg.APIKey,
	}, engine, store, rdb)

	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Port)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server: %v", err)
		}
	}()

	log.Println("Lazy consensus bot is running. Press CTRL-C to exit.")

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	b.Stop()
	log.Println("Lazy consensus bot stopped gracefully")
}
