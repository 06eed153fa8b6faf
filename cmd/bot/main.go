package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"hashwheel-bot/internal/artifact"
	"hashwheel-bot/internal/bot"
	"hashwheel-bot/internal/config"
	"hashwheel-bot/internal/database"
	"hashwheel-bot/internal/dedup"
	"hashwheel-bot/internal/ledger"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg := config.LoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var bank ledger.Ledger = ledger.NewMemory()
	if cfg.UsePostgres {
		db, err := database.ConnectPostgres(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("could not connect to database")
		}
		bank = ledger.NewGORM(db)
	}

	var filter dedup.Filter
	if cfg.UseRedis {
		rdb, err := database.ConnectRedis(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("could not connect to redis")
		}
		filter = dedup.NewRedis(rdb, cfg.DedupTTL)
	} else {
		mem := dedup.NewMemory(cfg.DedupTTL, cfg.DedupMaxEntries)
		mem.StartJanitor(ctx, time.Minute)
		filter = mem
	}

	b, err := bot.NewBot(cfg, bank, filter, artifact.Disabled{})
	if err != nil {
		log.Fatal().Err(err).Msg("could not create bot")
	}

	log.Info().Msg("service started")
	if err := b.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("bot stopped")
	}
	b.Stop()
}
