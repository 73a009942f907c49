package main

import (
	"context"
	"os"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/pkruglov/shopfloor-bot/internal/bot"
	"github.com/pkruglov/shopfloor-bot/internal/config"
	"github.com/pkruglov/shopfloor-bot/internal/flow"
	"github.com/pkruglov/shopfloor-bot/internal/rest"
	"github.com/pkruglov/shopfloor-bot/internal/storage/sqlite"
	"github.com/pkruglov/shopfloor-bot/internal/tasks"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/local.yaml"
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.MustLoad(cfgPath)
	if err != nil {
		log.WithError(err).Fatal("load config")
	}
	loc := cfg.Location()

	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		log.WithError(err).Fatal("open db")
	}
	defer db.Close()

	if os.Getenv("SEED_SAMPLE_DATA") == "1" {
		if err := db.SeedSampleData(context.Background()); err != nil {
			log.WithError(err).Fatal("seed sample data")
		}
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.WithError(err).Fatal("telegram auth")
	}

	svc := tasks.NewService(db, log, loc)
	svc.SetNotifier(bot.NewNotifier(botAPI, log))
	engine := flow.NewEngine(db, svc, loc)
	sessions := flow.NewSessions(time.Duration(cfg.SessionTTLMinutes) * time.Minute)

	api := rest.New(cfg.HTTPAddr, db, svc, engine, cfg.ReportsDir, log)
	go func() {
		if err := api.Run(); err != nil {
			log.WithError(err).Fatal("http api")
		}
	}()

	b := bot.New(botAPI, db, engine, sessions, log, cfg.AdminIDs, loc)
	log.WithField("bot", botAPI.Self.UserName).Info("bot started")
	if err := b.Start(); err != nil {
		log.WithError(err).Fatal("bot stopped")
	}
}
