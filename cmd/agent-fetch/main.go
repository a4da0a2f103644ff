package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/manikanta7cheruku/agent-fetch/internal/agent"
	"github.com/manikanta7cheruku/agent-fetch/internal/alerts"
	httpapi "github.com/manikanta7cheruku/agent-fetch/internal/api/http"
	"github.com/manikanta7cheruku/agent-fetch/internal/config"
	"github.com/manikanta7cheruku/agent-fetch/internal/history"
	"github.com/manikanta7cheruku/agent-fetch/internal/providers"
	"github.com/manikanta7cheruku/agent-fetch/internal/schedules"
	"github.com/manikanta7cheruku/agent-fetch/internal/scheduler"
	"github.com/manikanta7cheruku/agent-fetch/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("ERROR: config: %v", err)
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	weather := providers.NewOpenWeather(httpClient, cfg.OpenWeatherAPIKey)
	crypto := providers.NewCoinGecko(httpClient)

	hist := history.NewLog(cfg.HistoryMax)
	archive := storage.NewArchive(cfg.DataDir)

	schedSvc := schedules.NewService(weather, crypto, hist)
	alertSvc := alerts.NewService(weather, crypto, hist)

	assistant := agent.New(agent.Config{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.LLMModel,
		Mock:   cfg.LLMMode == "mock",
	}, weather, crypto)

	runner := scheduler.New(schedSvc, alertSvc, cfg.ScheduleInterval, cfg.AlertInterval)
	if err := runner.Start(); err != nil {
		log.Fatalf("ERROR: scheduler: %v", err)
	}
	defer runner.Stop()

	app := httpapi.NewServer(httpapi.Deps{
		Weather:   weather,
		Crypto:    crypto,
		Agent:     assistant,
		History:   hist,
		Schedules: schedSvc,
		Alerts:    alertSvc,
		Archive:   archive,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("INFO: agent-fetch listening on :%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("ERROR: server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("INFO: shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("ERROR: shutdown: %v", err)
	}
}
