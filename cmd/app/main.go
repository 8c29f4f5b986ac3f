// File: cmd/app/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tgbot-adapter/internal/application"
	"tgbot-adapter/internal/config"
	"tgbot-adapter/internal/domain/model"
	tele "tgbot-adapter/internal/infra/adapters/telegram"
	httpapi "tgbot-adapter/internal/infra/http"
	"tgbot-adapter/internal/infra/i18n"
	"tgbot-adapter/internal/infra/logging"
	"tgbot-adapter/internal/infra/metrics"
	"tgbot-adapter/internal/infra/worker"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, noop transport without a token)")
	stdin := flag.Bool("stdin", false, "handle one update read from stdin and exit")
	setWebhook := flag.Bool("set-webhook", false, "register webhook.url with Telegram and exit")
	deleteWebhook := flag.Bool("delete-webhook", false, "remove the registered webhook and exit")
	getUpdates := flag.Bool("get-updates", false, "fetch pending updates and exit")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// ---- Telegram ----
	var transport tele.Transport
	if cfg.Runtime.Dev && cfg.Bot.Token == "" {
		logger.Warn().Msg("[DEV MODE] no bot token; using noop transport")
		transport = tele.NewNoopTransport(logger)
	} else {
		bot, err := tele.NewTransport(&cfg.Bot)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram transport")
		}
		transport = bot
	}
	client, err := tele.NewClient(transport, &cfg.Bot, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram client")
	}
	logger.Info().
		Str("endpoint", logging.Redact(client.BaseURL(), cfg.Runtime.Dev)).
		Str("parse_mode", cfg.Bot.ParseMode).
		Msg("telegram client ready")

	// ---- One-shot operations ----
	switch {
	case *setWebhook:
		if cfg.Webhook.URL == "" {
			logger.Fatal().Msg("webhook.url is required for -set-webhook")
		}
		printResponse(client.SetWebhook(ctx, cfg.Webhook.URL, cfg.Webhook.SecretToken))
		return
	case *deleteWebhook:
		printResponse(client.DeleteWebhook(ctx))
		return
	case *getUpdates:
		printResponse(client.GetUpdates(ctx))
		return
	}

	translator, err := i18n.NewTranslator(i18n.LocalesFS, cfg.I18n.Lang)
	if err != nil {
		logger.Fatal().Err(err).Msg("i18n")
	}
	dispatcher, err := tele.NewDispatcher(client, translator, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("dispatcher")
	}

	// ---- Single update from stdin ----
	if *stdin || cfg.Bot.EagerIntake {
		facade, err := application.NewBotFacade(ctx, application.Options{EagerIntake: true, Input: os.Stdin}, dispatcher, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("intake")
		}
		out := facade.CurrentOutcome()
		logger.Info().
			Str("chat_id", facade.Current().ChatID).
			Str("outcome", out.Kind.String()).
			Str("command", out.Command).
			Str("last_received_text", facade.Current().LastReceivedText).
			Msg("update handled")
		return
	}

	// ---- Webhook server ----
	facade, err := application.NewBotFacade(ctx, application.Options{}, dispatcher, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("facade")
	}
	// Workers outlive the signal: updates acknowledged during shutdown
	// still have to be handled.
	poolCtx, cancelPool := context.WithCancel(context.Background())
	defer cancelPool()
	pool := worker.NewPool(cfg.Bot.Workers, logger)
	pool.Start(poolCtx)

	srv := httpapi.NewServer(cfg, facade, pool, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Error().Err(err).Msg("http server error")
			cancel()
		}
	}()

	// ---- Graceful shutdown ----
	<-ctx.Done()
	logger.Info().Msg("shutdown requested")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	pool.Stop()
	logger.Info().Msg("pending updates drained")
}

func printResponse(resp model.Response, err error) {
	if err != nil {
		log.Fatalf("telegram: %v", err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}
