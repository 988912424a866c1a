package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/template/html/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/latestcomment/boardroom-chat/internal/config"
	"github.com/latestcomment/boardroom-chat/internal/handlers"
	"github.com/latestcomment/boardroom-chat/internal/logger"
	"github.com/latestcomment/boardroom-chat/internal/nonce"
	"github.com/latestcomment/boardroom-chat/internal/observe"
	"github.com/latestcomment/boardroom-chat/internal/services"
)

const shutdownTimeout = 15 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the board room page, the relay endpoint and the event stream",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.New(cfg.Server.LogLevel, cfg.Server.LogJSON)
	clock := clockwork.NewRealClock()
	metrics := observe.Default()

	issuer, err := nonce.NewIssuer(cfg.Security.NonceSecret, cfg.Security.NonceLifetime, clock)
	if err != nil {
		return err
	}
	backend, err := buildBackend(ctx, cfg, clock, log)
	if err != nil {
		return err
	}

	relayService := services.NewRelayService(backend, cfg.Relay.Timeout, clock, log, metrics)
	sessions := services.NewSessionService(clock, log, metrics)

	var relay services.Relay = &services.LocalRelay{Service: relayService, Issuer: issuer, Action: cfg.Relay.Action}
	if cfg.Relay.URL != "" {
		relay = services.NewHTTPRelay(cfg.Relay.URL, cfg.Relay.Action, cfg.Relay.Timeout)
	}

	h := handlers.NewHandler(relayService, sessions, issuer, cfg.Relay.Action, log)
	ws := &handlers.WebSocketHandler{
		Sessions:    sessions,
		Relay:       relay,
		Clock:       clock,
		TypingDelay: cfg.Playback.TypingDelay,
		PauseDelay:  cfg.Playback.PauseDelay,
		Log:         log,
		Metrics:     metrics,
	}

	app := fiber.New(fiber.Config{
		Views:                 html.New(cfg.Server.StaticDir, ".html"),
		DisableStartupMessage: true,
	})
	app.Use(fiberlogger.New())
	app.Static("/assets", cfg.Server.StaticDir)

	app.Get("/", h.HomePage)
	app.Post("/ajax", h.ProcessPitch)
	app.Get("/healthz", h.Healthz)
	app.Get("/ws", ws.WebSocketMiddleware, websocket.New(ws.HandleWebSocket))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("board room listening", logrus.Fields{
			"addr":   cfg.Server.Addr,
			"engine": backend.Name(),
			"relay":  cfg.Relay.URL,
		})
		return app.Listen(cfg.Server.Addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down", logrus.Fields{"sessions": sessions.Count()})
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})
	return g.Wait()
}
