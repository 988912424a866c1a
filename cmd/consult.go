package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/latestcomment/boardroom-chat/internal/config"
	"github.com/latestcomment/boardroom-chat/internal/logger"
	"github.com/latestcomment/boardroom-chat/internal/nonce"
	"github.com/latestcomment/boardroom-chat/internal/observe"
	"github.com/latestcomment/boardroom-chat/internal/services"
	"github.com/latestcomment/boardroom-chat/internal/terminal"
)

var (
	consultRelayURL string
	consultFast     bool
)

func newConsultCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consult [pitch...]",
		Short: "Pitch the board from the terminal and watch the meeting play back",
		Long: `Sends a pitch to the board and plays the transcript back in the terminal
with the same pacing as the web page. Without arguments the pitch is read from stdin.

Example:
  boardroom consult "Drone-delivered laundry for hostels"
  echo "Moses, I need a schema for a loyalty app" | boardroom consult`,
		RunE: runConsult,
	}
	cmd.Flags().StringVar(&consultRelayURL, "relay-url", "", "Relay endpoint to use instead of calling the engine directly")
	cmd.Flags().BoolVar(&consultFast, "fast", false, "Skip the typing and pause delays")
	return cmd
}

func runConsult(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if consultRelayURL != "" {
		cfg.Relay.URL = consultRelayURL
	}
	if consultFast {
		cfg.Playback.TypingDelay = 0
		cfg.Playback.PauseDelay = 0
	}

	pitch := strings.Join(args, " ")
	if pitch == "" {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read pitch: %w", err)
		}
		pitch = string(raw)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.NewWithWriter(os.Stderr, "warn", false)
	clock := clockwork.NewRealClock()
	metrics := observe.Default()

	issuer, err := nonce.NewIssuer(cfg.Security.NonceSecret, cfg.Security.NonceLifetime, clock)
	if err != nil {
		return err
	}

	var relay services.Relay
	if cfg.Relay.URL != "" {
		relay = services.NewHTTPRelay(cfg.Relay.URL, cfg.Relay.Action, cfg.Relay.Timeout)
	} else {
		backend, err := buildBackend(ctx, cfg, clock, log)
		if err != nil {
			return err
		}
		relay = &services.LocalRelay{
			Service: services.NewRelayService(backend, cfg.Relay.Timeout, clock, log, metrics),
			Issuer:  issuer,
			Action:  cfg.Relay.Action,
		}
	}

	view := terminal.NewView(cmd.OutOrStdout(), cmd.ErrOrStderr())
	player := services.NewSequencer(view, clock, cfg.Playback.TypingDelay, cfg.Playback.PauseDelay, log, metrics)
	ctrl := services.NewController(view, relay, player, issuer.Create(cfg.Relay.Action), log, metrics)

	err = ctrl.Submit(ctx, pitch)
	if errors.Is(err, services.ErrEmptyInput) {
		return errors.New("a pitch is required")
	}
	return err
}
