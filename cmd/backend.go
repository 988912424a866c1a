package main

import (
	"context"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/latestcomment/boardroom-chat/internal/config"
	"github.com/latestcomment/boardroom-chat/internal/llm"
	"github.com/latestcomment/boardroom-chat/internal/logger"
)

// buildBackend returns the configured engine wrapped in retries.
func buildBackend(ctx context.Context, cfg *config.Config, clock clockwork.Clock, log *logger.Logger) (llm.Backend, error) {
	p := cfg.ActiveProvider()
	var opts []llm.Option
	if p.BaseURL != "" {
		opts = append(opts, llm.WithBaseURL(p.BaseURL))
	}

	var (
		b   llm.Backend
		err error
	)
	switch cfg.Backend.Engine {
	case config.EngineXAI:
		b, err = llm.NewXAI(p.APIKey, p.Model, opts...)
	default:
		b, err = llm.NewGemini(ctx, p.APIKey, p.Model, opts...)
	}
	if err != nil {
		return nil, err
	}
	return llm.WithRetry(b, cfg.Backend.MaxRetries, clock, log.With(logrus.Fields{"engine": b.Name()})), nil
}
