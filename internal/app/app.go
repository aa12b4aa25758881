package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Adithyan773/kisan-mitra/internal/config"
	"github.com/Adithyan773/kisan-mitra/internal/core"
	"github.com/Adithyan773/kisan-mitra/internal/core/agent"
	db "github.com/Adithyan773/kisan-mitra/internal/core/database"
	"github.com/Adithyan773/kisan-mitra/internal/core/search"
	"github.com/Adithyan773/kisan-mitra/internal/core/speech"
	"github.com/Adithyan773/kisan-mitra/internal/core/translation"
	"github.com/Adithyan773/kisan-mitra/internal/services"
)

type App struct {
	Store       core.Store
	Agent       *agent.Agent
	Transcriber *speech.Transcriber
	Synthesizer *speech.Synthesizer
	Translator  *translation.Client
	Server      *Server
}

// NewApp builds every client and service and wires the HTTP server.
// ctx must outlive the app: the Google clients keep it for credential
// refresh.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := db.NewDatabaseClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	slog.Info("database initialized and ready")

	searchClient, err := search.NewClient(ctx, cfg.GeminiAPIKey, cfg.MarketPricesCX, cfg.GovSchemesCX, cfg.WeatherCX)
	if err != nil {
		return nil, fmt.Errorf("search client: %w", err)
	}

	kisanAgent, err := agent.New(ctx, cfg.GeminiAPIKey, cfg.GenModel, searchClient)
	if err != nil {
		return nil, fmt.Errorf("agent: %w", err)
	}
	slog.Info("agent initialized", "model", cfg.GenModel)

	transcriber, err := speech.NewTranscriber(ctx)
	if err != nil {
		return nil, fmt.Errorf("transcriber: %w", err)
	}
	synthesizer, err := speech.NewSynthesizer(ctx)
	if err != nil {
		return nil, fmt.Errorf("synthesizer: %w", err)
	}
	translator, err := translation.NewClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return nil, fmt.Errorf("translator: %w", err)
	}
	slog.Info("speech and translation clients ready")

	users := services.NewUserService(store, cfg.PasswordScheme)
	interactions := services.NewInteractionService(
		store, kisanAgent, transcriber, synthesizer, translator, cfg.TranscribeWorkers)

	server := NewServer(cfg, store, users, interactions)

	return &App{
		Store:       store,
		Agent:       kisanAgent,
		Transcriber: transcriber,
		Synthesizer: synthesizer,
		Translator:  translator,
		Server:      server,
	}, nil
}

func (a *App) Close() {
	if a.Store != nil {
		_ = a.Store.Close()
	}
	if a.Agent != nil {
		_ = a.Agent.Close()
	}
	if a.Transcriber != nil {
		_ = a.Transcriber.Close()
	}
	if a.Synthesizer != nil {
		_ = a.Synthesizer.Close()
	}
	if a.Translator != nil {
		_ = a.Translator.Close()
	}
}
