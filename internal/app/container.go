// Package app assembles the application from configuration: client stacks,
// the confirmation engine, the tool registry and the assistant engine.
package app

import (
	"fmt"
	"time"

	"aria/internal/assistant"
	"aria/internal/config"
	"aria/internal/confirm"
	"aria/internal/graph"
	"aria/internal/llm"
	"aria/internal/observability"
	"aria/internal/session"
	"aria/internal/tools"
	"aria/internal/voice"
)

// Container holds the wired application.
type Container struct {
	Config     config.Config
	Logger     *observability.Logger
	Metrics    *observability.MetricsCollector
	Graph      *graph.Client
	LLM        llm.Client
	Confirms   *confirm.Engine
	Dispatcher *tools.Dispatcher
	Registry   *tools.Registry
	Sessions   session.Store
	Assistant  *assistant.Engine

	Transcriber voice.Transcriber
	Synthesizer voice.Synthesizer
}

// Build wires every component from the configuration.
func Build(cfg config.Config) (*Container, error) {
	logger := observability.NewLogger(observability.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	metrics, err := observability.NewMetricsCollector(observability.MetricsConfig{
		Enabled: cfg.Metrics.Enabled,
	})
	if err != nil {
		return nil, fmt.Errorf("metrics init: %w", err)
	}

	tokens, err := tokenSource(cfg.Graph)
	if err != nil {
		return nil, err
	}
	graphClient, err := graph.NewClient(graph.Config{
		BaseURL: cfg.Graph.BaseURL,
		Timeout: time.Duration(cfg.Graph.TimeoutSeconds) * time.Second,
	}, tokens, logger)
	if err != nil {
		return nil, fmt.Errorf("workspace client init: %w", err)
	}

	llmClient := llm.NewOpenAIClient(cfg.LLM, logger)

	confirms := confirm.NewEngine(confirm.NewMemoryStore(), logger, metrics)
	dispatcher := tools.NewDispatcher(confirms, graphClient, logger)

	registry := tools.NewRegistry()
	if err := tools.RegisterReadOnly(registry, graphClient); err != nil {
		return nil, err
	}
	if err := tools.RegisterGated(registry, confirms, graphClient); err != nil {
		return nil, err
	}
	if err := tools.RegisterConfirmation(registry, dispatcher); err != nil {
		return nil, err
	}

	sessions, err := sessionStore(cfg.Sessions)
	if err != nil {
		return nil, err
	}

	engine := assistant.NewEngine(llmClient, registry, sessions, logger, metrics, assistant.Config{})

	return &Container{
		Config:      cfg,
		Logger:      logger,
		Metrics:     metrics,
		Graph:       graphClient,
		LLM:         llmClient,
		Confirms:    confirms,
		Dispatcher:  dispatcher,
		Registry:    registry,
		Sessions:    sessions,
		Assistant:   engine,
		Transcriber: voice.MockTranscriber{},
		Synthesizer: voice.MockSynthesizer{},
	}, nil
}

func tokenSource(cfg config.GraphConfig) (graph.TokenSource, error) {
	switch {
	case cfg.TokenFile != "":
		return graph.NewFileTokenSource(cfg.TokenFile), nil
	case cfg.Token != "":
		return graph.StaticTokenSource(cfg.Token), nil
	default:
		return nil, fmt.Errorf("workspace access requires graph.token or graph.token_file (or ARIA_GRAPH_TOKEN)")
	}
}

func sessionStore(cfg config.SessionConfig) (session.Store, error) {
	switch cfg.Backend {
	case "file":
		dir := cfg.Dir
		if dir == "" {
			dir = ".aria/sessions"
		}
		return session.NewFileStore(dir)
	default:
		return session.NewMemoryStore(), nil
	}
}
