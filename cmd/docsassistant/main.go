// Command docsassistant chats with uploaded documents.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driven/ai"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driven/command"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driven/config/file"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driven/storage/memory"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driving/cli"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driven"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/services"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/logger"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/normalisers"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/normalisers/image"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/postprocessors/chunker"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// Environment overrides.
const (
	// configDirEnv replaces the config directory (~/.docsassistant).
	configDirEnv = "DOCSASSISTANT_HOME"

	// ephemeralEnv keeps settings in memory; config.toml is neither read nor written.
	ephemeralEnv = "DOCSASSISTANT_EPHEMERAL"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is normal; keys may come from the shell or config.toml.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configDir := os.Getenv(configDirEnv)

	store, err := configStore(configDir)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}

	settingsService := services.NewSettingsService(store, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	if err := logger.Configure(logger.Options{File: settings.Log.File}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
	}
	defer func() { _ = logger.Close() }()

	aiServices := ai.Initialise(settings)
	defer aiServices.Close()
	for _, w := range aiServices.Warnings {
		logger.Warn("%s", w)
	}
	if aiServices.ChatOnly() {
		logger.Info("no embedding provider available, uploads disabled")
	}

	prompts, err := file.NewPromptStore(promptDir(configDir))
	if err != nil {
		return fmt.Errorf("opening prompts: %w", err)
	}

	var imageOpts []image.Option
	if aiServices.ImageDescriber != nil {
		prompt, err := prompts.Load(driven.PromptImageDescription)
		if err != nil {
			logger.Warn("image prompt unavailable, using OCR: %v", err)
		} else {
			imageOpts = append(imageOpts, image.WithVision(aiServices.ImageDescriber, prompt))
		}
	}

	registry := normalisers.NewDefaultRegistry(command.New(), imageOpts...)
	splitter := chunker.New(
		chunker.WithChunkSize(settings.Chunking.Size),
		chunker.WithOverlap(settings.Chunking.Overlap),
	)

	gateway := services.NewEmbeddingGateway(aiServices.EmbeddingService, settings.Gateway)
	planner := services.NewRetrievalPlanner(gateway, settings.Retrieval)

	sessions := services.NewSessionRegistry(
		memory.NewSessionCache[*services.Session](settings.Session.IdleTimeout),
		memory.NewVectorIndexFactory(),
		memory.NewDocumentStoreFactory(),
		settings.LLM.Model,
	)

	cli.SetServices(cli.Services{
		Conversation: services.NewConversationService(
			sessions, planner, aiServices.LLMService, prompts, settings.LLM,
		),
		Ingest:   services.NewIngestService(sessions, registry, splitter, gateway, settings.Ingest.Concurrency),
		Session:  sessions,
		Settings: settingsService,
	})
	cli.SetVersion(version)

	return cli.ExecuteContext(ctx)
}

// promptDir places prompts beside config.toml, or under the default
// directory when no override is set.
func promptDir(configDir string) string {
	if configDir == "" {
		return ""
	}
	return filepath.Join(configDir, "prompts")
}

func configStore(configDir string) (driven.ConfigStore, error) {
	if os.Getenv(ephemeralEnv) != "" {
		return memory.NewConfigStore(), nil
	}
	return file.NewConfigStore(configDir)
}
