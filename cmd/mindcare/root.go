package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/becomeliminal/mindcare/config"
	"github.com/becomeliminal/mindcare/engine"
	"github.com/becomeliminal/mindcare/generator"
	"github.com/becomeliminal/mindcare/memory"
	"github.com/becomeliminal/mindcare/memory/store/sqlite"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose      bool
	dbPath       string
	embedderName string

	cfg       config.Config
	store     *sqlite.Store
	mem       *engine.Engine
	closers   []io.Closer
	logCloser func() error
)

var rootCmd = &cobra.Command{
	Use:   "mindcare",
	Short: "Memory assistant for people with memory loss",
	Long: `MindCare remembers short first-person notes ("I parked my car in the garage")
and answers questions about them ("where is my car now").

Memories are stored in SQLite and searched by embedding similarity.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()
		if dbPath != "" {
			cfg.DBPath = dbPath
		}
		if embedderName != "" {
			cfg.Embedder = embedderName
		}
		if verbose {
			cfg.LogLevel = slog.LevelDebug
		}

		var logger *slog.Logger
		logger, logCloser = config.SetupLogger(cfg.LogFile, cfg.LogLevel)
		slog.SetDefault(logger)

		return setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		teardown()
	},
}

// setup opens the store and builds the engine from cfg.
func setup() error {
	var err error
	store, err = sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	closers = append(closers, store)

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("init embedder: %w", err)
	}

	var opts []engine.Option
	if cfg.GeneratorModel != "" {
		if cfg.AnthropicAPIKey == "" {
			return fmt.Errorf("MINDCARE_GENERATOR_MODEL is set but ANTHROPIC_API_KEY is empty")
		}
		gen := generator.NewAnthropic(cfg.AnthropicAPIKey, generator.WithModel(cfg.GeneratorModel))
		opts = append(opts, engine.WithGenerator(gen))
		slog.Info("answer generation enabled", "model", gen.Model())
	}

	mem = engine.New(store, memory.NewRetriever(embedder, cfg.Retrieval()), opts...)
	return nil
}

func teardown() {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close: %v\n", err)
		}
	}
	closers = nil
	if logCloser != nil {
		logCloser()
		logCloser = nil
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (default $MINDCARE_DB_PATH or mindcare.db)")
	rootCmd.PersistentFlags().StringVar(&embedderName, "embedder", "", "embedding backend: ollama, openai, onnx or mock")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(reindexCmd)
}
