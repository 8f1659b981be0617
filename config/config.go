// Package config loads runtime settings from the environment and sets up
// logging.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/becomeliminal/mindcare/memory"
)

// Embedder backends.
const (
	EmbedderOllama = "ollama"
	EmbedderOpenAI = "openai"
	EmbedderONNX   = "onnx"
	EmbedderMock   = "mock"
)

// Config holds all configuration values.
type Config struct {
	// HTTP server
	Addr string

	// Record store
	DBPath string

	// Embedding
	Embedder       string
	EmbeddingModel string
	OllamaHost     string
	OpenAIAPIKey   string
	ONNXModel      string
	ONNXTokenizer  string
	ONNXLibrary    string
	EmbedCacheSize int // 0 disables the cache

	// Retrieval
	TopK              int
	DistanceThreshold float64

	// Answer generation, disabled when GeneratorModel is empty
	AnthropicAPIKey string
	GeneratorModel  string

	// Logging
	LogFile  string // Empty logs to stderr only
	LogLevel slog.Level
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		Addr: getEnv("MINDCARE_ADDR", ":8000"),

		DBPath: getEnv("MINDCARE_DB_PATH", "mindcare.db"),

		Embedder:       strings.ToLower(getEnv("MINDCARE_EMBEDDER", EmbedderOllama)),
		EmbeddingModel: getEnv("MINDCARE_EMBED_MODEL", "all-minilm"),
		OllamaHost:     getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		ONNXModel:      getEnv("MINDCARE_ONNX_MODEL", ""),
		ONNXTokenizer:  getEnv("MINDCARE_ONNX_TOKENIZER", ""),
		ONNXLibrary:    getEnv("MINDCARE_ONNX_LIBRARY", ""),
		EmbedCacheSize: getEnvInt("MINDCARE_EMBED_CACHE", 10_000, 0),

		TopK:              getEnvInt("MINDCARE_TOP_K", memory.DefaultConfig.TopK, 1),
		DistanceThreshold: getEnvFloat("MINDCARE_DISTANCE_THRESHOLD", memory.DefaultConfig.DistanceThreshold),

		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		GeneratorModel:  getEnv("MINDCARE_GENERATOR_MODEL", ""),

		LogFile:  getEnv("MINDCARE_LOG_FILE", ""),
		LogLevel: parseLogLevel(getEnv("MINDCARE_LOG_LEVEL", "INFO")),
	}
}

// Retrieval returns the retriever settings.
func (c Config) Retrieval() *memory.Config {
	return &memory.Config{
		TopK:              c.TopK,
		DistanceThreshold: c.DistanceThreshold,
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvInt parses key as an integer no smaller than minVal.
func getEnvInt(key string, defaultVal, minVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil || n < minVal {
		slog.Warn("invalid integer setting, using default", "key", key, "value", val, "min", minVal, "default", defaultVal)
		return defaultVal
	}
	return n
}

func getEnvFloat(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil || f < 0 {
		slog.Warn("invalid number setting, using default", "key", key, "value", val, "default", defaultVal)
		return defaultVal
	}
	return f
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
