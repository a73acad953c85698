package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Env             string
	Port            string
	CorpusPath      string
	MetadataPath    string
	OllamaURL       string
	EmbeddingModel  string
	GenerationModel string
	TopK            int
	HistoryWindow   int
	AnswerMaxTokens int
	EmbedCacheSize  int
	EmbedTimeout    int // seconds
	GenerateTimeout int // seconds
	ChatArchiveDSN  string // empty disables chat-log archiving
	OTelLogsEnabled bool
}

func Load() *Config {
	return &Config{
		Env:             getEnv("ENV", "development"),
		Port:            getEnv("PORT", "8080"),
		CorpusPath:      getEnv("CORPUS_PATH", "data/corpus.json"),
		MetadataPath:    getEnv("METADATA_PATH", "data/metadata.csv"),
		OllamaURL:       getEnv("OLLAMA_URL", "http://localhost:11434"),
		EmbeddingModel:  getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
		GenerationModel: getEnv("GENERATION_MODEL", "llama3.1:8b"),
		TopK:            getEnvInt("RAG_TOP_K", 5),
		HistoryWindow:   getEnvInt("HISTORY_WINDOW", 4),
		AnswerMaxTokens: getEnvInt("ANSWER_MAX_TOKENS", 768),
		EmbedCacheSize:  getEnvInt("EMBED_CACHE_SIZE", 256),
		EmbedTimeout:    getEnvInt("EMBED_TIMEOUT_SECONDS", 30),
		GenerateTimeout: getEnvInt("GENERATE_TIMEOUT_SECONDS", 120),
		ChatArchiveDSN:  getSecret("CHAT_ARCHIVE_DSN", "CHAT_ARCHIVE_DSN_FILE", ""),
		OTelLogsEnabled: getEnvBool("OTEL_LOGS_ENABLED", false),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getSecret(envKey, fileEnvKey, fallback string) string {
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}
	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		if content, err := os.ReadFile(filePath); err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
