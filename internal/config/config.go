package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Rag      RagConfig
	Ingest   IngestConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	RagLogFilePath     string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	OpenAI string
	Tavily string
}

type AIConfig struct {
	LLMProvider       string // "openai" or "ollama"
	ChatModel         string // e.g. "gpt-4o"
	RewriteModel      string // cheaper model for query rewriting
	EmbeddingProvider string // "openai" or "ollama"
	EmbeddingModel    string
	OllamaBaseURL     string
	OllamaModel       string
}

// RagConfig holds every tunable of the retrieval/generation pipeline.
// Loaded once at startup and passed by reference into each component;
// nothing reads the environment after this point.
type RagConfig struct {
	TopK             int
	MinimumScore     float64
	SufficientDocs   int
	MaxTokenLimit    int
	MaxSteps         int
	MemoryWindow     int
	DefaultNamespace string
	DefaultLanguage  string
	FallbackMessage  string
	HumanRoleTag     string
	AiRoleTag        string
	WebSearchResults int
}

type IngestConfig struct {
	ChunkSize    int
	ChunkOverlap int
	EmbedTopic   string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8081"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:8081"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			RagLogFilePath:     getEnv("RAG_LOG_FILE_PATH", "logs/rag_pipeline.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			OpenAI: getEnv("OPENAI_API_KEY", ""),
			Tavily: getEnv("TAVILY_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:       getEnv("LLM_PROVIDER", "openai"),
			ChatModel:         getEnv("LLM_CHAT_MODEL", "gpt-4o"),
			RewriteModel:      getEnv("LLM_REWRITE_MODEL", "gpt-4o-mini"),
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "openai"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_MODEL", "llama3"),
		},
		Rag: RagConfig{
			TopK:             getEnvAsInt("RAG_TOP_K", 10),
			MinimumScore:     getEnvAsFloat("RAG_MINIMUM_SCORE", 0.5),
			SufficientDocs:   getEnvAsInt("RAG_SUFFICIENT_DOCS", 5),
			MaxTokenLimit:    getEnvAsInt("RAG_MAX_TOKEN_LIMIT", 1500),
			MaxSteps:         getEnvAsInt("RAG_MAX_STEPS", 10),
			MemoryWindow:     getEnvAsInt("RAG_MEMORY_WINDOW", 10),
			DefaultNamespace: getEnv("RAG_DEFAULT_NAMESPACE", "default_dev"),
			DefaultLanguage:  getEnv("RAG_DEFAULT_LANGUAGE", "en"),
			FallbackMessage: getEnv("RAG_FALLBACK_MESSAGE",
				"I tried to look for this information, but could not find something highly relevant to your query."),
			HumanRoleTag:     getEnv("CHAT_CONTEXT_HUMAN_ROLE", "human"),
			AiRoleTag:        getEnv("CHAT_CONTEXT_AI_ROLE", "ai"),
			WebSearchResults: getEnvAsInt("WEB_SEARCH_MAX_RESULTS", 2),
		},
		Ingest: IngestConfig{
			ChunkSize:    getEnvAsInt("CHUNK_SIZE", 1000),
			ChunkOverlap: getEnvAsInt("CHUNK_OVERLAP", 200),
			EmbedTopic:   getEnv("EMBED_CHUNK_TOPIC_NAME", "EMBED_DOCUMENT_CHUNK"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
