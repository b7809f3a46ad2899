package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/nmoreno/gymstats-agent/internal/domain"
)

type Config struct {
	Port string

	// AgentMode picks the graph: "deterministic" (default) or "agentic".
	AgentMode domain.AgentMode

	// LLMProvider: "openai", "vertex" or "mock".
	LLMProvider string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	ModelName     string

	GCPProjectID string
	GCPLocation  string

	StatsBaseURL string

	// Prompt store (Langfuse-style). All optional: missing credentials
	// simply disable retrieval and the built-in prompt is used.
	PromptStoreHost      string
	PromptStorePublicKey string
	PromptStoreSecretKey string
	PromptName           string

	// CheckpointBackend: "memory" (default), "redis" or "firestore".
	CheckpointBackend string
	RedisAddr         string
	RedisPassword     string

	// MaxTurns bounds the agentic llm<->tools loop.
	MaxTurns int
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// Load reads all env vars and builds the config.
func Load() *Config {
	// .env is optional, for local runs.
	_ = godotenv.Load()

	var mode domain.AgentMode
	switch getEnv("AGENT_MODE", "deterministic") {
	case "agentic":
		mode = domain.ModeAgentic
	default:
		mode = domain.ModeDeterministic
	}

	cfg := &Config{
		Port: getEnv("AGENT_PORT", "8080"),

		AgentMode:   mode,
		LLMProvider: getEnv("LLM_PROVIDER", "mock"),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		ModelName:     getEnv("AGENT_MODEL_NAME", "gpt-4o-mini"),

		GCPProjectID: getEnv("AGENT_GCP_PROJECT", ""),
		GCPLocation:  getEnv("AGENT_GCP_LOCATION", "us-central1"),

		StatsBaseURL: getEnv("STATS_API_BASE_URL", "http://api:8000"),

		PromptStoreHost:      getEnv("LANGFUSE_SERVER_URL", ""),
		PromptStorePublicKey: getEnv("LANGFUSE_PUBLIC_API_KEY", ""),
		PromptStoreSecretKey: getEnv("LANGFUSE_SECRET_API_KEY", ""),
		PromptName:           getEnv("AGENT_GYM_PROMPT_NAME", "agent-gym"),

		CheckpointBackend: getEnv("AGENT_CHECKPOINT_BACKEND", "memory"),
		RedisAddr:         getEnv("AGENT_REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("AGENT_REDIS_PASSWORD", ""),

		MaxTurns: getIntEnv("AGENT_MAX_TURNS", 8),
	}

	// Minimal provider validation
	if cfg.LLMProvider == "openai" && cfg.OpenAIAPIKey == "" {
		log.Fatal("OPENAI_API_KEY must be set when LLM_PROVIDER=openai")
	}
	if cfg.LLMProvider == "vertex" && cfg.GCPProjectID == "" {
		log.Fatal("AGENT_GCP_PROJECT must be set when LLM_PROVIDER=vertex")
	}
	if cfg.CheckpointBackend == "firestore" && cfg.GCPProjectID == "" {
		log.Fatal("AGENT_GCP_PROJECT must be set for the firestore checkpoint backend")
	}

	return cfg
}
