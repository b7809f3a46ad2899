package main

import (
	"context"
	"log"
	"net/http"

	"github.com/nmoreno/gymstats-agent/internal/adapters/checkpoint/firestore"
	"github.com/nmoreno/gymstats-agent/internal/adapters/checkpoint/memory"
	redisstore "github.com/nmoreno/gymstats-agent/internal/adapters/checkpoint/redis"
	httpadapter "github.com/nmoreno/gymstats-agent/internal/adapters/http"
	"github.com/nmoreno/gymstats-agent/internal/adapters/llm"
	"github.com/nmoreno/gymstats-agent/internal/adapters/promptstore"
	"github.com/nmoreno/gymstats-agent/internal/adapters/stats"
	"github.com/nmoreno/gymstats-agent/internal/app/agentflow"
	"github.com/nmoreno/gymstats-agent/internal/app/summary"
	"github.com/nmoreno/gymstats-agent/internal/config"
	"github.com/nmoreno/gymstats-agent/internal/domain"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	// LLM provider
	var (
		llmClient domain.LLMClient
		err       error
	)
	switch cfg.LLMProvider {
	case "openai":
		log.Println("[LLM] Using OpenAI-compatible client")
		llmClient = llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.ModelName)
	case "vertex":
		log.Println("[LLM] Using Vertex LLM client")
		llmClient, err = llm.NewVertexClient(ctx, cfg.GCPProjectID, cfg.GCPLocation, cfg.ModelName)
		if err != nil {
			log.Fatalf("error initializing Vertex LLM client: %v", err)
		}
	default:
		log.Println("[LLM] Using MOCK LLM client")
		llmClient = llm.NewMockLLM()
	}

	// Checkpoint store
	var checkpoints domain.CheckpointStore
	switch cfg.CheckpointBackend {
	case "redis":
		log.Printf("[STORE] Using Redis checkpoint store (addr=%s)", cfg.RedisAddr)
		checkpoints, err = redisstore.NewStore(ctx, cfg.RedisAddr, cfg.RedisPassword, 0)
		if err != nil {
			log.Fatalf("error initializing Redis store: %v", err)
		}
	case "firestore":
		log.Printf("[STORE] Using Firestore checkpoint store (project=%s)", cfg.GCPProjectID)
		checkpoints, err = firestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			log.Fatalf("error initializing Firestore store: %v", err)
		}
	default:
		log.Println("[STORE] Using in-memory checkpoint store")
		checkpoints = memory.NewStore()
	}

	statsClient := stats.NewClient(cfg.StatsBaseURL)
	prompts := promptstore.NewClient(cfg.PromptStoreHost, cfg.PromptStorePublicKey, cfg.PromptStoreSecretKey)

	// The deterministic pipeline only reformats its advice when a real
	// model is configured.
	var reformat domain.Reformatter = agentflow.NopReformatter{}
	if cfg.LLMProvider == "openai" || cfg.LLMProvider == "vertex" {
		reformat = llm.NewReformatter(llmClient)
	}

	loop := agentflow.NewLoop(llmClient, statsClient, prompts, checkpoints, cfg.PromptName, cfg.MaxTurns)
	pipeline := agentflow.NewPipeline(statsClient, checkpoints, reformat)
	svc := summary.NewService(cfg.AgentMode, loop, pipeline, checkpoints)

	handler := httpadapter.NewServer(svc, httpadapter.HealthInfo{
		DataSource:        cfg.StatsBaseURL,
		AgentMode:         cfg.AgentMode,
		LLMProvider:       cfg.LLMProvider,
		CheckpointBackend: cfg.CheckpointBackend,
	})

	addr := ":" + cfg.Port
	log.Println("gymstats agent API listening on", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatal(err)
	}
}
