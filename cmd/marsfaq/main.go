package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"marsfaq/internal/config"
	"marsfaq/internal/corpus"
	"marsfaq/internal/embedding"
	embopenai "marsfaq/internal/embedding/openai"
	"marsfaq/internal/index"
	llmopenai "marsfaq/internal/llm/openai"
	"marsfaq/internal/service"
	"marsfaq/internal/state"
	"marsfaq/internal/tui"
	"marsfaq/internal/vectorstore"
	"marsfaq/internal/vectorstore/chromem"
	"marsfaq/internal/vectorstore/memory"
	"marsfaq/internal/vectorstore/qdrant"
)

func main() {
	_ = godotenv.Load()

	var cfgPath, dataDir string
	var syncOnly bool
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/marsfaq/config.yaml if not provided)")
	flag.StringVar(&dataDir, "data", "", "Override the FAQ data directory")
	flag.BoolVar(&syncOnly, "sync-only", false, "Synchronize the index and exit without starting the chat")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	// Assemble components
	var emb embedding.Embedder
	emb, err = embopenai.NewClient(embopenai.Config{
		BaseURL:   cfg.Embedder.BaseURL,
		APIKeyEnv: cfg.Embedder.APIKeyEnv,
		Model:     cfg.Embedder.Model,
		Timeout:   time.Duration(cfg.Embedder.TimeoutSecs) * time.Second,
	})
	if err != nil {
		logger.Fatal("embedder init failed", zap.Error(err))
	}

	var idx vectorstore.Index
	switch cfg.VectorStore.Type {
	case "chromem", "":
		idx, err = chromem.NewIndex(chromem.Config{
			Path:       cfg.VectorStore.Chromem.Path,
			Collection: cfg.VectorStore.Chromem.Collection,
			Compress:   cfg.VectorStore.Chromem.Compress,
		})
		if err != nil {
			logger.Fatal("chromem init failed", zap.Error(err))
		}
	case "qdrant":
		if cfg.VectorStore.Qdrant == nil {
			logger.Fatal("qdrant config missing")
		}
		idx = qdrant.NewIndex(qdrant.Config{
			URL:        cfg.VectorStore.Qdrant.URL,
			APIKey:     cfg.VectorStore.Qdrant.APIKey,
			Collection: cfg.VectorStore.Qdrant.Collection,
			Timeout:    time.Duration(cfg.VectorStore.Qdrant.TimeoutSecs) * time.Second,
		})
	case "memory":
		idx = memory.NewIndex()
	default:
		logger.Fatal("unknown vector store", zap.String("type", cfg.VectorStore.Type))
	}

	gen, err := llmopenai.NewClient(llmopenai.Config{
		BaseURL:     cfg.LLM.BaseURL,
		APIKeyEnv:   cfg.LLM.APIKeyEnv,
		Model:       cfg.LLM.Model,
		Timeout:     time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
		Temperature: cfg.LLM.Temperature,
	})
	if err != nil {
		logger.Fatal("llm init failed", zap.Error(err))
	}

	store, err := state.Open(cfg.StatePath)
	if err != nil {
		logger.Fatal("state store open failed", zap.Error(err))
	}

	// Sync before serving any question; Ctrl-C aborts between documents.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	entries, problems, err := corpus.NewLoader(cfg.DataDir, logger).Load(ctx)
	if err != nil {
		stop()
		logger.Fatal("corpus load failed", zap.Error(err))
	}
	for _, p := range problems {
		logger.Warn("corpus problem", zap.String("path", p.Path), zap.Error(p.Err))
	}

	report, err := index.New(store, idx, emb, logger).Sync(ctx, entries)
	stop()
	if err != nil {
		logger.Fatal("sync aborted", zap.Error(err))
	}
	for _, f := range report.Failures {
		logger.Warn("document not synchronized", zap.String("id", f.DocumentID), zap.Error(f.Err))
	}
	if syncOnly {
		return
	}

	svc := service.New(emb, idx, gen, service.Config{
		TopK:          cfg.Retrieval.TopK,
		ContextBudget: cfg.Retrieval.ContextBudget,
	}, logger)

	greeting := fmt.Sprintf("Index ready: %d documents (%d added, %d updated, %d deleted). Ask away.",
		len(entries), len(report.Added), len(report.Updated), len(report.Deleted))
	m := tui.New(svc, greeting)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
}
