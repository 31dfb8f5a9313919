// Package cli defines the htra command tree and assembles the pipeline
// components from configuration.
package cli

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/chunker"
	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/config"
	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/domain"
	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/embedding/ollama"
	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/embedding/openai"
	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/embedding/tfidf"
	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/llm"
	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/service"
	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/summarizer"
	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/vectorstore/memory"
	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/vectorstore/qdrant"
	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/vectorstore/sqlite"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "htra",
	Short: "Hybrid RAG assistant for the Tesla Model 3 owner's manual",
	Long: `htra ingests the owner's manual PDF into a local vector store and
answers questions about it, strictly grounded in the retrieved text,
using a locally hosted language model.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config (default ./config.yaml, then ~/.config/htra/config.yaml)")
}

// Execute runs the command tree.
func Execute() error {
	_ = godotenv.Load()
	return rootCmd.Execute()
}

func loadConfig() (*config.AppConfig, error) {
	if cfgPath != "" {
		return config.Load(cfgPath)
	}
	cfg, _, err := config.LoadDefault()
	return cfg, err
}

// buildComponents assembles the embedder, store, generator and
// orchestrator from config. The returned closer releases the store.
func buildComponents(cfg *config.AppConfig) (*service.RAGService, func(), error) {
	var emb domain.Embedder
	switch cfg.Embedder.Type {
	case "ollama", "":
		o := cfg.Embedder.Ollama
		if o == nil {
			o = &config.OllamaEmbedderConfig{}
		}
		emb = ollama.NewEmbedder(ollama.Config{
			BaseURL: o.BaseURL,
			Model:   o.Model,
			Timeout: time.Duration(o.TimeoutSecs) * time.Second,
		})
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			return nil, nil, fmt.Errorf("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:   cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
			Model:     cfg.Embedder.OpenAI.Model,
			Timeout:   time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("openai embedder init failed: %w", err)
		}
		emb = client
	case "tfidf":
		emb = tfidf.NewEmbedder()
	default:
		return nil, nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}

	closer := func() {}
	var st domain.VectorStore
	switch cfg.VectorStore.Type {
	case "sqlite", "":
		store, err := sqlite.NewStorage(cfg.VectorStore.Dir, cfg.Document.Collection)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		closer = func() {
			if err := store.Close(); err != nil {
				log.Printf("closing store: %v", err)
			}
		}
		st = store
	case "qdrant":
		if cfg.VectorStore.Qdrant == nil {
			return nil, nil, fmt.Errorf("qdrant config missing")
		}
		st = qdrant.NewStorage(qdrant.Config{
			URL:        cfg.VectorStore.Qdrant.URL,
			APIKey:     cfg.VectorStore.Qdrant.APIKey,
			Collection: cfg.Document.Collection,
			Timeout:    time.Duration(cfg.VectorStore.Qdrant.TimeoutSecs) * time.Second,
		})
	case "memory":
		st = memory.NewStorage()
	default:
		return nil, nil, fmt.Errorf("unknown vector store: %s", cfg.VectorStore.Type)
	}

	gen := llm.NewClient(llm.Config{
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		TopP:        cfg.LLM.TopP,
		NumCtx:      cfg.LLM.NumCtx,
		Timeout:     time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
	})

	ch := chunker.New(cfg.Chunker.Size, cfg.Chunker.OverlapOrDefault(150), cfg.Chunker.MinLength)
	svc := service.New(ch, emb, st, gen, summarizer.NewFrequency(), service.Options{
		TopK:            cfg.Retrieval.TopK,
		MinContextChars: cfg.Retrieval.MinContextChars,
		MaxHistoryTurns: cfg.Retrieval.MaxHistoryTurns,
		DigestSentences: cfg.Summarizer.MaxSentences,
	})
	return svc, closer, nil
}
