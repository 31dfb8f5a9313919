package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DocumentConfig points at the source manual and names its store
// collection.
type DocumentConfig struct {
	PDFPath    string `yaml:"pdf_path"`
	Collection string `yaml:"collection"`
}

// ChunkerConfig configures how cleaned text is split into chunks.
// Overlap is a pointer so an explicit 0 survives default filling.
type ChunkerConfig struct {
	Size      int  `yaml:"size"`
	Overlap   *int `yaml:"overlap"`
	MinLength int  `yaml:"min_length"`
}

// OverlapOrDefault returns the configured overlap, or fallback when
// the field was absent.
func (c ChunkerConfig) OverlapOrDefault(fallback int) int {
	if c.Overlap == nil {
		return fallback
	}
	return *c.Overlap
}

// OllamaEmbedderConfig holds settings for the Ollama embeddings endpoint.
type OllamaEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// OpenAIEmbedderConfig holds settings for an OpenAI-compatible
// embeddings endpoint.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbedderConfig selects and configures the embedder implementation.
type EmbedderConfig struct {
	Type   string                `yaml:"type"`
	Ollama *OllamaEmbedderConfig `yaml:"ollama,omitempty"`
	OpenAI *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// VectorStoreConfig selects and configures the vector store
// implementation.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	Dir    string        `yaml:"dir"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// LLMConfig configures the local generation runtime.
type LLMConfig struct {
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	TopP        float64 `yaml:"top_p"`
	NumCtx      int     `yaml:"num_ctx"`
	TimeoutSecs int     `yaml:"timeout_secs"`
}

// RetrievalConfig configures query-time behavior.
type RetrievalConfig struct {
	TopK            int `yaml:"top_k"`
	MinContextChars int `yaml:"min_context_chars"`
	MaxHistoryTurns int `yaml:"max_history_turns"`
}

// SummarizerConfig configures the post-ingestion digest.
type SummarizerConfig struct {
	MaxSentences int `yaml:"max_sentences"`
}

// WebConfig configures the web UI server.
type WebConfig struct {
	Addr string `yaml:"addr"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Document    DocumentConfig    `yaml:"document"`
	Chunker     ChunkerConfig     `yaml:"chunker"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	LLM         LLMConfig         `yaml:"llm"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	Summarizer  SummarizerConfig  `yaml:"summarizer"`
	Web         WebConfig         `yaml:"web"`
}

// Load reads a config from a specified path. If the file does not
// exist, returns defaults. Environment variables override file values
// in either case.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/htra/config.yaml.
// If neither exists, it writes defaults to ~/.config/htra/config.yaml
// and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	applyEnvOverrides(cfg)
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as
// needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func intPtr(n int) *int { return &n }

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "htra", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Document: DocumentConfig{
			PDFPath:    "./data/Owners_Manual.pdf",
			Collection: "tesla_manual_rag",
		},
		Chunker: ChunkerConfig{Size: 950, Overlap: intPtr(150), MinLength: 40},
		Embedder: EmbedderConfig{
			Type: "ollama",
			Ollama: &OllamaEmbedderConfig{
				BaseURL:     "http://localhost:11434",
				Model:       "nomic-embed-text",
				TimeoutSecs: 90,
			},
		},
		VectorStore: VectorStoreConfig{Type: "sqlite", Dir: "./vector_db"},
		LLM: LLMConfig{
			BaseURL:     "http://localhost:11434",
			Model:       "llama3.1:8b-instruct-q4_K_M",
			Temperature: 0.1,
			TopP:        0.9,
			NumCtx:      4096,
			TimeoutSecs: 120,
		},
		Retrieval:  RetrievalConfig{TopK: 5, MinContextChars: 120, MaxHistoryTurns: 10},
		Summarizer: SummarizerConfig{MaxSentences: 5},
		Web:        WebConfig{Addr: ":8080"},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	def := defaultConfig()
	if cfg.Document.PDFPath == "" {
		cfg.Document.PDFPath = def.Document.PDFPath
	}
	if cfg.Document.Collection == "" {
		cfg.Document.Collection = def.Document.Collection
	}
	if cfg.Chunker.Size == 0 {
		cfg.Chunker.Size = def.Chunker.Size
	}
	if cfg.Chunker.Overlap == nil {
		cfg.Chunker.Overlap = def.Chunker.Overlap
	}
	if cfg.Chunker.MinLength == 0 {
		cfg.Chunker.MinLength = def.Chunker.MinLength
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = def.Embedder.Type
	}
	if cfg.Embedder.Type == "ollama" && cfg.Embedder.Ollama == nil {
		cfg.Embedder.Ollama = def.Embedder.Ollama
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI != nil {
		o := cfg.Embedder.OpenAI
		if o.BaseURL == "" {
			o.BaseURL = "https://api.openai.com/v1"
		}
		if o.APIKeyEnv == "" {
			o.APIKeyEnv = "OPENAI_API_KEY"
		}
		if o.Model == "" {
			o.Model = "text-embedding-3-small"
		}
		if o.TimeoutSecs == 0 {
			o.TimeoutSecs = 30
		}
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = def.VectorStore.Type
	}
	if cfg.VectorStore.Dir == "" {
		cfg.VectorStore.Dir = def.VectorStore.Dir
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = def.LLM.BaseURL
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = def.LLM.Model
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = def.LLM.Temperature
	}
	if cfg.LLM.TopP == 0 {
		cfg.LLM.TopP = def.LLM.TopP
	}
	if cfg.LLM.NumCtx == 0 {
		cfg.LLM.NumCtx = def.LLM.NumCtx
	}
	if cfg.LLM.TimeoutSecs == 0 {
		cfg.LLM.TimeoutSecs = def.LLM.TimeoutSecs
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = def.Retrieval.TopK
	}
	if cfg.Retrieval.MinContextChars == 0 {
		cfg.Retrieval.MinContextChars = def.Retrieval.MinContextChars
	}
	if cfg.Retrieval.MaxHistoryTurns == 0 {
		cfg.Retrieval.MaxHistoryTurns = def.Retrieval.MaxHistoryTurns
	}
	if cfg.Summarizer.MaxSentences == 0 {
		cfg.Summarizer.MaxSentences = def.Summarizer.MaxSentences
	}
	if cfg.Web.Addr == "" {
		cfg.Web.Addr = def.Web.Addr
	}
}

// applyEnvOverrides maps the well-known environment variables onto the
// config. A .env file, if present, is loaded by the command entrypoint
// before this runs.
func applyEnvOverrides(cfg *AppConfig) {
	if v := os.Getenv("PDF_PATH"); v != "" {
		cfg.Document.PDFPath = v
	}
	if v := os.Getenv("STORE_PATH"); v != "" {
		cfg.VectorStore.Dir = v
	}
	if v := os.Getenv("EMBED_MODEL"); v != "" && cfg.Embedder.Ollama != nil {
		cfg.Embedder.Ollama.Model = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("OLLAMA_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
		if cfg.Embedder.Ollama != nil {
			cfg.Embedder.Ollama.BaseURL = v
		}
	}
	if v := os.Getenv("CHUNK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Chunker.Size = n
		}
	}
	if v := os.Getenv("CHUNK_OVERLAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Chunker.Overlap = intPtr(n)
		}
	}
	if v := os.Getenv("K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Retrieval.TopK = n
		}
	}
}
