package config

// Config represents the persistent docquery configuration stored as
// config.toml in the .docquery/ directory. The TOML layout uses sections
// for logical grouping.
type Config struct {
	Version     int               `mapstructure:"version" toml:"version"`
	API         APIConfig         `mapstructure:"api" toml:"api"`
	Chat        ChatConfig        `mapstructure:"chat" toml:"chat"`
	Embedding   EmbeddingConfig   `mapstructure:"embedding" toml:"embedding"`
	VectorStore VectorStoreConfig `mapstructure:"vector_store" toml:"vector_store"`
	Segment     SegmentConfig     `mapstructure:"segment" toml:"segment"`
	Retrieval   RetrievalConfig   `mapstructure:"retrieval" toml:"retrieval"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `mapstructure:"listen" toml:"listen,omitempty"`
}

// ChatConfig holds chat-completion provider settings. The provider
// credential itself is never stored here; it is read from the
// environment (e.g. GROQ_API_KEY) at client construction.
type ChatConfig struct {
	Provider       string  `mapstructure:"provider" toml:"provider,omitempty"`
	Model          string  `mapstructure:"model" toml:"model,omitempty"`
	Target         string  `mapstructure:"target" toml:"target,omitempty"`
	Temperature    float64 `mapstructure:"temperature" toml:"temperature,omitempty"`
	MaxTokens      int     `mapstructure:"max_tokens" toml:"max_tokens,omitempty"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" toml:"timeout_seconds,omitempty"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider string `mapstructure:"provider" toml:"provider,omitempty"`
	Target   string `mapstructure:"target" toml:"target,omitempty"`
	Model    string `mapstructure:"model" toml:"model,omitempty"`
}

// VectorStoreConfig holds vector index backend settings.
type VectorStoreConfig struct {
	Provider string `mapstructure:"provider" toml:"provider,omitempty"`
	Target   string `mapstructure:"target" toml:"target,omitempty"`
}

// SegmentConfig holds chunking parameters.
type SegmentConfig struct {
	ChunkSize    int `mapstructure:"chunk_size" toml:"chunk_size,omitempty"`
	ChunkOverlap int `mapstructure:"chunk_overlap" toml:"chunk_overlap,omitempty"`
}

// RetrievalConfig holds passage selection parameters.
type RetrievalConfig struct {
	TopK   int `mapstructure:"top_k" toml:"top_k,omitempty"`
	FetchK int `mapstructure:"fetch_k" toml:"fetch_k,omitempty"`
}
