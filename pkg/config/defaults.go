package config

const (
	// v0 is the alpha version of the config
	v0 = 0

	// CurrentV is the currently supported version, points to v0
	CurrentV = v0

	defaultAPIListen = ":8081"

	defaultChatProvider   = "groq"
	defaultChatModel      = "llama-3.3-70b-versatile"
	defaultChatTimeoutSec = 60

	defaultEmbeddingProvider = "ollama"
	defaultEmbeddingTarget   = "http://localhost:11434"
	defaultEmbeddingModel    = "nomic-embed-text"

	defaultVectorProvider = "memory"

	defaultChunkSize    = 1500
	defaultChunkOverlap = 300

	defaultTopK   = 4
	defaultFetchK = 10
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Chat: ChatConfig{
			Provider:       defaultChatProvider,
			Model:          defaultChatModel,
			TimeoutSeconds: defaultChatTimeoutSec,
		},
		Embedding: EmbeddingConfig{
			Provider: defaultEmbeddingProvider,
			Target:   defaultEmbeddingTarget,
			Model:    defaultEmbeddingModel,
		},
		VectorStore: VectorStoreConfig{
			Provider: defaultVectorProvider,
		},
		Segment: SegmentConfig{
			ChunkSize:    defaultChunkSize,
			ChunkOverlap: defaultChunkOverlap,
		},
		Retrieval: RetrievalConfig{
			TopK:   defaultTopK,
			FetchK: defaultFetchK,
		},
	}
}
