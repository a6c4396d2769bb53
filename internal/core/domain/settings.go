package domain

const unknownDescription = "Unknown"

// StorageMode selects which vector store backs the index.
type StorageMode string

// Available storage modes.
const (
	// StorageModeLocal is the embedded on-disk store (no server required).
	StorageModeLocal StorageMode = "local"

	// StorageModeQdrant is a hosted Qdrant instance over gRPC.
	StorageModeQdrant StorageMode = "qdrant"
)

// IsValid returns true if the storage mode is recognised.
func (m StorageMode) IsValid() bool {
	switch m {
	case StorageModeLocal, StorageModeQdrant:
		return true
	default:
		return false
	}
}

// RequiresServer returns true if this mode needs a running vector database.
func (m StorageMode) RequiresServer() bool {
	return m == StorageModeQdrant
}

// String returns the string representation.
func (m StorageMode) String() string {
	return string(m)
}

// Description returns a human-readable description of the mode.
func (m StorageMode) Description() string {
	switch m {
	case StorageModeLocal:
		return "Local (embedded store, no server)"
	case StorageModeQdrant:
		return "Qdrant (hosted vector database)"
	default:
		return unknownDescription
	}
}

// GeminiSettings holds the Gemini API configuration shared by the embedding
// and generation adapters.
type GeminiSettings struct {
	// APIKey authenticates against the Gemini API.
	APIKey string

	// EmbeddingModel is the embedding model name.
	EmbeddingModel string

	// GenerativeModel is the generation/rewrite model name.
	GenerativeModel string
}

// IsConfigured returns true if the Gemini API can be used.
func (g GeminiSettings) IsConfigured() bool {
	return g.APIKey != ""
}

// StorageSettings holds vector store configuration.
type StorageSettings struct {
	// Mode selects local or hosted storage.
	Mode StorageMode

	// QdrantHost is the Qdrant gRPC host (qdrant mode only).
	QdrantHost string

	// QdrantPort is the Qdrant gRPC port (qdrant mode only).
	QdrantPort int

	// QdrantAPIKey authenticates against hosted Qdrant, empty for
	// unauthenticated local instances.
	QdrantAPIKey string

	// Collection is the collection name chunks are written to.
	Collection string

	// VectorSize is the embedding dimensionality.
	VectorSize int
}

// IsConfigured returns true if the selected storage mode is usable.
func (s StorageSettings) IsConfigured() bool {
	if !s.Mode.IsValid() {
		return false
	}
	if s.Mode == StorageModeQdrant && s.QdrantHost == "" {
		return false
	}
	return true
}

// WebSearchSettings holds the web search fallback configuration.
type WebSearchSettings struct {
	// Enabled turns the fallback stage on or off.
	Enabled bool

	// APIKey authenticates against the Exa search API.
	APIKey string

	// IncludeDomains restricts results to these domains.
	IncludeDomains []string
}

// IsConfigured returns true if web search can be called.
func (w WebSearchSettings) IsConfigured() bool {
	return w.APIKey != ""
}

// RetrievalSettings holds the retrieval stage tuning knobs.
type RetrievalSettings struct {
	// ChunkSize is the maximum chunk length in characters.
	ChunkSize int

	// ChunkOverlap is the character overlap between consecutive chunks.
	ChunkOverlap int

	// TopK is the maximum number of chunks retrieved per query.
	TopK int

	// ScoreThreshold is the minimum cosine similarity in [0,1].
	ScoreThreshold float64
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Gemini holds the embedding and generation API settings.
	Gemini GeminiSettings

	// Storage holds vector store settings.
	Storage StorageSettings

	// WebSearch holds the web search fallback settings.
	WebSearch WebSearchSettings

	// Retrieval holds chunking and query tuning.
	Retrieval RetrievalSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// Credentials are left unconfigured; users set them via the settings wizard.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Gemini: GeminiSettings{
			EmbeddingModel:  "text-embedding-004",
			GenerativeModel: "gemini-2.0-flash",
		},
		Storage: StorageSettings{
			Mode:       StorageModeLocal,
			QdrantHost: "localhost",
			QdrantPort: 6334,
			Collection: "docchat",
			VectorSize: 768,
		},
		WebSearch: WebSearchSettings{
			Enabled:        false,
			IncludeDomains: DefaultSearchDomains(),
		},
		Retrieval: RetrievalSettings{
			ChunkSize:      1000,
			ChunkOverlap:   200,
			TopK:           5,
			ScoreThreshold: 0.7,
		},
	}
}

// AllStorageModes returns all available storage modes.
func AllStorageModes() []StorageMode {
	return []StorageMode{
		StorageModeLocal,
		StorageModeQdrant,
	}
}

// DefaultSearchDomains returns the default web search domain allow-list.
func DefaultSearchDomains() []string {
	return []string{
		"arxiv.org",
		"wikipedia.org",
		"github.com",
		"medium.com",
	}
}
