// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DocumentLoader: Extracts text from PDFs and web pages
//   - VectorStore: Chunk persistence and similarity search (Qdrant or the
//     embedded local store)
//   - EmbeddingService: Generates vector embeddings
//   - LLMService: Query rewriting and answer generation
//   - ConfigStore: Application configuration
//   - HistoryStore: Chat transcript persistence
//
// # Optional Interfaces
//
// These can be nil - the pipeline degrades gracefully:
//
//   - WebSearcher: Live web search fallback. Without it, turns with empty
//     retrieval run generation without a context block.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or loader package
package driven
