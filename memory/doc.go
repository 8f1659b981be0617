// Package memory provides the retrieval half of the recall service: an
// in-memory exact nearest-neighbour index over memory embeddings and the
// Retriever that bridges raw text to it.
//
// Architecture:
//   - Embedder: Text-to-vector conversion (ONNX model locally, Ollama/OpenAI via chromem-go)
//   - Index: Flat L2 index with parallel vector and text arrays
//   - Retriever: Embeds text, maintains the Index, applies the distance cutoff
//   - Store: Durable record storage owned by the caller (SQLite or in-memory)
//
// Lifecycle:
//   - Create a Retriever explicitly and pass it to the engine and transport
//   - Rebuild it from Store.List at startup
//   - Add each newly persisted record as it arrives
//
// The Retriever holds no records itself. Recency, object filtering and
// rendering live in package recall.
package memory
