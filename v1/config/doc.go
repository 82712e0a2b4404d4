// Package config loads the ragstore configuration from an optional YAML
// file and the environment.
//
// Every field can be set through a RAGSTORE_ variable whose remaining name
// is the lower-cased key path with "__" between levels:
//
//	RAGSTORE_LOGGER__LEVEL=debug
//	RAGSTORE_EMBEDDING__ENDPOINT=https://tei.internal/embed
//	RAGSTORE_VECTORSTORE__MODE=async
//	RAGSTORE_VECTORSTORE__CONNECTION_STRING=postgresql://rag:rag@db/rag
//
// The variable names of earlier deployments (QDRANT_API_KEY,
// EMBEDDINGS_ENDPOINT, EMBEDDINGS_API_TOKEN, VECTOR_DB_TYPE, COLLECTION_NAME,
// ATLAS_SEARCH_INDEX and DB_CONNECTION_STRING) are still honored, below the
// RAGSTORE_ ones.
package config
