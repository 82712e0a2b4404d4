// Package vectordb defines the backend-agnostic vector store contract.
//
// Every backend (Postgres/pgvector, MongoDB Atlas, Qdrant) implements [Store].
// Documents are addressed by the application identifier stored under the
// file_id metadata key, never by the backend's own point or row key.
//
// # Failure reporting
//
// Strict stores return an [*EnumerationError] when a read enumeration or a
// delete fails. Its Reason tells "backend unreachable" apart from an empty
// collection:
//
//	ids, err := store.GetAllIDs(ctx)
//	if vectordb.IsEnumerationError(err) && vectordb.ReasonOf(err) == vectordb.ReasonUnavailable {
//	    // retry later
//	}
//
// [NewLenientStore] restores the availability-first behaviour: failed reads
// return empty slices, a failed delete returns nil, and each absorbed failure
// is logged and counted.
//
// # Filters
//
// Search filters are expressed with [FilterSet]:
//
//	filter := vectordb.NewFilterSet(
//	    vectordb.Must(vectordb.NewMatch("source", "handbook.pdf")),
//	    vectordb.MustNot(vectordb.NewMatchAny("lang", "de", "fr")),
//	)
//	hits, err := store.SimilaritySearchWithScore(ctx, "vacation policy", 4, filter)
//
// FilterSet round-trips through JSON, so filters can travel over HTTP or
// the command line unchanged.
package vectordb
