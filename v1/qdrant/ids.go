package qdrant

import (
	"strconv"

	"github.com/google/uuid"
	qdrant "github.com/qdrant/go-client/qdrant"
)

var (
	// pointNamespace seeds name-based point ids so the same file_id always
	// maps to the same point.
	pointNamespace = uuid.MustParse("6f1c3c52-1b2e-5a8e-9d4b-7a0f2d1e9c31")
	// chunkNamespace seeds the ids of repeated chunks. Keeping it apart from
	// pointNamespace means no file_id can hash onto another id's chunk.
	chunkNamespace = uuid.MustParse("b3a9e2d4-7c41-5f08-8e6a-2d5c9f14a7e0")
)

// pointID maps a file_id to a Qdrant point id. Canonical UUIDs and canonical
// unsigned integers are used directly, anything else is hashed into a UUIDv5.
// Only spellings that round-trip are passed through, so "01" and "1" or an
// upper and lower case UUID never share a point.
func pointID(id string) *qdrant.PointId {
	if u, err := uuid.Parse(id); err == nil && u.String() == id {
		return qdrant.NewIDUUID(id)
	}
	if n, err := strconv.ParseUint(id, 10, 64); err == nil && strconv.FormatUint(n, 10) == id {
		return qdrant.NewIDNum(n)
	}
	return qdrant.NewIDUUID(uuid.NewSHA1(pointNamespace, []byte(id)).String())
}

// chunkID is the point id of the n-th repeat of id within one batch.
func chunkID(id string, n int) *qdrant.PointId {
	name := id + "\x00" + strconv.Itoa(n)
	return qdrant.NewIDUUID(uuid.NewSHA1(chunkNamespace, []byte(name)).String())
}

// pointIDs maps ids to point ids. Repeats of an id within the same batch get
// their own keys, so several chunks of one document never overwrite each
// other while re-inserting stays an upsert.
func pointIDs(ids []string) []*qdrant.PointId {
	seen := make(map[string]int, len(ids))
	out := make([]*qdrant.PointId, len(ids))
	for i, id := range ids {
		n := seen[id]
		seen[id] = n + 1
		if n == 0 {
			out[i] = pointID(id)
			continue
		}
		out[i] = chunkID(id, n)
	}
	return out
}
