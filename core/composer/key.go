package composer

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"glyphtone/model"
)

// PayloadKey derives the cache key for a performance snapshot. Identical
// snapshots always produce identical keys; the pipeline is deterministic,
// so equal keys imply equal payloads.
func PayloadKey(tracks []model.TrackPerformance, duration float64) string {
	snapshot := struct {
		Duration float64                  `json:"duration"`
		Tracks   []model.TrackPerformance `json:"tracks"`
	}{duration, tracks}

	raw, err := json.Marshal(snapshot)
	if err != nil {
		// The snapshot is plain numbers and strings; this cannot fail.
		panic(err)
	}
	sum := sha256.Sum256(raw)
	return "glyphtone:payload:" + hex.EncodeToString(sum[:])
}
