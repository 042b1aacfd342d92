package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// PerformanceRecord is a saved composition. The track/segment snapshot is
// stored as JSON so the table schema never depends on the timeline shape.
type PerformanceRecord struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	Duration  float64   `json:"duration" gorm:"not null"`
	Tracks    string    `json:"-" gorm:"column:tracks_json;type:longtext;not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName keeps the table name stable regardless of GORM pluralization.
func (PerformanceRecord) TableName() string {
	return "performances"
}

// Snapshot decodes the stored track list back into a Performance value.
func (r *PerformanceRecord) Snapshot() (*Performance, error) {
	var tracks []TrackPerformance
	if err := json.Unmarshal([]byte(r.Tracks), &tracks); err != nil {
		return nil, fmt.Errorf("decode stored tracks for performance %d: %w", r.ID, err)
	}
	return &Performance{Name: r.Name, Duration: r.Duration, Tracks: tracks}, nil
}

// NewPerformanceRecord snapshots a performance into its storable form.
func NewPerformanceRecord(perf *Performance) (*PerformanceRecord, error) {
	raw, err := json.Marshal(perf.Tracks)
	if err != nil {
		return nil, fmt.Errorf("encode tracks for performance %q: %w", perf.Name, err)
	}
	return &PerformanceRecord{
		Name:     perf.Name,
		Duration: perf.Duration,
		Tracks:   string(raw),
	}, nil
}
