package model

import "time"

// ExportRecord is the persisted trace of one finished export: which
// performance was burned into which object, so the tagged file can be
// re-downloaded and device-import failures can be debugged later.
type ExportRecord struct {
	ID         int64     `json:"id"`
	UUID       string    `json:"uuid"`
	Title      string    `json:"title"`
	Album      string    `json:"album,omitempty"`
	Artist     string    `json:"artist,omitempty"`
	FileName   string    `json:"fileName"`
	ObjectPath string    `json:"-"` // MinIO object key, served via the download endpoint
	Duration   float64   `json:"duration"`
	FrameCount int       `json:"frameCount"`
	CreatedAt  time.Time `json:"createdAt"`
}
