// Package glyph implements the deterministic export pipeline: segment
// rasterization into a fixed-rate brightness matrix, the CSV grammar the
// device application parses, the compress/encode/wrap tag transform, and
// the metadata field set written into the audio container.
package glyph

import (
	"fmt"
	"math"

	"glyphtone/model"
)

const (
	// FrameRate is the fixed rasterization rate in frames per second.
	FrameRate = 60

	// ZoneCount is the number of addressable LED zones on the target
	// device (glyph A, glyph B, glyph C1-C24).
	ZoneCount = 26

	// MaxBrightness is the top of the per-zone brightness range.
	MaxBrightness = 4095
)

// Matrix is the dense frame-by-zone brightness matrix. Every row has
// exactly ZoneCount cells and every cell is in [0, MaxBrightness].
type Matrix [][]int

// NewMatrix allocates an all-zero matrix with the given frame count.
func NewMatrix(frames int) Matrix {
	m := make(Matrix, frames)
	for i := range m {
		m[i] = make([]int, ZoneCount)
	}
	return m
}

// FrameCount returns the number of frames covering the given duration.
func FrameCount(duration float64) int {
	return int(math.Ceil(duration * FrameRate))
}

// Rasterize converts the committed per-track segments into a dense
// FrameCount(duration) x ZoneCount brightness matrix. Overlapping
// contributions resolve to the elementwise maximum, so segment order never
// changes the result. Frames no segment touches stay all-zero.
func Rasterize(tracks []model.TrackPerformance, duration float64) (Matrix, error) {
	if duration < 0 || math.IsNaN(duration) || math.IsInf(duration, 0) {
		return nil, fmt.Errorf("%w: duration %v", ErrInvalidSegment, duration)
	}

	m := NewMatrix(FrameCount(duration))
	for _, track := range tracks {
		for _, zone := range track.Zones {
			if zone < 0 || zone >= ZoneCount {
				return nil, fmt.Errorf("%w: track %q zone %d outside [0,%d)", ErrMatrixShape, track.Track, zone, ZoneCount)
			}
		}
		for _, seg := range track.Segments {
			if err := stampSegment(m, seg, track.Zones); err != nil {
				return nil, fmt.Errorf("track %q: %w", track.Track, err)
			}
		}
	}
	return m, nil
}

// stampSegment max-combines one segment into the matrix. The fade anchors
// to the segment's end frame; a fade longer than the segment is accepted
// and simply starts below full brightness.
func stampSegment(m Matrix, seg model.Segment, zones []int) error {
	if seg.Start < 0 || seg.End < seg.Start || seg.Fade < 0 {
		return fmt.Errorf("%w: start=%v end=%v fade=%v", ErrInvalidSegment, seg.Start, seg.End, seg.Fade)
	}

	startFrame := int(math.Floor(seg.Start * FrameRate))
	endFrame := int(math.Ceil(seg.End * FrameRate))
	fadeFrames := int(math.Round(seg.Fade * FrameRate))
	if fadeFrames < 0 {
		fadeFrames = 0
	}

	for f := startFrame; f <= endFrame; f++ {
		if f < 0 || f >= len(m) {
			continue
		}
		value := MaxBrightness
		if fadeFrames > 0 && f > endFrame-fadeFrames {
			progress := float64(endFrame-f) / float64(fadeFrames)
			if progress < 0 {
				progress = 0
			}
			value = int(math.Round(MaxBrightness * progress))
		}
		for _, zone := range zones {
			if value > m[f][zone] {
				m[f][zone] = value
			}
		}
	}
	return nil
}
