package glyph

import (
	"errors"
	"math/rand"
	"testing"

	"glyphtone/model"
)

func TestRasterizeFullBrightnessSecond(t *testing.T) {
	// One segment on zones 0-5 covering the whole 1s timeline, no fade.
	tracks := []model.TrackPerformance{{
		Track:    "C",
		Zones:    []int{0, 1, 2, 3, 4, 5},
		Segments: []model.Segment{{Start: 0, End: 1.0, Fade: 0}},
	}}

	m, err := Rasterize(tracks, 1.0)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	if len(m) != 60 {
		t.Fatalf("expected 60 frames, got %d", len(m))
	}
	for f, row := range m {
		for z, v := range row {
			want := 0
			if z <= 5 {
				want = MaxBrightness
			}
			if v != want {
				t.Fatalf("frame %d zone %d = %d, want %d", f, z, v, want)
			}
		}
	}
}

func TestRasterizeLinearFade(t *testing.T) {
	// Segment [0, 0.5] with a 0.5s fade on zone 25: full at frame 0,
	// linear ramp to zero at frame 30, dark afterwards.
	tracks := []model.TrackPerformance{{
		Track:    "B",
		Zones:    []int{25},
		Segments: []model.Segment{{Start: 0, End: 0.5, Fade: 0.5}},
	}}

	m, err := Rasterize(tracks, 1.0)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	if len(m) != 60 {
		t.Fatalf("expected 60 frames, got %d", len(m))
	}

	if m[0][25] != MaxBrightness {
		t.Errorf("frame 0 = %d, want %d", m[0][25], MaxBrightness)
	}
	if m[15][25] != 2048 {
		t.Errorf("frame 15 = %d, want 2048", m[15][25])
	}
	if m[30][25] != 0 {
		t.Errorf("frame 30 = %d, want 0", m[30][25])
	}
	for f := 1; f <= 30; f++ {
		if m[f][25] > m[f-1][25] {
			t.Fatalf("brightness rose from %d to %d at frame %d", m[f-1][25], m[f][25], f)
		}
	}
	for f := 31; f < 60; f++ {
		if m[f][25] != 0 {
			t.Fatalf("frame %d = %d, want 0 after fade end", f, m[f][25])
		}
	}
	// Only zone 25 is touched.
	for f := range m {
		for z := 0; z < 25; z++ {
			if m[f][z] != 0 {
				t.Fatalf("frame %d zone %d = %d, want 0", f, z, m[f][z])
			}
		}
	}
}

func TestRasterizeEmptyPerformance(t *testing.T) {
	m, err := Rasterize(nil, 2.0)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	if len(m) != 120 {
		t.Fatalf("expected 120 frames, got %d", len(m))
	}
	for f, row := range m {
		if len(row) != ZoneCount {
			t.Fatalf("frame %d has %d zones, want %d", f, len(row), ZoneCount)
		}
		for z, v := range row {
			if v != 0 {
				t.Fatalf("frame %d zone %d = %d, want 0", f, z, v)
			}
		}
	}
}

func TestRasterizeMaxCombineOrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	segments := make([]model.Segment, 0, 12)
	for i := 0; i < 12; i++ {
		start := rng.Float64() * 2
		segments = append(segments, model.Segment{
			Start: start,
			End:   start + rng.Float64(),
			Fade:  rng.Float64() * 0.5,
		})
	}

	tracks := func(segs []model.Segment) []model.TrackPerformance {
		return []model.TrackPerformance{
			{Track: "A", Zones: []int{0, 3, 7}, Segments: segs[:6]},
			{Track: "B", Zones: []int{3, 7, 11}, Segments: segs[6:]},
		}
	}

	want, err := Rasterize(tracks(segments), 3.0)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}

	reversed := make([]model.Segment, len(segments))
	for i, s := range segments {
		reversed[len(segments)-1-i] = s
	}
	swapped := []model.TrackPerformance{
		{Track: "B", Zones: []int{3, 7, 11}, Segments: reversed[:6]},
		{Track: "A", Zones: []int{0, 3, 7}, Segments: reversed[6:]},
	}
	got, err := Rasterize(swapped, 3.0)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}

	for f := range want {
		for z := range want[f] {
			if want[f][z] != got[f][z] {
				t.Fatalf("frame %d zone %d differs: %d vs %d", f, z, want[f][z], got[f][z])
			}
		}
	}
}

func TestRasterizeSegmentBeyondDuration(t *testing.T) {
	tracks := []model.TrackPerformance{{
		Track:    "A",
		Zones:    []int{0},
		Segments: []model.Segment{{Start: 5.0, End: 6.0}},
	}}
	m, err := Rasterize(tracks, 1.0)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	for f := range m {
		if m[f][0] != 0 {
			t.Fatalf("frame %d lit by segment entirely past the timeline", f)
		}
	}
}

func TestRasterizeShapeInvariant(t *testing.T) {
	for _, duration := range []float64{0, 0.01, 0.5, 1.0, 2.7} {
		m, err := Rasterize(nil, duration)
		if err != nil {
			t.Fatalf("Rasterize(%v): %v", duration, err)
		}
		if len(m) != FrameCount(duration) {
			t.Fatalf("duration %v: %d frames, want %d", duration, len(m), FrameCount(duration))
		}
		for _, row := range m {
			if len(row) != ZoneCount {
				t.Fatalf("duration %v: row width %d", duration, len(row))
			}
		}
	}
}

func TestRasterizeRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name   string
		tracks []model.TrackPerformance
		want   error
	}{
		{
			name: "end before start",
			tracks: []model.TrackPerformance{{
				Track: "A", Zones: []int{0},
				Segments: []model.Segment{{Start: 1.0, End: 0.5}},
			}},
			want: ErrInvalidSegment,
		},
		{
			name: "negative start",
			tracks: []model.TrackPerformance{{
				Track: "A", Zones: []int{0},
				Segments: []model.Segment{{Start: -0.1, End: 0.5}},
			}},
			want: ErrInvalidSegment,
		},
		{
			name: "negative fade",
			tracks: []model.TrackPerformance{{
				Track: "A", Zones: []int{0},
				Segments: []model.Segment{{Start: 0, End: 0.5, Fade: -1}},
			}},
			want: ErrInvalidSegment,
		},
		{
			name: "zone out of range",
			tracks: []model.TrackPerformance{{
				Track: "A", Zones: []int{26},
				Segments: []model.Segment{{Start: 0, End: 0.5}},
			}},
			want: ErrMatrixShape,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Rasterize(tc.tracks, 1.0); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}
