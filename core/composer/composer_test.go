package composer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"glyphtone/core/glyph"
	"glyphtone/model"
)

// fakeProcessor records calls and writes marker files instead of shelling
// out to ffmpeg.
type fakeProcessor struct {
	codec      string
	codecErr   error
	duration   float64
	transcoded bool
	tagged     bool
	fields     []glyph.Field
}

func (f *fakeProcessor) DetectCodec(string) (string, error) {
	return f.codec, f.codecErr
}

func (f *fakeProcessor) ProbeDuration(string) (float64, error) {
	return f.duration, nil
}

func (f *fakeProcessor) TranscodeToOpus(_, outputFile string) error {
	f.transcoded = true
	return os.WriteFile(outputFile, []byte("opus"), 0644)
}

func (f *fakeProcessor) WriteMetadata(_, outputFile string, fields []glyph.Field) error {
	f.tagged = true
	f.fields = fields
	return os.WriteFile(outputFile, []byte("tagged"), 0644)
}

type mapCache struct {
	values map[string]string
	hits   int
}

func (c *mapCache) GetPayload(_ context.Context, key string) (string, bool) {
	v, ok := c.values[key]
	if ok {
		c.hits++
	}
	return v, ok
}

func (c *mapCache) SetPayload(_ context.Context, key, payload string) {
	c.values[key] = payload
}

func testPerformance() *model.Performance {
	return &model.Performance{
		Name:     "demo",
		Duration: 1.0,
		Tracks: []model.TrackPerformance{{
			Track:    "A",
			Zones:    []int{0},
			Segments: []model.Segment{{Start: 0, End: 1.0}},
		}},
	}
}

func TestComposeTranscodesWhenNeeded(t *testing.T) {
	proc := &fakeProcessor{codec: "mp3"}
	c := New(proc, nil)

	res, err := c.Compose(context.Background(), Request{
		AudioPath:   filepath.Join(t.TempDir(), "song.mp3"),
		OutputDir:   t.TempDir(),
		Performance: testPerformance(),
		Title:       "demo",
	})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if !proc.transcoded {
		t.Error("mp3 input was not transcoded")
	}
	if !proc.tagged {
		t.Error("metadata was never written")
	}
	if res.FileName != "song_glyphed.ogg" {
		t.Errorf("FileName = %q", res.FileName)
	}
	if res.FrameCount != 60 {
		t.Errorf("FrameCount = %d, want 60", res.FrameCount)
	}
	if _, err := os.Stat(res.OutputPath); err != nil {
		t.Errorf("output file missing: %v", err)
	}
}

func TestComposeSkipsTranscodeForOggOpus(t *testing.T) {
	proc := &fakeProcessor{codec: "opus"}
	c := New(proc, nil)

	if _, err := c.Compose(context.Background(), Request{
		AudioPath:   filepath.Join(t.TempDir(), "song.ogg"),
		OutputDir:   t.TempDir(),
		Performance: testPerformance(),
	}); err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if proc.transcoded {
		t.Error("ogg/opus input should not be transcoded")
	}
}

func TestComposeForcesTranscodeOnProbeFailure(t *testing.T) {
	proc := &fakeProcessor{codecErr: errors.New("no ffprobe")}
	c := New(proc, nil)

	if _, err := c.Compose(context.Background(), Request{
		AudioPath:   filepath.Join(t.TempDir(), "song.ogg"),
		OutputDir:   t.TempDir(),
		Performance: testPerformance(),
	}); err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if !proc.transcoded {
		t.Error("probe failure should force a transcode")
	}
}

func TestComposeAssemblesRequiredFields(t *testing.T) {
	proc := &fakeProcessor{codec: "opus"}
	c := New(proc, nil)

	if _, err := c.Compose(context.Background(), Request{
		AudioPath:   filepath.Join(t.TempDir(), "song.ogg"),
		OutputDir:   t.TempDir(),
		Performance: testPerformance(),
		Title:       "Night Ride",
		Album:       "Glyph Tools",
	}); err != nil {
		t.Fatalf("Compose: %v", err)
	}

	byName := make(map[string]string)
	for _, f := range proc.fields {
		byName[f.Name] = f.Value
	}
	if byName[glyph.FieldComposer] != glyph.ComposerTag {
		t.Error("COMPOSER constant missing")
	}
	if byName[glyph.FieldCustom2] != glyph.FormatFlag {
		t.Error("CUSTOM2 constant missing")
	}
	if byName[glyph.FieldAuthor] == "" {
		t.Error("AUTHOR payload missing")
	}
	if byName[glyph.FieldCustom1] != glyph.EmptyTag() {
		t.Error("CUSTOM1 should default to the empty-document tag")
	}
	if byName[glyph.FieldAlbum] != "Glyph Tools" {
		t.Error("ALBUM not passed through")
	}
}

func TestComposeStageErrors(t *testing.T) {
	proc := &fakeProcessor{codec: "opus"}
	c := New(proc, nil)

	perf := testPerformance()
	perf.Tracks[0].Segments[0].End = -1 // end < start

	_, err := c.Compose(context.Background(), Request{
		AudioPath:   "song.ogg",
		OutputDir:   t.TempDir(),
		Performance: perf,
	})
	var stageErr *Error
	if !errors.As(err, &stageErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if stageErr.Stage != StageRasterize {
		t.Errorf("Stage = %s, want %s", stageErr.Stage, StageRasterize)
	}
	if !errors.Is(err, glyph.ErrInvalidSegment) {
		t.Error("stage error should unwrap to ErrInvalidSegment")
	}
}

func TestComposeUsesPayloadCache(t *testing.T) {
	proc := &fakeProcessor{codec: "opus"}
	cache := &mapCache{values: make(map[string]string)}
	c := New(proc, cache)

	req := Request{
		AudioPath:   filepath.Join(t.TempDir(), "song.ogg"),
		OutputDir:   t.TempDir(),
		Performance: testPerformance(),
	}
	if _, err := c.Compose(context.Background(), req); err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if len(cache.values) != 1 {
		t.Fatalf("payload not cached: %d entries", len(cache.values))
	}
	if _, err := c.Compose(context.Background(), req); err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if cache.hits != 1 {
		t.Fatalf("second export should hit the cache, hits = %d", cache.hits)
	}
}

func TestBuildPayloadRoundTrip(t *testing.T) {
	perf := testPerformance()
	payload, frames, err := BuildPayload(perf.Tracks, perf.Duration)
	if err != nil {
		t.Fatalf("BuildPayload: %v", err)
	}
	if frames != 60 {
		t.Fatalf("frames = %d, want 60", frames)
	}

	csvText, err := glyph.DecodeTag(payload)
	if err != nil {
		t.Fatalf("DecodeTag: %v", err)
	}
	matrix, err := glyph.DecodeCSV(csvText)
	if err != nil {
		t.Fatalf("DecodeCSV: %v", err)
	}
	if len(matrix) != 60 || matrix[0][0] != glyph.MaxBrightness || matrix[0][1] != 0 {
		t.Fatal("decoded matrix does not match the source performance")
	}
}

func TestPayloadKey(t *testing.T) {
	perf := testPerformance()
	a := PayloadKey(perf.Tracks, perf.Duration)
	b := PayloadKey(perf.Tracks, perf.Duration)
	if a != b {
		t.Fatal("identical snapshots produced different keys")
	}
	c := PayloadKey(perf.Tracks, perf.Duration+1)
	if a == c {
		t.Fatal("different durations produced the same key")
	}
}

func TestOutputName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"/tmp/upload/song.mp3", "song_glyphed.ogg"},
		{"track.ogg", "track_glyphed.ogg"},
		{"noext", "noext_glyphed.ogg"},
	}
	for _, tc := range cases {
		if got := OutputName(tc.in); got != tc.want {
			t.Errorf("OutputName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
