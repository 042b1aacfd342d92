package glyph

import (
	"errors"
	"strings"
	"testing"

	"glyphtone/model"
)

func sampleCSV(t *testing.T, duration float64) string {
	t.Helper()
	tracks := []model.TrackPerformance{
		{Track: "A", Zones: []int{0}, Segments: []model.Segment{{Start: 0, End: duration / 2, Fade: duration / 4}}},
		{Track: "C", Zones: []int{2, 3, 4}, Segments: []model.Segment{{Start: duration / 4, End: duration, Fade: 0.1}}},
	}
	m, err := Rasterize(tracks, duration)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	text, err := EncodeCSV(m)
	if err != nil {
		t.Fatalf("EncodeCSV: %v", err)
	}
	return text
}

func TestTagRoundTrip(t *testing.T) {
	csvText := sampleCSV(t, 3.0)

	payload, err := EncodeTag(csvText)
	if err != nil {
		t.Fatalf("EncodeTag: %v", err)
	}
	got, err := DecodeTag(payload)
	if err != nil {
		t.Fatalf("DecodeTag: %v", err)
	}
	if got != csvText {
		t.Fatal("tag round trip did not reproduce the CSV text")
	}
}

func TestTagDeterminism(t *testing.T) {
	csvText := sampleCSV(t, 2.0)
	first, err := EncodeTag(csvText)
	if err != nil {
		t.Fatalf("EncodeTag: %v", err)
	}
	second, err := EncodeTag(csvText)
	if err != nil {
		t.Fatalf("EncodeTag: %v", err)
	}
	if first != second {
		t.Fatal("two encodings of identical input differ")
	}
}

func TestTagLineWrapInvariant(t *testing.T) {
	payload, err := EncodeTag(sampleCSV(t, 10.0))
	if err != nil {
		t.Fatalf("EncodeTag: %v", err)
	}

	if strings.Contains(payload, "=") {
		t.Fatal("payload contains base64 padding")
	}
	if !strings.HasSuffix(payload, "\n") {
		t.Fatal("payload missing trailing newline")
	}

	lines := strings.Split(strings.TrimSuffix(payload, "\n"), "\n")
	if len(lines) < 3 {
		t.Fatalf("sample too small to exercise wrapping: %d lines", len(lines))
	}
	for i, line := range lines {
		if i < len(lines)-1 && len(line) != 76 {
			t.Fatalf("line %d has length %d, want 76", i, len(line))
		}
		if i == len(lines)-1 && (len(line) == 0 || len(line) > 76) {
			t.Fatalf("final line has length %d", len(line))
		}
	}
}

func TestTagEmptyDocument(t *testing.T) {
	payload, err := EncodeTag("")
	if err != nil {
		t.Fatalf("EncodeTag: %v", err)
	}
	if !strings.HasSuffix(payload, "\n") || strings.Contains(payload, "=") {
		t.Fatalf("empty-document payload malformed: %q", payload)
	}
	got, err := DecodeTag(payload)
	if err != nil {
		t.Fatalf("DecodeTag: %v", err)
	}
	if got != "" {
		t.Fatalf("empty document decoded to %q", got)
	}
}

func TestDecodeTagRejectsCorruptInput(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		// A stream whose unwrapped length is 1 mod 4 cannot be repadded.
		{"impossible padding length", "eJwDA\n"},
		{"invalid base64 characters", "!!!!\n"},
		// Valid base64 that is not a zlib stream.
		{"not a deflate stream", "QUJDRA\n"},
		// Valid zlib header with a truncated body.
		{"truncated deflate stream", "eJw\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeTag(tc.payload); !errors.Is(err, ErrTransform) {
				t.Fatalf("got %v, want ErrTransform", err)
			}
		})
	}
}

func TestDecodeTagTruncatedPayload(t *testing.T) {
	payload, err := EncodeTag(sampleCSV(t, 5.0))
	if err != nil {
		t.Fatalf("EncodeTag: %v", err)
	}
	// Drop the tail of the compressed stream but keep base64 alignment.
	raw := strings.ReplaceAll(payload, "\n", "")
	truncated := raw[:len(raw)/2-len(raw)/2%4]
	if _, err := DecodeTag(truncated + "\n"); !errors.Is(err, ErrTransform) {
		t.Fatalf("got %v, want ErrTransform", err)
	}
}

func TestFullPipelineDeterminism(t *testing.T) {
	tracks := []model.TrackPerformance{
		{Track: "B", Zones: []int{1}, Segments: []model.Segment{{Start: 0.2, End: 1.7, Fade: 0.4}}},
	}

	run := func() string {
		m, err := Rasterize(tracks, 2.0)
		if err != nil {
			t.Fatalf("Rasterize: %v", err)
		}
		csvText, err := EncodeCSV(m)
		if err != nil {
			t.Fatalf("EncodeCSV: %v", err)
		}
		payload, err := EncodeTag(csvText)
		if err != nil {
			t.Fatalf("EncodeTag: %v", err)
		}
		return payload
	}

	if run() != run() {
		t.Fatal("full pipeline is not deterministic")
	}
}
