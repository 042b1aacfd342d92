package watch

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStem(t *testing.T) {
	cases := []struct{ in, want string }{
		{"/watch/ride.json", "ride"},
		{"/watch/ride.ogg", "ride"},
		{"ride.mp3", "ride"},
		{"noext", "noext"},
	}
	for _, tc := range cases {
		if got := stem(tc.in); got != tc.want {
			t.Errorf("stem(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFindAudio(t *testing.T) {
	dir := t.TempDir()
	if _, ok := findAudio(dir, "ride"); ok {
		t.Fatal("found audio in empty dir")
	}

	if err := os.WriteFile(filepath.Join(dir, "ride.mp3"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	got, ok := findAudio(dir, "ride")
	if !ok || filepath.Base(got) != "ride.mp3" {
		t.Fatalf("findAudio = %q, %v", got, ok)
	}

	// Ogg wins over mp3 when both exist.
	if err := os.WriteFile(filepath.Join(dir, "ride.ogg"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	got, _ = findAudio(dir, "ride")
	if filepath.Base(got) != "ride.ogg" {
		t.Fatalf("findAudio preferred %q", got)
	}
}

func TestReadPerformance(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "ride.json")
	content := `{
		"name": "Night Ride",
		"duration": 2.0,
		"tracks": [
			{"track": "A", "zones": [0], "segments": [{"start": 0, "end": 1.5, "fade": 0.5}]}
		]
	}`
	if err := os.WriteFile(doc, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	perf, err := readPerformance(doc)
	if err != nil {
		t.Fatalf("readPerformance: %v", err)
	}
	if perf.Name != "Night Ride" || perf.Duration != 2.0 || len(perf.Tracks) != 1 {
		t.Fatalf("unexpected performance %+v", perf)
	}
	if perf.Tracks[0].Segments[0].Fade != 0.5 {
		t.Fatalf("segment fade = %v", perf.Tracks[0].Segments[0].Fade)
	}
}

func TestReadPerformanceRejectsBadJSON(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(doc, []byte("{nope"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := readPerformance(doc); err == nil {
		t.Fatal("expected a parse error")
	}
}
