// Package midiimport turns Standard MIDI Files into performance
// snapshots: note-on/note-off pairs become closed segments on the control
// track their key is bound to.
package midiimport

import (
	"fmt"
	"io"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"

	"glyphtone/logger"
	"glyphtone/model"
)

// Options controls how MIDI notes map onto control tracks.
type Options struct {
	// Fade is applied to every imported segment, in seconds.
	Fade float64
	// KeyTracks binds MIDI note numbers to track names. Notes without a
	// binding are ignored. Nil selects DefaultKeyTracks.
	KeyTracks map[uint8]string
}

// DefaultKeyTracks binds the C major triad around middle C to the stock
// tracks: C4 drives glyph A, E4 glyph B, G4 glyph C.
func DefaultKeyTracks() map[uint8]string {
	return map[uint8]string{
		60: "A",
		64: "B",
		67: "C",
	}
}

// ReadPerformance parses an SMF stream into a performance. Tempo changes
// are honored; note timing comes from the file's absolute microsecond
// positions. Notes still sounding at end of file are closed there.
func ReadPerformance(r io.Reader, opts Options) (*model.Performance, error) {
	keyTracks := opts.KeyTracks
	if keyTracks == nil {
		keyTracks = DefaultKeyTracks()
	}
	if opts.Fade < 0 {
		return nil, fmt.Errorf("negative fade %v", opts.Fade)
	}

	// open tracks notes currently sounding (note -> start seconds).
	open := make(map[uint8]float64)
	segments := make(map[string][]model.Segment)
	var end float64

	rd := smf.ReadTracksFrom(r)
	rd.Do(func(te smf.TrackEvent) {
		at := float64(te.AbsMicroSeconds) / 1e6
		if at > end {
			end = at
		}

		var channel, key, velocity uint8
		switch {
		case te.Message.GetNoteStart(&channel, &key, &velocity):
			if _, held := open[key]; !held {
				open[key] = at
			}
		case te.Message.GetNoteEnd(&channel, &key):
			start, held := open[key]
			if !held {
				return
			}
			delete(open, key)
			track, bound := keyTracks[key]
			if !bound {
				return
			}
			segments[track] = append(segments[track], model.Segment{Start: start, End: at, Fade: opts.Fade})
		}
	})
	if err := rd.Error(); err != nil {
		return nil, fmt.Errorf("read smf: %w", err)
	}

	// Close anything still sounding at end of file.
	for key, start := range open {
		track, bound := keyTracks[key]
		if !bound {
			continue
		}
		logger.Debug("closing unterminated note at end of file",
			logger.Int("key", int(key)),
			logger.Float64("start", start))
		segments[track] = append(segments[track], model.Segment{Start: start, End: end, Fade: opts.Fade})
	}

	// Stable track order for deterministic snapshots.
	names := make([]string, 0, len(segments))
	for name := range segments {
		names = append(names, name)
	}
	sort.Strings(names)

	tracks := make([]model.TrackPerformance, 0, len(names))
	for _, name := range names {
		zones, ok := model.DefaultTrackZones[name]
		if !ok {
			return nil, fmt.Errorf("track %q has no zone mapping", name)
		}
		tracks = append(tracks, model.TrackPerformance{
			Track:    name,
			Zones:    zones,
			Segments: segments[name],
		})
	}

	return &model.Performance{Duration: end, Tracks: tracks}, nil
}
