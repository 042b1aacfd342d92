package model

// Segment is one closed recording on a track: the zones it drives are on
// from Start to End, with an optional linear fade to zero over the last
// Fade seconds. All values are in seconds.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Fade  float64 `json:"fade"`
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// DraftSegment is a segment still being recorded: the key is held down and
// the end time is not known yet. Drafts never reach the rasterizer; the
// editor closes them on key release.
type DraftSegment struct {
	Start float64 `json:"start"`
	Fade  float64 `json:"fade"`
}

// Close finalizes the draft at the given end time.
func (d DraftSegment) Close(end float64) Segment {
	return Segment{Start: d.Start, End: end, Fade: d.Fade}
}

// TrackPerformance holds the committed segments of one control track and
// the zone indices that track drives.
type TrackPerformance struct {
	Track    string    `json:"track"`
	Zones    []int     `json:"zones"`
	Segments []Segment `json:"segments"`
}

// Performance is the immutable snapshot handed to the export pipeline.
// Duration is the total timeline length in seconds.
type Performance struct {
	Name     string             `json:"name"`
	Duration float64            `json:"duration"`
	Tracks   []TrackPerformance `json:"tracks"`
}

// DefaultTrackZones maps the stock control tracks onto the 26-zone device
// layout: glyph A, glyph B, and the 24 addressable segments of glyph C.
var DefaultTrackZones = map[string][]int{
	"A": {0},
	"B": {1},
	"C": zoneRange(2, 25),
}

func zoneRange(from, to int) []int {
	zones := make([]int, 0, to-from+1)
	for z := from; z <= to; z++ {
		zones = append(zones, z)
	}
	return zones
}
