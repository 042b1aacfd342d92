// Package composer drives one export end to end: rasterize the committed
// performance, encode and transform the payload, assemble the metadata
// fields, and hand the audio work to the ffmpeg processor.
package composer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"glyphtone/core/audio"
	"glyphtone/core/glyph"
	"glyphtone/logger"
	"glyphtone/model"
)

// PayloadCache caches transformed payloads keyed by performance snapshot.
// Implementations must treat a miss as (value "", ok false); the pipeline
// is pure, so a miss only costs recomputation.
type PayloadCache interface {
	GetPayload(ctx context.Context, key string) (string, bool)
	SetPayload(ctx context.Context, key, payload string)
}

// Composer binds the pure pipeline to the audio processor and the optional
// payload cache. A Composer is stateless per invocation and safe for
// concurrent use.
type Composer struct {
	proc  audio.Processor
	cache PayloadCache // may be nil
}

// New creates a Composer. cache may be nil to disable payload caching.
func New(proc audio.Processor, cache PayloadCache) *Composer {
	return &Composer{proc: proc, cache: cache}
}

// Request describes one export.
type Request struct {
	AudioPath   string
	OutputDir   string
	Performance *model.Performance
	Title       string
	Album       string
	Artist      string
}

// Result describes a finished export.
type Result struct {
	OutputPath string
	FileName   string
	Duration   float64
	FrameCount int
}

// Compose runs the full export. The returned error is always an *Error
// naming the stage that failed.
func (c *Composer) Compose(ctx context.Context, req Request) (*Result, error) {
	perf := req.Performance

	duration := perf.Duration
	if duration <= 0 {
		probed, err := c.proc.ProbeDuration(req.AudioPath)
		if err != nil {
			return nil, &Error{Stage: StageProbe, Err: err}
		}
		duration = probed
	}

	payload, err := c.payload(ctx, perf.Tracks, duration)
	if err != nil {
		return nil, err
	}

	fields := glyph.AssembleFields(payload, "", req.Title, glyph.FieldOptions{
		Album:  req.Album,
		Artist: req.Artist,
	})

	workPath := req.AudioPath
	codec, err := c.proc.DetectCodec(req.AudioPath)
	if err != nil {
		// Same fallback as probing failures on upload: assume the worst
		// and let the transcoder sort it out.
		logger.Warn("codec detection failed, forcing transcode",
			logger.String("audio", req.AudioPath),
			logger.ErrorField(err))
		codec = ""
	}
	if audio.NeedsTranscode(codec, req.AudioPath) {
		tmp, err := os.CreateTemp("", "glyphtone-transcode-*.ogg")
		if err != nil {
			return nil, &Error{Stage: StageTranscode, Err: err}
		}
		tmp.Close()
		defer os.Remove(tmp.Name())

		if err := c.proc.TranscodeToOpus(req.AudioPath, tmp.Name()); err != nil {
			return nil, &Error{Stage: StageTranscode, Err: err}
		}
		workPath = tmp.Name()
	}

	fileName := OutputName(req.AudioPath)
	outputPath := filepath.Join(req.OutputDir, fileName)
	if err := os.MkdirAll(req.OutputDir, 0755); err != nil {
		return nil, &Error{Stage: StageTag, Err: err}
	}
	if err := c.proc.WriteMetadata(workPath, outputPath, fields); err != nil {
		return nil, &Error{Stage: StageTag, Err: err}
	}

	return &Result{
		OutputPath: outputPath,
		FileName:   fileName,
		Duration:   duration,
		FrameCount: glyph.FrameCount(duration),
	}, nil
}

// payload returns the transformed tag payload for the snapshot, consulting
// the cache first.
func (c *Composer) payload(ctx context.Context, tracks []model.TrackPerformance, duration float64) (string, error) {
	key := PayloadKey(tracks, duration)
	if c.cache != nil {
		if cached, ok := c.cache.GetPayload(ctx, key); ok {
			logger.Debug("payload cache hit", logger.String("key", key))
			return cached, nil
		}
	}

	payload, _, err := BuildPayload(tracks, duration)
	if err != nil {
		return "", err
	}
	if c.cache != nil {
		c.cache.SetPayload(ctx, key, payload)
	}
	return payload, nil
}

// BuildPayload runs the pure pipeline: segments to matrix to CSV to tag
// payload. It returns the payload and the frame count.
func BuildPayload(tracks []model.TrackPerformance, duration float64) (string, int, error) {
	matrix, err := glyph.Rasterize(tracks, duration)
	if err != nil {
		return "", 0, &Error{Stage: StageRasterize, Err: err}
	}
	csvText, err := glyph.EncodeCSV(matrix)
	if err != nil {
		return "", 0, &Error{Stage: StageEncode, Err: err}
	}
	payload, err := glyph.EncodeTag(csvText)
	if err != nil {
		return "", 0, &Error{Stage: StageTransform, Err: err}
	}
	return payload, len(matrix), nil
}

// OutputName derives the exported file name from the uploaded one, the
// same way the original composer did: "<base>_glyphed.ogg".
func OutputName(audioPath string) string {
	base := filepath.Base(audioPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" {
		base = "input"
	}
	return fmt.Sprintf("%s_glyphed.ogg", base)
}
