package audio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"glyphtone/core/glyph"
	"glyphtone/logger"
)

// FFmpegProcessor implements the Processor interface using ffmpeg/ffprobe
// subprocesses.
type FFmpegProcessor struct {
	ffmpegPath string
	bitrate    string
}

// NewFFmpegProcessor creates a new FFmpegProcessor.
func NewFFmpegProcessor(ffmpegPath, bitrate string) *FFmpegProcessor {
	return &FFmpegProcessor{ffmpegPath: ffmpegPath, bitrate: bitrate}
}

// FFmpegPath returns the configured ffmpeg binary path.
func (p *FFmpegProcessor) FFmpegPath() string {
	return p.ffmpegPath
}

func (p *FFmpegProcessor) ffprobePath() string {
	return strings.Replace(p.ffmpegPath, "ffmpeg", "ffprobe", 1)
}

// DetectCodec returns the codec name of the first audio stream.
func (p *FFmpegProcessor) DetectCodec(inputFile string) (string, error) {
	args := []string{
		"-v", "error",
		"-select_streams", "a:0",
		"-show_entries", "stream=codec_name",
		"-of", "json",
		inputFile,
	}

	cmd := exec.Command(p.ffprobePath(), args...)
	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffprobe execution failed for %s: %w\nFFprobe Error: %s", inputFile, err, stderr.String())
	}

	var probeData struct {
		Streams []struct {
			CodecName string `json:"codec_name"`
		} `json:"streams"`
	}
	if err := json.Unmarshal(out.Bytes(), &probeData); err != nil {
		return "", fmt.Errorf("failed to unmarshal ffprobe output: %w", err)
	}
	if len(probeData.Streams) == 0 {
		return "", fmt.Errorf("no audio streams found in %s", inputFile)
	}

	return strings.ToLower(probeData.Streams[0].CodecName), nil
}

// ffprobeOutput defines the structure for ffprobe JSON output.
type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// ProbeDuration uses ffprobe to get the duration of an audio file in seconds.
func (p *FFmpegProcessor) ProbeDuration(inputFile string) (float64, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		inputFile,
	}

	cmd := exec.Command(p.ffprobePath(), args...)
	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe execution failed for %s: %w\nFFprobe Error: %s", inputFile, err, stderr.String())
	}

	var probeData ffprobeOutput
	if err := json.Unmarshal(out.Bytes(), &probeData); err != nil {
		return 0, fmt.Errorf("failed to unmarshal ffprobe output for %s: %w\nFFprobe Output: %s", inputFile, err, out.String())
	}
	if probeData.Format.Duration == "" {
		return 0, fmt.Errorf("duration not found in ffprobe output for %s\nFFprobe Output: %s", inputFile, out.String())
	}

	duration, err := strconv.ParseFloat(probeData.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration string %q for %s: %w", probeData.Format.Duration, inputFile, err)
	}
	return duration, nil
}

// NeedsTranscode reports whether the input must be rewritten before tag
// writing. The device application only reads Opus streams in Ogg
// containers.
func NeedsTranscode(codec, inputFile string) bool {
	return codec != "opus" || strings.ToLower(filepath.Ext(inputFile)) != ".ogg"
}

// TranscodeToOpus rewrites the input as Ogg/Opus at 48 kHz stereo, the
// sample rate and channel count the device application expects.
func (p *FFmpegProcessor) TranscodeToOpus(inputFile, outputFile string) error {
	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return fmt.Errorf("failed to create output directory for %s: %w", outputFile, err)
	}

	args := []string{
		"-y",
		"-i", inputFile,
		"-ac", "2",
		"-ar", "48000",
		"-c:a", "libopus",
		"-b:a", p.bitrate,
		outputFile,
	}

	cmd := exec.Command(p.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logger.Debug("transcoding to ogg/opus",
		logger.String("input", inputFile),
		logger.String("output", outputFile),
		logger.String("bitrate", p.bitrate))

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg execution failed for %s: %w\nFFmpeg Error: %s", inputFile, err, stderr.String())
	}
	return nil
}

// WriteMetadata injects the assembled fields into the container without
// re-encoding. The ffmetadata document is fed on stdin so field values
// never pass through the shell.
func (p *FFmpegProcessor) WriteMetadata(inputFile, outputFile string, fields []glyph.Field) error {
	args := []string{
		"-y",
		"-i", inputFile,
		"-i", "-",
		"-map_metadata", "1",
		"-c:a", "copy",
		outputFile,
	}

	cmd := exec.Command(p.ffmpegPath, args...)
	cmd.Stdin = strings.NewReader(ffmetaDocument(fields))
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg metadata write failed for %s: %w\nFFmpeg Error: %s", inputFile, err, stderr.String())
	}
	return nil
}
