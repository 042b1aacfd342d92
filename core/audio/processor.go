package audio

import "glyphtone/core/glyph"

// Processor defines the external audio operations the export pipeline
// delegates to. The core pipeline itself never touches audio bytes.
type Processor interface {
	// DetectCodec returns the codec name of the first audio stream.
	DetectCodec(inputFile string) (string, error)
	// ProbeDuration returns the container duration in seconds.
	ProbeDuration(inputFile string) (float64, error)
	// TranscodeToOpus rewrites the input as Ogg/Opus, 48 kHz stereo.
	TranscodeToOpus(inputFile, outputFile string) error
	// WriteMetadata copies the audio stream untouched and replaces the
	// container metadata with the given fields, byte for byte.
	WriteMetadata(inputFile, outputFile string, fields []glyph.Field) error
}
