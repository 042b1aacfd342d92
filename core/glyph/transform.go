package glyph

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// wrapWidth is the line length the device application expects in tag
// payloads: every line is exactly this long except possibly the last.
const wrapWidth = 76

// EncodeTag turns CSV text into the tag-safe payload string: UTF-8 bytes,
// zlib compression, standard base64 with all trailing padding stripped,
// re-wrapped into 76-character lines with a trailing newline. The output
// is byte-identical across invocations for identical input.
func EncodeTag(csvText string) (string, error) {
	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write([]byte(csvText)); err != nil {
		return "", fmt.Errorf("%w: compress: %v", ErrTransform, err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("%w: compress: %v", ErrTransform, err)
	}

	encoded := base64.StdEncoding.EncodeToString(compressed.Bytes())
	encoded = strings.TrimRight(encoded, "=")

	var b strings.Builder
	for i := 0; i < len(encoded); i += wrapWidth {
		end := i + wrapWidth
		if end > len(encoded) {
			end = len(encoded)
		}
		b.WriteString(encoded[i:end])
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// DecodeTag is the exact inverse of EncodeTag: strip the line wrapping,
// restore base64 padding, decode and decompress. Any stage failure — an
// impossible padding length, a bad base64 character, a corrupt or
// truncated deflate stream, non-UTF-8 output — reports ErrTransform.
func DecodeTag(payload string) (string, error) {
	raw := strings.ReplaceAll(payload, "\n", "")
	switch rem := len(raw) % 4; rem {
	case 0:
		// already aligned
	case 1:
		return "", fmt.Errorf("%w: base64 length %d cannot be repadded", ErrTransform, len(raw))
	default:
		raw += strings.Repeat("=", 4-rem)
	}

	compressed, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", fmt.Errorf("%w: base64: %v", ErrTransform, err)
	}

	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return "", fmt.Errorf("%w: inflate: %v", ErrTransform, err)
	}
	defer zr.Close()

	text, err := io.ReadAll(zr)
	if err != nil {
		return "", fmt.Errorf("%w: inflate: %v", ErrTransform, err)
	}
	if !utf8.Valid(text) {
		return "", fmt.Errorf("%w: decompressed payload is not valid UTF-8", ErrTransform)
	}
	return string(text), nil
}
