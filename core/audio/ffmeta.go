package audio

import (
	"strings"

	"glyphtone/core/glyph"
)

// ffmetaHeader is the magic first line of an ffmetadata document.
const ffmetaHeader = ";FFMETADATA1"

// ffmetaEscaper escapes a value for the ffmetadata format. Newlines inside
// values become a backslash followed by a real newline — not the two-byte
// sequence "\n" — which is how ffmpeg expects line continuations.
var ffmetaEscaper = strings.NewReplacer(
	"\\", "\\\\",
	"=", "\\=",
	";", "\\;",
	"#", "\\#",
	"\n", "\\\n",
)

// ffmetaDocument renders the assembled fields as an ffmetadata document.
// Field order is preserved.
func ffmetaDocument(fields []glyph.Field) string {
	lines := make([]string, 0, len(fields)+1)
	lines = append(lines, ffmetaHeader)
	for _, f := range fields {
		lines = append(lines, f.Name+"="+ffmetaEscaper.Replace(f.Value))
	}
	return strings.Join(lines, "\n") + "\n"
}
