package glyph

import "sync"

// Field names and fixed values the device application looks for in the
// audio container.
const (
	FieldTitle    = "TITLE"
	FieldAlbum    = "ALBUM"
	FieldArtist   = "ARTIST"
	FieldAuthor   = "AUTHOR"
	FieldComposer = "COMPOSER"
	FieldCustom1  = "CUSTOM1"
	FieldCustom2  = "CUSTOM2"

	// ComposerTag identifies the composing tool; the device application
	// refuses files without it.
	ComposerTag = "v1-Pacman Glyph Composer"

	// FormatFlag declares the zone-count convention of the payload.
	FormatFlag = "26cols"

	// DefaultTitle is used when the caller supplies no display name.
	DefaultTitle = "Glyph"
)

// Field is one named metadata value. Fields are ordered: the container
// writer emits them in slice order.
type Field struct {
	Name  string
	Value string
}

// FieldOptions carries the optional caller-supplied fields.
type FieldOptions struct {
	Album  string
	Artist string
}

var emptyTagOnce = sync.OnceValue(func() string {
	tag, err := EncodeTag("")
	if err != nil {
		// EncodeTag cannot fail writing to an in-memory buffer.
		panic(err)
	}
	return tag
})

// EmptyTag returns the tag transform of the empty CSV document. It is the
// default CUSTOM1 value: the device requires the field to be present even
// when it carries no frames.
func EmptyTag() string {
	return emptyTagOnce()
}

// AssembleFields builds the ordered metadata field set. AUTHOR carries the
// primary payload and CUSTOM1 the secondary one (the empty-document tag
// when the caller supplies none). Every field the device consumer checks
// for presence is always emitted, even with an empty value.
func AssembleFields(primary, secondary, title string, opts FieldOptions) []Field {
	if title == "" {
		title = DefaultTitle
	}
	if secondary == "" {
		secondary = EmptyTag()
	}

	fields := []Field{{FieldTitle, title}}
	if opts.Album != "" {
		fields = append(fields, Field{FieldAlbum, opts.Album})
	}
	if opts.Artist != "" {
		fields = append(fields, Field{FieldArtist, opts.Artist})
	}
	return append(fields,
		Field{FieldAuthor, primary},
		Field{FieldComposer, ComposerTag},
		Field{FieldCustom1, secondary},
		Field{FieldCustom2, FormatFlag},
	)
}
