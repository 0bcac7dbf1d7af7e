package serialize

import (
	"strconv"
	"strings"
)

// MetadataFields carries the values written into md, in the fixed,
// significant order §4.5 requires.
type MetadataFields struct {
	Title       string
	Description string
	UUID        string
	Ref         string

	// NightMode mirrors story.json's optional nightModeAvailable flag. Nil
	// means the source pack didn't carry the field, in which case no line
	// is emitted.
	NightMode *bool
}

// EncodeMD serializes md: UTF-8 text, flat key-value pairs, one per line,
// order significant, trailing newline (§4.5). When f.NightMode is set, a
// nightModeAvailable line follows packType.
func EncodeMD(f MetadataFields) []byte {
	var b strings.Builder
	b.WriteString("title: ")
	b.WriteString(f.Title)
	b.WriteByte('\n')
	b.WriteString("description: ")
	b.WriteString(f.Description)
	b.WriteByte('\n')
	b.WriteString("uuid: ")
	b.WriteString(f.UUID)
	b.WriteByte('\n')
	b.WriteString("ref: ")
	b.WriteString(f.Ref)
	b.WriteByte('\n')
	b.WriteString("packType: custom\n")
	if f.NightMode != nil {
		b.WriteString("nightModeAvailable: ")
		b.WriteString(strconv.FormatBool(*f.NightMode))
		b.WriteByte('\n')
	}
	return []byte(b.String())
}
