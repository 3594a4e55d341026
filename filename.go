package docmerge

import (
	"fmt"
	"strings"
)

// DocumentExtension is appended to every derived output filename.
const DocumentExtension = ".docx"

// autoNameFormat numbers documents sequentially, starting at one.
const autoNameFormat = "document_%04d" + DocumentExtension

// invalidFilenameChars are replaced with underscores in derived names.
const invalidFilenameChars = `<>:"/\|?*`

// NamePart is one fragment of a pattern-derived filename: either a
// column reference or a literal separator.
type NamePart struct {
	column  string
	literal string
}

// ColumnPart references a column; the row's formatted value is used.
func ColumnPart(name string) NamePart {
	return NamePart{column: name}
}

// LiteralPart inserts fixed text between column values.
func LiteralPart(text string) NamePart {
	return NamePart{literal: text}
}

// Namer derives output filenames for generated documents. The zero
// value is the sequential-numbering strategy.
type Namer struct {
	column string
	parts  []NamePart
}

// AutoNamer numbers documents sequentially: document_0001.docx,
// document_0002.docx, and so on.
func AutoNamer() Namer {
	return Namer{}
}

// ColumnNamer names each document after one column's value.
func ColumnNamer(column string) Namer {
	return Namer{column: column}
}

// PatternNamer builds each name from ordered column and literal
// fragments, e.g. ColumnPart("Name"), LiteralPart("_"), ColumnPart("ID").
func PatternNamer(parts ...NamePart) Namer {
	return Namer{parts: parts}
}

// Derive returns the sanitized filename for the row at the given
// zero-based index. A column reference missing from the row resolves to
// empty; when the whole derived stem comes out empty the sequential
// name is used for that row, so every document always gets a usable name.
func (n Namer) Derive(index int, data RowData) string {
	stem := n.stem(data)
	if stem == "" {
		return fmt.Sprintf(autoNameFormat, index+1)
	}
	return sanitizeFilename(stem + DocumentExtension)
}

func (n Namer) stem(data RowData) string {
	switch {
	case n.column != "":
		v, _ := data.Lookup(n.column)
		return strings.TrimSpace(v)
	case len(n.parts) > 0:
		var b strings.Builder
		for _, part := range n.parts {
			if part.column != "" {
				v, _ := data.Lookup(part.column)
				b.WriteString(v)
			} else {
				b.WriteString(part.literal)
			}
		}
		return strings.TrimSpace(b.String())
	default:
		return ""
	}
}

// sanitizeFilename replaces characters that are unsafe in filenames on
// common filesystems. It runs on the full name, extension included.
func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidFilenameChars, r) {
			return '_'
		}
		return r
	}, name)
}
