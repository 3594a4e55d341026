// Package docx implements placeholder discovery and substitution for
// WordprocessingML documents. A document is treated as an immutable byte
// blob: every generation parses a fresh copy from the original archive,
// so repeated or concurrent generations never interfere.
package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/docmerge/docmerge/internal/core"
)

// placeholderPattern matches {name} tokens: an opening brace, one or more
// non-brace characters, a closing brace. An unterminated brace is simply
// not matched.
var placeholderPattern = regexp.MustCompile(`\{([^}]+)\}`)

// textPartPattern selects the archive entries that carry visible text:
// the main body plus every section's headers and footers.
var textPartPattern = regexp.MustCompile(`^word/(document|header\d*|footer\d*)\.xml$`)

// Template is a parsed document template. It owns no mutable state;
// all generation work happens on fresh copies of the original bytes.
type Template struct {
	raw          []byte
	placeholders map[string]struct{}
}

// Parse opens a document from its raw bytes and extracts the placeholder
// set across the body, all tables (including nested ones), and every
// header and footer. Parsing the same bytes twice yields the same set.
func Parse(raw []byte) (*Template, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("open document archive: %w", err)
	}

	found := false
	placeholders := make(map[string]struct{})
	for _, f := range zr.File {
		if !textPartPattern.MatchString(f.Name) {
			continue
		}
		if f.Name == "word/document.xml" {
			found = true
		}
		part, err := readZipFile(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		collectPlaceholders(string(part), placeholders)
	}
	if !found {
		return nil, fmt.Errorf("not a WordprocessingML document: missing word/document.xml")
	}

	buf := make([]byte, len(raw))
	copy(buf, raw)

	return &Template{raw: buf, placeholders: placeholders}, nil
}

// Bytes returns a copy of the original template bytes.
func (t *Template) Bytes() []byte {
	out := make([]byte, len(t.raw))
	copy(out, t.raw)
	return out
}

// Placeholders returns the discovered placeholder names, sorted
// alphabetically for display.
func (t *Template) Placeholders() []string {
	names := make([]string, 0, len(t.placeholders))
	for name := range t.placeholders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether the template contains the named placeholder.
func (t *Template) Has(name string) bool {
	_, ok := t.placeholders[name]
	return ok
}

// Generate produces a fresh document with every placeholder occurrence
// replaced. The replacement map is built from the full placeholder set:
// an exact key in data wins, then a case-insensitive key, then empty
// string. Names listed in reserved are skipped entirely (exact,
// case-sensitive match) and survive in the output as literal tokens.
func (t *Template) Generate(data core.RowData, reserved []string) ([]byte, error) {
	replacements := t.buildReplacements(data, reserved)

	zr, err := zip.NewReader(bytes.NewReader(t.raw), int64(len(t.raw)))
	if err != nil {
		return nil, fmt.Errorf("open document archive: %w", err)
	}

	var out bytes.Buffer
	zw := zip.NewWriter(&out)

	for _, f := range zr.File {
		part, err := readZipFile(f)
		if err != nil {
			zw.Close()
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}

		if textPartPattern.MatchString(f.Name) {
			part = []byte(substitutePart(string(part), replacements))
		}

		w, err := zw.Create(f.Name)
		if err != nil {
			zw.Close()
			return nil, fmt.Errorf("write %s: %w", f.Name, err)
		}
		if _, err := w.Write(part); err != nil {
			zw.Close()
			return nil, fmt.Errorf("write %s: %w", f.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize document archive: %w", err)
	}
	return out.Bytes(), nil
}

// buildReplacements resolves every discovered placeholder against the
// row data. Reserved names never enter the map, so their tokens are
// left intact for downstream anchoring.
func (t *Template) buildReplacements(data core.RowData, reserved []string) map[string]string {
	skip := make(map[string]struct{}, len(reserved))
	for _, name := range reserved {
		skip[name] = struct{}{}
	}

	replacements := make(map[string]string, len(t.placeholders))
	for name := range t.placeholders {
		if _, ok := skip[name]; ok {
			continue
		}
		value, _ := data.Lookup(name)
		replacements[name] = value
	}
	return replacements
}

// collectPlaceholders extracts trimmed placeholder names from the visible
// text of one archive part into the accumulator set.
func collectPlaceholders(part string, into map[string]struct{}) {
	for _, para := range paragraphs(part) {
		text := paragraphText(para)
		for _, m := range placeholderPattern.FindAllStringSubmatch(text, -1) {
			name := strings.TrimSpace(m[1])
			if name != "" {
				into[name] = struct{}{}
			}
		}
	}
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
