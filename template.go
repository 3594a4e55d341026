package docmerge

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/docmerge/docmerge/internal/docx"
)

// Template is a parsed .docx mail-merge template. The underlying bytes
// are never mutated; every Generate call renders a fresh copy, so one
// Template can serve any number of rows and is safe for concurrent use.
type Template struct {
	name     string
	reserved []string
	inner    *docx.Template
}

// ParseTemplate parses template bytes. name identifies the template in
// error messages. reserved lists placeholder names left untouched
// during substitution (exact, case-sensitive match); pass nil to
// substitute everything.
func ParseTemplate(name string, raw []byte, reserved []string) (*Template, error) {
	inner, err := docx.Parse(raw)
	if err != nil {
		return nil, NewTemplateError(name, "parse", "not a readable document", err)
	}
	return &Template{
		name:     name,
		reserved: append([]string(nil), reserved...),
		inner:    inner,
	}, nil
}

// LoadTemplate reads and parses a template file.
func LoadTemplate(path string, reserved []string) (*Template, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, NewTemplateError(filepath.Base(path), "read", "cannot read template file", err)
	}
	return ParseTemplate(filepath.Base(path), raw, reserved)
}

// Name returns the template's identifying name.
func (t *Template) Name() string {
	return t.name
}

// Placeholders returns the distinct placeholder names discovered in the
// document body, tables, headers and footers, sorted alphabetically.
func (t *Template) Placeholders() []string {
	return t.inner.Placeholders()
}

// Has reports whether the named placeholder appears in the document.
func (t *Template) Has(name string) bool {
	return t.inner.Has(name)
}

// Generate renders one document from the template with the given row
// data. Placeholders with no matching key resolve to an empty string;
// reserved placeholders survive verbatim.
func (t *Template) Generate(data RowData) ([]byte, error) {
	content, err := t.inner.Generate(data, t.reserved)
	if err != nil {
		return nil, NewTemplateError(t.name, "generate", "substitution failed", err)
	}
	return content, nil
}

// GenerateAll renders one document per row, deriving each filename with
// the given namer. A failing row aborts generation and is reported with
// its index; there is no skip-and-continue.
func (t *Template) GenerateAll(rows []RowData, namer Namer) ([]GeneratedDocument, error) {
	docs := make([]GeneratedDocument, 0, len(rows))
	for i, row := range rows {
		content, err := t.Generate(row)
		if err != nil {
			return nil, fmt.Errorf("generate documents: %w", &RowError{Index: i, Cause: err})
		}
		docs = append(docs, GeneratedDocument{
			Filename: namer.Derive(i, row),
			Content:  content,
		})
	}
	return docs, nil
}
