package docmerge

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// BuildArchive packs generated documents into a deflate-compressed zip
// archive, preserving row order. Duplicate filenames are written as-is;
// which entry a consumer sees on extraction is up to their unzip tool.
func BuildArchive(docs []GeneratedDocument) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	for _, doc := range docs {
		f, err := w.Create(doc.Filename)
		if err != nil {
			w.Close()
			return nil, fmt.Errorf("archive entry %s: %w", doc.Filename, err)
		}
		if _, err := f.Write(doc.Content); err != nil {
			w.Close()
			return nil, fmt.Errorf("archive entry %s: %w", doc.Filename, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}

	return buf.Bytes(), nil
}
