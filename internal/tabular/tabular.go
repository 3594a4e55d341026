// Package tabular loads delimited-text and spreadsheet files into a
// row-oriented table with named columns. Parsing libraries are treated
// as black-box codecs; this package owns extension dispatch, encoding
// fallback, value typing and the formatting rules shared by document
// substitution and filename construction.
package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/language"

	"github.com/docmerge/docmerge/internal/core"
	"github.com/docmerge/docmerge/internal/words"
)

// ErrUnsupportedFormat indicates a data file extension with no
// registered loader.
var ErrUnsupportedFormat = errors.New("unsupported data format")

// DataFormatError reports an unusable data file: an unsupported
// extension, an undecodable text encoding, or a malformed payload.
// It is fatal; the load aborts.
type DataFormatError struct {
	// Filename is the name of the offending file.
	Filename string

	// Message describes what made the file unusable.
	Message string

	// Cause is the underlying parser error, if any.
	Cause error
}

// Error implements the error interface.
func (e *DataFormatError) Error() string {
	return fmt.Sprintf("data format error in %s: %s", e.Filename, e.Message)
}

// Unwrap returns the underlying error.
func (e *DataFormatError) Unwrap() error {
	return e.Cause
}

// Table is an ordered sequence of rows with named columns. Tables are
// read-only after load; row order is preserved end-to-end because it
// drives auto-numbered filenames and row-index failure reporting.
type Table struct {
	columns []string
	rows    []core.Row
}

// Load parses a data file, dispatching on the filename extension.
// Supported extensions: .csv, .xlsx, .xls.
func Load(data []byte, filename string) (*Table, error) {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".csv"):
		return loadCSV(data, filename)
	case strings.HasSuffix(lower, ".xlsx"):
		return loadXLSX(data, filename)
	case strings.HasSuffix(lower, ".xls"):
		return loadXLS(data, filename)
	default:
		return nil, &DataFormatError{
			Filename: filename,
			Message:  "unsupported file format: supported formats are .csv, .xlsx, .xls",
			Cause:    ErrUnsupportedFormat,
		}
	}
}

// Columns returns the trimmed column names in authored order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() int {
	return len(t.rows)
}

// Rows returns the typed rows in authored order.
func (t *Table) Rows() []core.Row {
	return t.rows
}

// Preview returns up to n leading rows for display.
func (t *Table) Preview(n int) []core.Row {
	if n > len(t.rows) {
		n = len(t.rows)
	}
	return t.rows[:n]
}

// UniqueValues returns up to limit distinct non-null formatted values
// from a column, in first-seen order.
func (t *Table) UniqueValues(column string, limit int) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, row := range t.rows {
		v := row.Get(column)
		if v.IsNull() {
			continue
		}
		s := v.String()
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
		if len(out) >= limit {
			break
		}
	}
	return out
}

// VirtualColumns lists the "<column>_Words" companions available for
// mapping: one per column that holds a numeric or numeric-looking value
// in at least one row.
func (t *Table) VirtualColumns() []string {
	var out []string
	for _, column := range t.columns {
		for _, row := range t.rows {
			if _, ok := row.Get(column).Numeric(); ok {
				out = append(out, column+"_Words")
				break
			}
		}
	}
	return out
}

// ValidateMapping flags mapped column names no longer present in the
// table, guarding against a stale mapping after the data was reloaded.
// Virtual word columns count as present.
func (t *Table) ValidateMapping(mapping map[string]string) []string {
	known := make(map[string]struct{}, len(t.columns))
	for _, c := range t.columns {
		known[c] = struct{}{}
	}
	for _, c := range t.VirtualColumns() {
		known[c] = struct{}{}
	}

	var missing []string
	for _, column := range mapping {
		if column == "" {
			continue
		}
		if _, ok := known[column]; !ok {
			missing = append(missing, column)
		}
	}
	return missing
}

var titleCaser = cases.Title(language.English)

// RowsAsMaps materializes every row as formatted strings. All original
// columns appear under their own names so filename strategies can
// reference columns that are not placeholders; numeric and
// numeric-looking values additionally get a "<column>_Words" companion
// holding the title-cased word form. Mapping entries are applied last,
// keying the mapped column's value (plain or virtual) by placeholder
// name; a mapped column missing from the row resolves to empty.
func (t *Table) RowsAsMaps(mapping map[string]string) []core.RowData {
	out := make([]core.RowData, 0, len(t.rows))
	for _, row := range t.rows {
		data := make(core.RowData, len(row.Columns)+len(mapping))

		for _, column := range row.Columns {
			data[column] = row.Get(column).String()
		}
		for _, column := range row.Columns {
			if f, ok := row.Get(column).Numeric(); ok {
				data[column+"_Words"] = titleCaser.String(words.FromFloat(f))
			}
		}

		if len(mapping) > 0 {
			source := make(core.RowData, len(data))
			for k, v := range data {
				source[k] = v
			}
			for placeholder, column := range mapping {
				if v, ok := source[column]; ok {
					data[placeholder] = v
				} else {
					data[placeholder] = ""
				}
			}
		}

		out = append(out, data)
	}
	return out
}

// loadCSV decodes delimited text, attempting a fixed ordered list of
// encodings and using the first that decodes cleanly.
func loadCSV(data []byte, filename string) (*Table, error) {
	decoded, err := decodeText(data)
	if err != nil {
		return nil, &DataFormatError{
			Filename: filename,
			Message:  "could not decode file with any supported encoding (UTF-8, Latin-1, Windows-1252)",
			Cause:    err,
		}
	}

	r := csv.NewReader(strings.NewReader(decoded))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, &DataFormatError{Filename: filename, Message: "malformed CSV", Cause: err}
	}
	return fromRecords(records, filename)
}

// decodeText attempts UTF-8 first, then Latin-1 and Windows-1252.
func decodeText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(data) {
		return string(data), nil
	}

	for _, cm := range []*charmap.Charmap{charmap.ISO8859_1, charmap.Windows1252} {
		decoded, err := io.ReadAll(cm.NewDecoder().Reader(bytes.NewReader(data)))
		if err == nil {
			return string(decoded), nil
		}
	}
	return "", fmt.Errorf("no supported encoding decodes the input")
}

// loadXLSX parses a modern spreadsheet, reading the first sheet.
func loadXLSX(data []byte, filename string) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &DataFormatError{Filename: filename, Message: "unreadable spreadsheet", Cause: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &DataFormatError{Filename: filename, Message: "spreadsheet contains no sheets"}
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &DataFormatError{Filename: filename, Message: "unreadable sheet", Cause: err}
	}
	return fromRecords(records, filename)
}

// loadXLS parses a legacy spreadsheet, reading the first sheet.
func loadXLS(data []byte, filename string) (*Table, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, &DataFormatError{Filename: filename, Message: "unreadable spreadsheet", Cause: err}
	}

	records := wb.ReadAllCells(math.MaxInt32)
	return fromRecords(records, filename)
}

// fromRecords builds a Table from raw string records: the first record
// holds the headers, trimmed of surrounding whitespace. Duplicate column
// names after trimming are rejected outright rather than silently
// colliding during row materialization.
func fromRecords(records [][]string, filename string) (*Table, error) {
	if len(records) == 0 {
		return nil, &DataFormatError{Filename: filename, Message: "file contains no header row"}
	}

	columns := make([]string, len(records[0]))
	seen := make(map[string]struct{}, len(records[0]))
	for i, h := range records[0] {
		name := strings.TrimSpace(h)
		if _, dup := seen[name]; dup {
			return nil, &DataFormatError{
				Filename: filename,
				Message:  fmt.Sprintf("duplicate column name after trimming: %q", name),
			}
		}
		seen[name] = struct{}{}
		columns[i] = name
	}

	rows := make([]core.Row, 0, len(records)-1)
	for _, record := range records[1:] {
		values := make(map[string]core.Value, len(columns))
		for i, column := range columns {
			if i < len(record) {
				values[column] = parseValue(record[i])
			} else {
				values[column] = core.NullValue()
			}
		}
		rows = append(rows, core.Row{Columns: columns, Values: values})
	}

	return &Table{columns: columns, rows: rows}, nil
}

// parseValue types a raw cell: empty is null; an integer that survives a
// format round-trip stays an integer (protecting zero-padded identifiers
// from mangling); a parseable decimal becomes a float; anything else is
// free text.
func parseValue(raw string) core.Value {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return core.NullValue()
	}

	if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		if strconv.FormatInt(n, 10) == trimmed {
			return core.IntValue(n)
		}
		return core.StringValue(raw)
	}

	if strings.ContainsAny(trimmed, ".eE") {
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return core.FloatValue(f)
		}
	}

	return core.StringValue(raw)
}
