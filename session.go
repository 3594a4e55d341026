package docmerge

import (
	"context"
	"os"
	"sync"

	"github.com/docmerge/docmerge/internal/tabular"
	"github.com/google/uuid"
)

// Table is a loaded tabular data source.
type Table = tabular.Table

// LoadData parses tabular data by file extension (.csv, .xlsx or .xls).
// CSV content is decoded as UTF-8, then Latin-1, then Windows-1252,
// in that order.
func LoadData(data []byte, filename string) (*Table, error) {
	return tabular.Load(data, filename)
}

// LoadDataFile reads and parses a tabular data file.
func LoadDataFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return tabular.Load(data, path)
}

// Session carries the state of one merge pipeline: template, data,
// mapping, generated documents and the last dispatch result. Each
// session is identified by a UUID and fully isolated from every other
// session; there is no shared state between them.
// All methods are safe for concurrent use.
type Session struct {
	id       string
	reserved []string

	mu        sync.RWMutex
	template  *Template
	table     *Table
	mapping   map[string]string
	documents []GeneratedDocument
	result    *BatchResult
}

// NewSession creates an empty session. reserved lists placeholder names
// excluded from substitution; when none are given the default reserved
// set from DefaultConfig applies.
func NewSession(reserved ...string) *Session {
	if len(reserved) == 0 {
		reserved = DefaultConfig().Documents.ReservedPlaceholders
	}
	return &Session{
		id:       uuid.NewString(),
		reserved: reserved,
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// LoadTemplate parses template bytes into the session, replacing any
// previous template. The existing mapping and generated documents are
// cleared since they were derived from the old template.
func (s *Session) LoadTemplate(name string, raw []byte) error {
	tpl, err := ParseTemplate(name, raw, s.reserved)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.template = tpl
	s.mapping = nil
	s.documents = nil
	return nil
}

// LoadData parses tabular data into the session, replacing any previous
// data source. Generated documents are cleared; an existing mapping is
// kept so the caller can revalidate it against the new columns.
func (s *Session) LoadData(data []byte, filename string) error {
	table, err := tabular.Load(data, filename)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = table
	s.documents = nil
	return nil
}

// Template returns the loaded template, or nil.
func (s *Session) Template() *Template {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.template
}

// Table returns the loaded data source, or nil.
func (s *Session) Table() *Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table
}

// AutoMap proposes a mapping from the template's placeholders to the
// data source's columns and stores it in the session.
func (s *Session) AutoMap() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.template == nil {
		return nil, ErrNoTemplate
	}
	if s.table == nil {
		return nil, ErrNoData
	}

	// Virtual word columns take part so a {Total_Words} placeholder
	// binds exactly instead of falling through to a substring match
	// on the base column.
	columns := append(s.table.Columns(), s.table.VirtualColumns()...)
	s.mapping = AutoMap(s.template.Placeholders(), columns)
	return s.copyMapping(), nil
}

// SetMapping stores an explicit placeholder-to-column mapping, after
// verifying every mapped column exists in the loaded data.
func (s *Session) SetMapping(mapping map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.table == nil {
		return ErrNoData
	}
	if stale := s.table.ValidateMapping(mapping); len(stale) > 0 {
		return NewValidationErrorWithValue("mapping", "columns not present in data", stale)
	}

	s.mapping = make(map[string]string, len(mapping))
	for k, v := range mapping {
		s.mapping[k] = v
	}
	return nil
}

// Mapping returns a copy of the current mapping.
func (s *Session) Mapping() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyMapping()
}

func (s *Session) copyMapping() map[string]string {
	out := make(map[string]string, len(s.mapping))
	for k, v := range s.mapping {
		out[k] = v
	}
	return out
}

// Generate renders one document per data row using the current mapping
// and namer, and stores the results in the session.
func (s *Session) Generate(namer Namer) ([]GeneratedDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.template == nil {
		return nil, ErrNoTemplate
	}
	if s.table == nil {
		return nil, ErrNoData
	}

	docs, err := s.template.GenerateAll(s.table.RowsAsMaps(s.mapping), namer)
	if err != nil {
		return nil, err
	}

	s.documents = docs
	return docs, nil
}

// Documents returns the documents generated by the last Generate call.
func (s *Session) Documents() []GeneratedDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.documents
}

// Archive packs the generated documents into a zip archive.
func (s *Session) Archive() ([]byte, error) {
	s.mu.RLock()
	docs := s.documents
	s.mu.RUnlock()

	return BuildArchive(docs)
}

// Dispatch builds one send job per generated document and sends the
// batch through the given dispatcher. emailColumn selects the recipient
// address from each row; subject and body are rendered per row with
// literal token substitution. The batch result is stored in the session.
func (s *Session) Dispatch(ctx context.Context, d Dispatcher, emailColumn, subject, body string, progress ProgressFunc) (*BatchResult, error) {
	s.mu.RLock()
	table := s.table
	mapping := s.copyMapping()
	docs := s.documents
	s.mu.RUnlock()

	if table == nil {
		return nil, ErrNoData
	}

	rows := table.RowsAsMaps(mapping)
	jobs := make([]*SendJob, 0, len(docs))
	for i, doc := range docs {
		if i >= len(rows) {
			break
		}
		row := rows[i]
		to, _ := row.Lookup(emailColumn)
		if err := CheckAddress(to); err != nil {
			return nil, &RowError{Index: i, Cause: err}
		}
		jobs = append(jobs, &SendJob{
			To:      to,
			Subject: RenderText(subject, row),
			Body:    RenderText(body, row),
			Attachment: Attachment{
				Filename: doc.Filename,
				Data:     doc.Content,
			},
			RowIndex: i,
		})
	}

	result, err := d.SendBatch(ctx, jobs, progress)

	s.mu.Lock()
	s.result = result
	s.mu.Unlock()

	return result, err
}

// LastResult returns the result of the most recent Dispatch call.
func (s *Session) LastResult() *BatchResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result
}
