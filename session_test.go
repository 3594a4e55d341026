package docmerge_test

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docmerge/docmerge"
)

type fakeDispatcher struct {
	jobs   []*docmerge.SendJob
	result *docmerge.BatchResult
	err    error
}

func (d *fakeDispatcher) SendBatch(_ context.Context, jobs []*docmerge.SendJob, progress docmerge.ProgressFunc) (*docmerge.BatchResult, error) {
	d.jobs = jobs
	if progress != nil {
		for i := range jobs {
			progress(i+1, len(jobs), "sent to "+jobs[i].To)
		}
	}
	if d.result == nil {
		d.result = &docmerge.BatchResult{Total: len(jobs), Sent: len(jobs), Transport: "fake"}
	}
	return d.result, d.err
}

func (d *fakeDispatcher) TestConnection(context.Context) error { return nil }

func (d *fakeDispatcher) Close() error { return nil }

const recipientsCSV = "Name,Amount,Email\nAsha,500,asha@example.com\nBen,1250,ben@example.com\n"

func loadedSession(t *testing.T, body string) *docmerge.Session {
	t.Helper()

	s := docmerge.NewSession()
	require.NoError(t, s.LoadTemplate("letter.docx", buildDocx(t, body)))
	require.NoError(t, s.LoadData([]byte(recipientsCSV), "recipients.csv"))
	return s
}

func TestSessionPipeline(t *testing.T) {
	t.Parallel()

	s := loadedSession(t, "Dear {Name}, your balance is {Amount} ({Amount_Words}).")

	mapping, err := s.AutoMap()
	require.NoError(t, err)
	require.Equal(t, map[string]string{
		"Name":         "Name",
		"Amount":       "Amount",
		"Amount_Words": "Amount_Words",
	}, mapping)

	docs, err := s.Generate(docmerge.AutoNamer())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.Equal(t, "document_0001.docx", docs[0].Filename)
	require.Equal(t, "document_0002.docx", docs[1].Filename)
	require.Equal(t, "Dear Asha, your balance is 500 (Five Hundred).", docText(t, docs[0].Content))
	require.Equal(t,
		"Dear Ben, your balance is 1250 (One Thousand Two Hundred Fifty).",
		docText(t, docs[1].Content))

	archive, err := s.Archive()
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	require.Equal(t, "document_0001.docx", zr.File[0].Name)

	d := &fakeDispatcher{}
	var progressCalls int
	result, err := s.Dispatch(context.Background(), d, "Email",
		"Statement for {Name}", "Hello {Name}, see attached.",
		func(current, total int, status string) { progressCalls++ })
	require.NoError(t, err)
	require.Equal(t, 2, result.Sent)
	require.Equal(t, 2, progressCalls)
	require.Same(t, result, s.LastResult())

	require.Len(t, d.jobs, 2)
	job := d.jobs[0]
	require.Equal(t, "asha@example.com", job.To)
	require.Equal(t, "Statement for Asha", job.Subject)
	require.Equal(t, "Hello Asha, see attached.", job.Body)
	require.Equal(t, "document_0001.docx", job.Attachment.Filename)
	require.Equal(t, docs[0].Content, job.Attachment.Data)
	require.Zero(t, job.RowIndex)
	require.Equal(t, 1, d.jobs[1].RowIndex)
}

func TestSessionGuards(t *testing.T) {
	t.Parallel()

	t.Run("operations require a template and data", func(t *testing.T) {
		t.Parallel()

		s := docmerge.NewSession()
		_, err := s.AutoMap()
		require.ErrorIs(t, err, docmerge.ErrNoTemplate)

		require.NoError(t, s.LoadTemplate("letter.docx", buildDocx(t, "{Name}")))
		_, err = s.AutoMap()
		require.ErrorIs(t, err, docmerge.ErrNoData)

		_, err = s.Generate(docmerge.AutoNamer())
		require.ErrorIs(t, err, docmerge.ErrNoData)
	})

	t.Run("rejects mappings with stale columns", func(t *testing.T) {
		t.Parallel()

		s := loadedSession(t, "{Name}")
		err := s.SetMapping(map[string]string{"Name": "FullName"})
		require.Error(t, err)
		require.Contains(t, err.Error(), "FullName")
	})

	t.Run("accepts mappings over data and virtual columns", func(t *testing.T) {
		t.Parallel()

		s := loadedSession(t, "{Name} {Due}")
		require.NoError(t, s.SetMapping(map[string]string{
			"Name": "Name",
			"Due":  "Amount_Words",
		}))
		require.Equal(t, "Amount_Words", s.Mapping()["Due"])
	})

	t.Run("dispatch rejects invalid recipient addresses", func(t *testing.T) {
		t.Parallel()

		s := docmerge.NewSession()
		require.NoError(t, s.LoadTemplate("letter.docx", buildDocx(t, "{Name}")))
		require.NoError(t, s.LoadData([]byte("Name,Email\nAsha,not-an-address\n"), "bad.csv"))

		_, err := s.Generate(docmerge.AutoNamer())
		require.NoError(t, err)

		_, err = s.Dispatch(context.Background(), &fakeDispatcher{}, "Email", "s", "b", nil)
		var re *docmerge.RowError
		require.ErrorAs(t, err, &re)
		require.Zero(t, re.Index)
		require.ErrorIs(t, re, docmerge.ErrInvalidEmail)
	})

	t.Run("sessions are uniquely identified", func(t *testing.T) {
		t.Parallel()

		a, b := docmerge.NewSession(), docmerge.NewSession()
		require.NotEmpty(t, a.ID())
		require.NotEqual(t, a.ID(), b.ID())
	})
}
