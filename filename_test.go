package docmerge_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docmerge/docmerge"
)

func TestAutoNamer(t *testing.T) {
	t.Parallel()

	namer := docmerge.AutoNamer()
	require.Equal(t, "document_0001.docx", namer.Derive(0, nil))
	require.Equal(t, "document_0042.docx", namer.Derive(41, nil))
}

func TestColumnNamer(t *testing.T) {
	t.Parallel()

	t.Run("uses the column value as stem", func(t *testing.T) {
		t.Parallel()

		namer := docmerge.ColumnNamer("Name")
		got := namer.Derive(0, docmerge.RowData{"Name": "Asha Patel"})
		require.Equal(t, "Asha Patel.docx", got)
	})

	t.Run("sanitizes unsafe characters", func(t *testing.T) {
		t.Parallel()

		namer := docmerge.ColumnNamer("Ref")
		got := namer.Derive(0, docmerge.RowData{"Ref": `Acme/Corp:Invoice`})
		require.Equal(t, "Acme_Corp_Invoice.docx", got)
	})

	t.Run("empty value falls back to sequential name", func(t *testing.T) {
		t.Parallel()

		namer := docmerge.ColumnNamer("Name")
		require.Equal(t, "document_0003.docx", namer.Derive(2, docmerge.RowData{"Name": "  "}))
		require.Equal(t, "document_0003.docx", namer.Derive(2, docmerge.RowData{}))
	})
}

func TestPatternNamer(t *testing.T) {
	t.Parallel()

	t.Run("joins column and literal fragments in order", func(t *testing.T) {
		t.Parallel()

		namer := docmerge.PatternNamer(
			docmerge.ColumnPart("Name"),
			docmerge.LiteralPart("_"),
			docmerge.ColumnPart("ID"),
		)
		got := namer.Derive(0, docmerge.RowData{"Name": "Asha", "ID": "007"})
		require.Equal(t, "Asha_007.docx", got)
	})

	t.Run("missing columns resolve to empty", func(t *testing.T) {
		t.Parallel()

		namer := docmerge.PatternNamer(
			docmerge.ColumnPart("Name"),
			docmerge.LiteralPart("-"),
			docmerge.ColumnPart("Missing"),
		)
		got := namer.Derive(0, docmerge.RowData{"Name": "Asha"})
		require.Equal(t, "Asha-.docx", got)
	})
}

func TestSanitizeCoversAllReservedCharacters(t *testing.T) {
	t.Parallel()

	namer := docmerge.ColumnNamer("X")
	got := namer.Derive(0, docmerge.RowData{"X": `a<b>c:d"e/f\g|h?i*j`})
	require.Equal(t, "a_b_c_d_e_f_g_h_i_j.docx", got)
}
