package docmerge_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docmerge/docmerge"
)

func TestValidateAddress(t *testing.T) {
	t.Parallel()

	valid := []string{
		"user@example.com",
		"first.last+tag@sub.example.co",
		"UPPER_case%ok@example.io",
	}
	for _, addr := range valid {
		require.True(t, docmerge.ValidateAddress(addr), addr)
	}

	invalid := []string{
		"",
		"plainaddress",
		"@example.com",
		"user@",
		"user@example",
		"user @example.com",
		" user@example.com",
		"user@example.com ",
	}
	for _, addr := range invalid {
		require.False(t, docmerge.ValidateAddress(addr), addr)
	}
}

func TestCheckAddress(t *testing.T) {
	t.Parallel()

	require.NoError(t, docmerge.CheckAddress("user@example.com"))

	err := docmerge.CheckAddress("nope")
	require.Error(t, err)
	require.Contains(t, err.Error(), "nope")
}

func TestRenderText(t *testing.T) {
	t.Parallel()

	t.Run("substitutes known keys", func(t *testing.T) {
		t.Parallel()

		got := docmerge.RenderText("Dear {Name}, your total is {Total}.",
			docmerge.RowData{"Name": "Asha", "Total": "500"})
		require.Equal(t, "Dear Asha, your total is 500.", got)
	})

	t.Run("leaves unmatched tokens visible", func(t *testing.T) {
		t.Parallel()

		got := docmerge.RenderText("Dear {Nmae},", docmerge.RowData{"Name": "Asha"})
		require.Equal(t, "Dear {Nmae},", got)
	})

	t.Run("matches keys case-sensitively", func(t *testing.T) {
		t.Parallel()

		got := docmerge.RenderText("{name}", docmerge.RowData{"Name": "Asha"})
		require.Equal(t, "{name}", got)
	})

	t.Run("does not trim token whitespace", func(t *testing.T) {
		t.Parallel()

		got := docmerge.RenderText("{ Name }", docmerge.RowData{"Name": "Asha"})
		require.Equal(t, "{ Name }", got)
	})

	t.Run("passes token-free text through", func(t *testing.T) {
		t.Parallel()

		got := docmerge.RenderText("no tokens here", docmerge.RowData{"Name": "Asha"})
		require.Equal(t, "no tokens here", got)
	})
}

func TestTemplatePlaceholders(t *testing.T) {
	t.Parallel()

	got := docmerge.TemplatePlaceholders("Dear { Name }, {Total} due. Regards, {Name}")
	require.Equal(t, []string{"Name", "Total"}, got)

	require.Nil(t, docmerge.TemplatePlaceholders("nothing to see"))
}
