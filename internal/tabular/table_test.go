package tabular

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadTableCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.csv")
	content := "\ufeffPartner,Year,Value\nMexico,2020,\"1,000\"\nCanada,2021\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	table, err := ReadTable(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Partner", "Year", "Value"}, table.Header)
	require.Len(t, table.Rows, 2)

	idx, ok := table.Index("partner")
	require.True(t, ok)
	assert.Equal(t, "Mexico", table.Cell(table.Rows[0], idx))

	// Ragged row: missing cells read as empty.
	valueIdx, ok := table.Index("Value")
	require.True(t, ok)
	assert.Equal(t, "", table.Cell(table.Rows[1], valueIdx))
}

func TestReadTableXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.xlsx")

	book := excelize.NewFile()
	sheet := book.GetSheetName(0)
	require.NoError(t, book.SetSheetRow(sheet, "A1", &[]any{"Country", "2020"}))
	require.NoError(t, book.SetSheetRow(sheet, "A2", &[]any{"Mexico", "1000"}))
	require.NoError(t, book.SaveAs(path))
	require.NoError(t, book.Close())

	table, err := ReadTable(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Country", "2020"}, table.Header)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, []string{"Mexico", "1000"}, table.Rows[0])
}

func TestReadTableMissingFile(t *testing.T) {
	_, err := ReadTable(filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
}

func TestReadTableEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := ReadTable(path)
	require.ErrorIs(t, err, ErrEmptyTable)
}

func TestWriteCSVDeterministic(t *testing.T) {
	dir := t.TempDir()
	header := []string{"country", "year", "gdp"}
	rows := [][]string{
		{"BRA", "2019", "1800"},
		{"MEX", "2020", ""},
	}

	first := filepath.Join(dir, "one.csv")
	second := filepath.Join(dir, "two.csv")
	require.NoError(t, WriteCSV(first, header, rows))
	require.NoError(t, WriteCSV(second, header, rows))

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, a, b, "identical rows must produce identical bytes")
}

func TestWriteCSVReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "table.csv")
	require.NoError(t, WriteCSV(path, []string{"a"}, [][]string{{"1"}, {"2"}}))
	require.NoError(t, WriteCSV(path, []string{"a"}, [][]string{{"3"}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\n3\n", string(data))
}
