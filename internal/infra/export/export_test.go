package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var (
	testColumns = []string{"Client Name", "Amount", "Left Days", "Coach"}
	testRows    = [][]any{
		{"Priya Sharma", 1500.5, 12, "Not Assigned"},
		{"Ravi, Jr.", 0.0, -3, "Anil Kumar"},
	}
)

func TestCSVWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSVWriter{}.Write(&buf, "Balance Report", testColumns, testRows))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, testColumns, records[0])
	assert.Equal(t, []string{"Priya Sharma", "1500.50", "12", "Not Assigned"}, records[1])
	// commas survive quoting
	assert.Equal(t, "Ravi, Jr.", records[2][0])
	assert.Equal(t, "-3", records[2][2])
}

func TestCSVWriterPadsShortRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSVWriter{}.Write(&buf, "", []string{"A", "B"}, [][]any{{"only"}}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"only", ""}, records[1])
}

func TestXLSXWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, XLSXWriter{}.Write(&buf, "Balance Report", testColumns, testRows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Balance Report"}, f.GetSheetList())

	header, err := f.GetCellValue("Balance Report", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Client Name", header)

	name, err := f.GetCellValue("Balance Report", "A3")
	require.NoError(t, err)
	assert.Equal(t, "Ravi, Jr.", name)

	days, err := f.GetCellValue("Balance Report", "C2")
	require.NoError(t, err)
	assert.Equal(t, "12", days)
}

func TestWritersDescribeFormat(t *testing.T) {
	assert.Equal(t, "csv", CSVWriter{}.Extension())
	assert.Equal(t, "xlsx", XLSXWriter{}.Extension())
	assert.Contains(t, XLSXWriter{}.ContentType(), "spreadsheetml")
}
