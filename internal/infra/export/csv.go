package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

type CSVWriter struct{}

func (CSVWriter) Extension() string   { return "csv" }
func (CSVWriter) ContentType() string { return "text/csv; charset=utf-8" }

func (CSVWriter) Write(w io.Writer, _ string, columns []string, rows [][]any) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(columns))
	for _, row := range rows {
		for i := range record {
			record[i] = ""
			if i < len(row) {
				record[i] = cellString(row[i])
			}
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func cellString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case int:
		return strconv.Itoa(c)
	case float64:
		return strconv.FormatFloat(c, 'f', 2, 64)
	case bool:
		return strconv.FormatBool(c)
	case time.Time:
		return c.Format("2006-01-02")
	}
	return fmt.Sprint(v)
}
