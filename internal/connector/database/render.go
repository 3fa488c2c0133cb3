package database

import (
	"encoding/csv"
	"fmt"
	"strings"
	"time"
)

// Render formats a table schema followed by its sample rows as CSV
func Render(info *TableInfo, sample *Sample) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Table: %s\n", info.Name)
	if info.RowCount != nil {
		fmt.Fprintf(&b, "Rows: %d\n", *info.RowCount)
	}

	b.WriteString("\nColumns:\n")
	for _, col := range info.Columns {
		fmt.Fprintf(&b, "- %s %s", col.Name, col.DataType)
		if col.PrimaryKey {
			b.WriteString(" PRIMARY KEY")
		}
		if !col.Nullable {
			b.WriteString(" NOT NULL")
		}
		b.WriteByte('\n')
	}

	if sample == nil || len(sample.Columns) == 0 {
		return b.String()
	}

	fmt.Fprintf(&b, "\nSample rows (%d):\n", len(sample.Rows))
	w := csv.NewWriter(&b)
	w.Write(sample.Columns)
	for _, row := range sample.Rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = formatValue(v)
		}
		w.Write(record)
	}
	w.Flush()

	return b.String()
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
