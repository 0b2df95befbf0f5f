// Package output renders query results and report tables for the CLI.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/impo12-ty0076/sql-agent-sub002/pkg/core"
)

// RenderResultSet writes rs to w in the requested format. Unknown formats
// fall back to the table rendering.
func RenderResultSet(w io.Writer, rs *core.ResultSet, format string) error {
	switch format {
	case "json":
		return renderJSON(w, rs)
	case "csv":
		return renderCSV(w, rs)
	default:
		return renderTable(w, rs)
	}
}

func renderTable(w io.Writer, rs *core.ResultSet) error {
	if rs.RowCount() == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(rs.Columns))
	for i, col := range rs.Columns {
		headerRow[i] = col
	}
	t.AppendHeader(headerRow)

	for _, values := range rs.Rows {
		row := make(table.Row, len(values))
		for i, v := range values {
			row[i] = formatValue(v)
		}
		t.AppendRow(row)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", rs.RowCount())
	return nil
}

func renderJSON(w io.Writer, rs *core.ResultSet) error {
	results := make([]map[string]any, 0, rs.RowCount())
	for _, values := range rs.Rows {
		row := make(map[string]any, len(rs.Columns))
		for i, col := range rs.Columns {
			row[col] = values[i]
		}
		results = append(results, row)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func renderCSV(w io.Writer, rs *core.ResultSet) error {
	_, _ = fmt.Fprintln(w, strings.Join(rs.Columns, ","))
	for _, values := range rs.Rows {
		fields := make([]string, len(values))
		for i, v := range values {
			fields[i] = escapeCSV(formatValue(v))
		}
		_, _ = fmt.Fprintln(w, strings.Join(fields, ","))
	}
	return nil
}

// RenderWarnings prints conversion and compatibility warnings to w.
func RenderWarnings(w io.Writer, warnings []string) {
	for _, warning := range warnings {
		_, _ = fmt.Fprintf(w, "warning: %s\n", warning)
	}
}

// RenderSchema writes a schema description as one table per backend table.
func RenderSchema(w io.Writer, desc *core.SchemaDescription, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(desc)
	}

	if len(desc.Tables) == 0 {
		_, _ = fmt.Fprintln(w, "(no tables)")
		return nil
	}

	for _, tbl := range desc.Tables {
		name := tbl.Name
		if tbl.Schema != "" {
			name = tbl.Schema + "." + tbl.Name
		}
		_, _ = fmt.Fprintf(w, "Table: %s\n", name)

		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Column", "Type", "Nullable"})
		for _, col := range tbl.Columns {
			nullable := "NO"
			if col.Nullable {
				nullable = "YES"
			}
			t.AppendRow(table.Row{col.Name, col.Type, nullable})
		}
		t.Render()
		_, _ = fmt.Fprintln(w)
	}
	return nil
}

func formatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
