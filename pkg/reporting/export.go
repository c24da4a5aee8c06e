package reporting

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

// Column describes one exported column.
type Column struct {
	Key   string
	Label string
}

// Table is the tabular form of a record listing or a report, shared by the
// CSV, XLSX and HTML renderers.
type Table struct {
	Title   string
	Columns []Column
	Rows    []map[string]any
	Summary [][2]string
}

// WriteCSV writes headers, rows and the optional summary block.
func WriteCSV(w io.Writer, t *Table) error {
	writer := csv.NewWriter(w)

	headers := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		headers = append(headers, c.Label)
	}
	if err := writer.Write(headers); err != nil {
		return err
	}

	for _, row := range t.Rows {
		record := make([]string, 0, len(t.Columns))
		for _, c := range t.Columns {
			record = append(record, CellString(row[c.Key]))
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	if len(t.Summary) > 0 {
		writer.Write([]string{})
		writer.Write([]string{"Summary"})
		for _, kv := range t.Summary {
			writer.Write([]string{kv[0], kv[1]})
		}
	}

	writer.Flush()
	return writer.Error()
}

// Workbook renders t into a single-sheet XLSX file: title, timestamp,
// header row 4, data from row 5, summary below.
func Workbook(t *Table, now time.Time) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := "Report"

	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	f.SetCellValue(sheet, "A1", t.Title)
	f.SetCellStyle(sheet, "A1", "A1", titleStyle)
	f.SetRowHeight(sheet, 1, 30)
	f.SetCellValue(sheet, "A2", fmt.Sprintf("Generated: %s", now.Format("2006-01-02 15:04:05")))

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	for i, c := range t.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 4)
		f.SetCellValue(sheet, cell, c.Label)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, 18)
	}

	dataStyle, _ := f.NewStyle(&excelize.Style{
		Border: []excelize.Border{
			{Type: "left", Color: "CCCCCC", Style: 1},
			{Type: "right", Color: "CCCCCC", Style: 1},
			{Type: "top", Color: "CCCCCC", Style: 1},
			{Type: "bottom", Color: "CCCCCC", Style: 1},
		},
	})
	for r, row := range t.Rows {
		for i, c := range t.Columns {
			cell, _ := excelize.CoordinatesToCellName(i+1, r+5)
			f.SetCellValue(sheet, cell, cellValue(row[c.Key]))
			f.SetCellStyle(sheet, cell, cell, dataStyle)
		}
	}

	if len(t.Summary) > 0 {
		at := len(t.Rows) + 7
		summaryStyle, _ := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true},
			Fill: excelize.Fill{Type: "pattern", Color: []string{"#E7E6E6"}, Pattern: 1},
		})
		cell, _ := excelize.CoordinatesToCellName(1, at)
		f.SetCellValue(sheet, cell, "Summary")
		f.SetCellStyle(sheet, cell, cell, summaryStyle)
		for _, kv := range t.Summary {
			at++
			k, _ := excelize.CoordinatesToCellName(1, at)
			v, _ := excelize.CoordinatesToCellName(2, at)
			f.SetCellValue(sheet, k, kv[0])
			f.SetCellValue(sheet, v, kv[1])
		}
	}

	f.DeleteSheet("Sheet1")
	return f, nil
}

// WorkbookBytes is Workbook serialized to a buffer.
func WorkbookBytes(t *Table, now time.Time) ([]byte, error) {
	f, err := Workbook(t, now)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var htmlTable = template.Must(template.New("table").Funcs(template.FuncMap{
	"cell": func(row map[string]any, key string) string { return CellString(row[key]) },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body{font-family:Arial,sans-serif;margin:24px}
table{border-collapse:collapse;width:100%}
th,td{border:1px solid #ccc;padding:6px;text-align:left}
th{background:#4472C4;color:#fff}
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p>Generated: {{.Generated}}</p>
{{- if .Summary}}
<table class="summary">
{{- range .Summary}}
<tr><th>{{index . 0}}</th><td>{{index . 1}}</td></tr>
{{- end}}
</table>
<br>
{{- end}}
{{- if .Columns}}
<table>
<tr>{{range .Columns}}<th>{{.Label}}</th>{{end}}</tr>
{{- range $row := .Rows}}
<tr>{{range $.Columns}}<td>{{cell $row .Key}}</td>{{end}}</tr>
{{- end}}
</table>
{{- end}}
</body>
</html>
`))

// WriteHTML renders t as a printable HTML document.
func WriteHTML(w io.Writer, t *Table, now time.Time) error {
	return htmlTable.Execute(w, struct {
		*Table
		Generated string
	}{t, now.Format("2006-01-02 15:04")})
}

// Render dispatches on format ("csv", "xlsx" or "html") and returns the
// body with its content type and file extension.
func Render(format string, t *Table, now time.Time) (body []byte, contentType, ext string, err error) {
	switch format {
	case "", "csv":
		var buf bytes.Buffer
		if err := WriteCSV(&buf, t); err != nil {
			return nil, "", "", err
		}
		return buf.Bytes(), "text/csv", "csv", nil
	case "xlsx":
		b, err := WorkbookBytes(t, now)
		if err != nil {
			return nil, "", "", err
		}
		return b, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx", nil
	case "html":
		var buf bytes.Buffer
		if err := WriteHTML(&buf, t, now); err != nil {
			return nil, "", "", err
		}
		return buf.Bytes(), "text/html; charset=utf-8", "html", nil
	}
	return nil, "", "", fmt.Errorf("unsupported export format %q", format)
}

// SanitizeFilename replaces characters that are unsafe in a download name.
func SanitizeFilename(name string) string {
	out := []rune(name)
	for i, r := range out {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			out[i] = '_'
		}
	}
	return string(out)
}

// CellString formats a table value for text output.
func CellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format("2006-01-02")
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

// cellValue keeps numbers numeric in the workbook.
func cellValue(v any) any {
	switch x := v.(type) {
	case float64, float32, int, int64, uint, bool, string:
		return x
	case interface{ Float() float64 }:
		return x.Float()
	}
	return CellString(v)
}
