package handlers

import (
	"bytes"
	"reflect"
	"time"

	"p9e.in/gemstock/pkg/reporting"
)

// printDocument renders one record: its fields as the heading block and its
// items, if any, as the table.
func printDocument(title string, record any, now time.Time) ([]byte, error) {
	one := reflect.Append(reflect.MakeSlice(reflect.SliceOf(reflect.TypeOf(record)), 0, 1), reflect.ValueOf(record))
	fields := reporting.RecordsTable(title, one.Interface())
	doc := &reporting.Table{Title: title}

	if len(fields.Rows) == 1 {
		for _, c := range fields.Columns {
			switch c.Key {
			case "id", "createdAt", "updatedAt":
				continue
			}
			doc.Summary = append(doc.Summary, [2]string{c.Label, reporting.CellString(fields.Rows[0][c.Key])})
		}
	}
	if items := itemsOf(record); items != nil {
		t := reporting.RecordsTable("Items", items)
		for _, c := range t.Columns {
			switch c.Key {
			case "id", "memoId", "issueId":
				continue
			}
			doc.Columns = append(doc.Columns, c)
		}
		doc.Rows = t.Rows
	}

	var buf bytes.Buffer
	if err := reporting.WriteHTML(&buf, doc, now); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
