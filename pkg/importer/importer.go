package importer

import (
	"context"

	"p9e.in/gemstock/models"
)

// RowError reports why one sheet line was not imported.
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// Result summarises an import or a preview.
type Result[T any] struct {
	Total    int        `json:"total"`
	Imported int        `json:"imported"`
	Failed   int        `json:"failed"`
	Errors   []RowError `json:"errors"`
	Rows     []T        `json:"rows"`
}

// Normalizer maps one sheet row to a record.
type Normalizer[T any] func(r Row, today models.Date) (T, error)

// Run normalizes rows in order and hands each record to save. A row that
// fails either step is counted and recorded; later rows still run. With a
// nil save nothing is stored and Imported counts the rows that would be.
func Run[T any](ctx context.Context, rows []Row, today models.Date, normalize Normalizer[T], save func(context.Context, *T) error) Result[T] {
	res := Result[T]{
		Total:  len(rows),
		Errors: []RowError{},
		Rows:   make([]T, 0, len(rows)),
	}
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			res.Failed++
			res.Errors = append(res.Errors, RowError{Row: row.Line, Error: err.Error()})
			continue
		}
		rec, err := normalize(row, today)
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, RowError{Row: row.Line, Error: err.Error()})
			continue
		}
		if save != nil {
			if err := save(ctx, &rec); err != nil {
				res.Failed++
				res.Errors = append(res.Errors, RowError{Row: row.Line, Error: err.Error()})
				continue
			}
		}
		res.Imported++
		res.Rows = append(res.Rows, rec)
	}
	return res
}
