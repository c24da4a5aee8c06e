// Package importer turns uploaded ledger spreadsheets into records.
package importer

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

var ErrUnsupportedFile = errors.New("unsupported file type, expected .csv, .xlsx or .xls")

// Row is one data line of an uploaded sheet. Keys are the header names
// folded by Key.
type Row struct {
	Line   int
	Values map[string]string
}

// Get returns the first non-empty value among the candidate headers.
func (r Row) Get(names ...string) string {
	for _, n := range names {
		if v, ok := r.Values[Key(n)]; ok && v != "" {
			return v
		}
	}
	return ""
}

// Key folds a header so that "Pay Mode", "pay_mode" and "payMode" collide.
func Key(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(h)) {
		switch r {
		case ' ', '_', '-', '.', '\t':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Parse reads a .csv, .xlsx or .xls upload. encoding is an optional WHATWG
// label applied to CSV input ("" means UTF-8).
func Parse(filename string, r io.Reader, encoding string) ([]Row, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return ParseCSV(r, encoding)
	case ".xlsx", ".xls":
		return ParseWorkbook(r)
	}
	return nil, ErrUnsupportedFile
}

// SkipBOM drops a leading UTF-8 byte order mark.
func SkipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if peeked, err := br.Peek(3); err == nil && peeked[0] == 0xEF && peeked[1] == 0xBB && peeked[2] == 0xBF {
		br.Discard(3)
	}
	return br
}

// ParseCSV reads a header line followed by data lines.
func ParseCSV(r io.Reader, encoding string) ([]Row, error) {
	if encoding != "" {
		enc, err := htmlindex.Get(encoding)
		if err != nil {
			return nil, fmt.Errorf("unknown encoding %q: %w", encoding, err)
		}
		r = transform.NewReader(r, enc.NewDecoder())
	}
	reader := csv.NewReader(SkipBOM(r))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var rows []Row
	line := 1
	for {
		line++
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rows, fmt.Errorf("line %d: %w", line, err)
		}
		if row, ok := makeRow(line, header, rec); ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// ParseWorkbook reads the first sheet of a workbook; its first row is the header.
func ParseWorkbook(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	all, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(all) == 0 {
		return nil, errors.New("file is empty")
	}

	var rows []Row
	for i, rec := range all[1:] {
		if row, ok := makeRow(i+2, all[0], rec); ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// makeRow pairs a record with the header; blank records are dropped.
func makeRow(line int, header, rec []string) (Row, bool) {
	row := Row{Line: line, Values: make(map[string]string, len(header))}
	blank := true
	for i, h := range header {
		k := Key(h)
		if k == "" || i >= len(rec) {
			continue
		}
		v := strings.TrimSpace(rec[i])
		if v != "" {
			blank = false
		}
		if _, dup := row.Values[k]; !dup || row.Values[k] == "" {
			row.Values[k] = v
		}
	}
	return row, !blank
}
