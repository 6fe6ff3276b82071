package feed

import (
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// xlsxFeed streams rows from the first sheet of an Excel workbook using the
// excelize row iterator, so large uploads are never fully materialized.
type xlsxFeed struct {
	file    *excelize.File
	rows    *excelize.Rows
	headers []string
}

// NewXLSXFeed opens the workbook and consumes the header row. The first sheet
// is the data sheet, matching the files the marketplaces hand out.
func NewXLSXFeed(r io.Reader) (Feed, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &UnreadableError{Reason: "opening xlsx workbook", Err: err}
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		f.Close()
		return nil, &UnreadableError{Reason: "workbook has no sheets"}
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		f.Close()
		return nil, &UnreadableError{Reason: "iterating sheet rows", Err: err}
	}

	if !rows.Next() {
		rows.Close()
		f.Close()
		return nil, &UnreadableError{Reason: "workbook has no header row"}
	}
	headers, err := rows.Columns()
	if err != nil {
		rows.Close()
		f.Close()
		return nil, &UnreadableError{Reason: "reading header row", Err: err}
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	return &xlsxFeed{file: f, rows: rows, headers: headers}, nil
}

func (f *xlsxFeed) Next() (Row, error) {
	if !f.rows.Next() {
		err := f.rows.Error()
		f.rows.Close()
		f.file.Close()
		if err != nil {
			return nil, &UnreadableError{Reason: "iterating sheet rows", Err: err}
		}
		return nil, io.EOF
	}
	cells, err := f.rows.Columns()
	if err != nil {
		return nil, &UnreadableError{Reason: "reading row cells", Err: err}
	}
	row := make(Row, len(f.headers))
	for i, h := range f.headers {
		if i < len(cells) {
			row[h] = cells[i]
		}
	}
	return row, nil
}
