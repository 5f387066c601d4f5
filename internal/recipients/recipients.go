// Package recipients reads recipient phone numbers from uploaded spreadsheets.
package recipients

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// MaxRecipients bounds a single upload.
const MaxRecipients = 1000

var (
	ErrUnsupportedFormat = errors.New("recipients: unsupported file format")
	ErrNoRecipients      = errors.New("recipients: no recipients found")
	ErrTooManyRecipients = fmt.Errorf("recipients: more than %d recipients", MaxRecipients)
)

// Parse reads the first column of a CSV or XLSX file, chosen by filename extension.
func Parse(filename string, r io.Reader) ([]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return ParseCSV(r)
	case ".xlsx", ".xlsm":
		return ParseXLSX(r)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// ParseCSV reads the first column of a CSV stream.
func ParseCSV(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	var column []string
	for {
		record, errRead := reader.Read()
		if errors.Is(errRead, io.EOF) {
			break
		}
		if errRead != nil {
			return nil, fmt.Errorf("recipients: read csv: %w", errRead)
		}
		if len(record) == 0 {
			continue
		}
		column = append(column, record[0])
	}
	return finish(column)
}

// ParseXLSX reads the first column of the first sheet of a workbook.
func ParseXLSX(r io.Reader) ([]string, error) {
	book, errOpen := excelize.OpenReader(r)
	if errOpen != nil {
		return nil, fmt.Errorf("recipients: open xlsx: %w", errOpen)
	}
	defer func() { _ = book.Close() }()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoRecipients
	}
	rows, errRows := book.GetRows(sheets[0])
	if errRows != nil {
		return nil, fmt.Errorf("recipients: read xlsx: %w", errRows)
	}
	column := make([]string, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		column = append(column, row[0])
	}
	return finish(column)
}

// finish trims values, drops blanks and a leading header row.
func finish(column []string) ([]string, error) {
	out := make([]string, 0, len(column))
	first := true
	for _, value := range column {
		value = strings.TrimSpace(strings.TrimPrefix(value, "\ufeff"))
		if value == "" {
			continue
		}
		if first {
			first = false
			if isHeader(value) {
				continue
			}
		}
		out = append(out, value)
	}
	if len(out) == 0 {
		return nil, ErrNoRecipients
	}
	if len(out) > MaxRecipients {
		return nil, ErrTooManyRecipients
	}
	return out, nil
}

// isHeader reports whether value contains no digits, e.g. "Phone".
func isHeader(value string) bool {
	return !strings.ContainsAny(value, "0123456789")
}
