// Package sheets writes and reads tabular data as CSV or XLSX files.
package sheets

import (
	"encoding/csv"
	"io"
	"path"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
)

var ErrUnsupportedFormat = errors.New("unsupported format: use csv or xlsx")

// ParseFormat parses a format name. An empty name stands for CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", CSV:
		return CSV, nil
	case XLSX:
		return XLSX, nil
	}
	return "", ErrUnsupportedFormat
}

// FormatOf returns the format of a file from its extension.
func FormatOf(filename string) (Format, error) {
	ext := strings.TrimPrefix(path.Ext(filename), ".")
	if ext == "" {
		return "", ErrUnsupportedFormat
	}
	return ParseFormat(ext)
}

func (f Format) ContentType() string {
	if f == XLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Filename appends the format extension to name.
func (f Format) Filename(name string) string {
	return name + "." + string(f)
}

// Write writes the header and rows to w. sheet names the XLSX worksheet.
func Write(w io.Writer, f Format, sheet string, header []string, rows [][]string) error {
	switch f {
	case CSV:
		return writeCSV(w, header, rows)
	case XLSX:
		return writeXLSX(w, sheet, header, rows)
	}
	return ErrUnsupportedFormat
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "writing csv header")
	}
	if err := cw.WriteAll(rows); err != nil {
		return errors.Wrap(err, "writing csv rows")
	}
	return nil
}

func writeXLSX(w io.Writer, sheet string, header []string, rows [][]string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheet = "Sheet1"
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return errors.Wrap(err, "naming sheet")
	}

	for i, row := range append([][]string{header}, rows...) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return errors.Wrap(err, "locating row")
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err = f.SetSheetRow(sheet, cell, &values); err != nil {
			return errors.Wrap(err, "writing xlsx row")
		}
	}

	if len(header) > 0 {
		style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return errors.Wrap(err, "creating header style")
		}
		last, _ := excelize.CoordinatesToCellName(len(header), 1)
		if err = f.SetCellStyle(sheet, "A1", last, style); err != nil {
			return errors.Wrap(err, "styling header")
		}
	}

	_, err := f.WriteTo(w)
	return errors.Wrap(err, "writing xlsx")
}

// Read reads a file whose first row is a header. Each returned row maps the
// lower-cased header names to the trimmed cell values.
func Read(r io.Reader, f Format) ([]map[string]string, error) {
	var records [][]string
	switch f {
	case CSV:
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		cr.TrimLeadingSpace = true
		var err error
		if records, err = cr.ReadAll(); err != nil {
			return nil, errors.Wrap(err, "reading csv")
		}
	case XLSX:
		xf, err := excelize.OpenReader(r)
		if err != nil {
			return nil, errors.Wrap(err, "opening xlsx")
		}
		defer func() { _ = xf.Close() }()
		sheets := xf.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil
		}
		if records, err = xf.GetRows(sheets[0]); err != nil {
			return nil, errors.Wrap(err, "reading xlsx")
		}
	default:
		return nil, ErrUnsupportedFormat
	}
	return toMaps(records), nil
}

func toMaps(records [][]string) []map[string]string {
	if len(records) == 0 {
		return nil
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")))
	}

	rows := make([]map[string]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(map[string]string, len(header))
		empty := true
		for i, name := range header {
			if i < len(rec) {
				row[name] = strings.TrimSpace(rec[i])
				empty = empty && row[name] == ""
			}
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	return rows
}
