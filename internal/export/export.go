// Package export renders tables of students, courses and audit entries as
// CSV or XLSX files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"roster/internal/fileutil"
)

// Table is a titled grid of string cells.
type Table struct {
	Title  string
	Header []string
	Rows   [][]string
}

// Format selects the output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatForPath picks the format from the file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export extension %q (use .csv or .xlsx)", filepath.Ext(path))
	}
}

// WriteCSV writes the header and rows of table to w.
func WriteCSV(w io.Writer, table Table) error {
	cw := csv.NewWriter(w)
	if len(table.Header) > 0 {
		if err := cw.Write(table.Header); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
	}
	if err := cw.WriteAll(table.Rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

const (
	minColWidth    = 12.0
	maxColWidth    = 40.0
	widthSampleRow = 50
)

// NewWorkbook builds a workbook with one sheet per table: bold header,
// autofilter on the header row and widths sized from the first rows.
func NewWorkbook(tables ...Table) (*excelize.File, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("workbook needs at least one table")
	}
	f := excelize.NewFile()
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("header style: %w", err)
	}

	for i, table := range tables {
		name := sheetName(table.Title, i)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				_ = f.Close()
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("new sheet: %w", err)
		}
		if err := fillSheet(f, name, table, bold); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return f, nil
}

func fillSheet(f *excelize.File, name string, table Table, headerStyle int) error {
	for r, row := range append([][]string{table.Header}, table.Rows...) {
		for c, val := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellStr(name, cell, val); err != nil {
				return fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}
	if len(table.Header) == 0 {
		return nil
	}

	end, err := excelize.CoordinatesToCellName(len(table.Header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(name, "A1", end, headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	if err := f.AutoFilter(name, "A1:"+end, nil); err != nil {
		return fmt.Errorf("autofilter: %w", err)
	}

	for c := range table.Header {
		width := len(table.Header[c])
		for r := 0; r < min(widthSampleRow, len(table.Rows)); r++ {
			if c < len(table.Rows[r]) && len(table.Rows[r][c]) > width {
				width = len(table.Rows[r][c])
			}
		}
		col, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		w := min(max(float64(width)*0.9, minColWidth), maxColWidth)
		if err := f.SetColWidth(name, col, col, w); err != nil {
			return fmt.Errorf("column width: %w", err)
		}
	}
	return nil
}

// sheetName trims a title to Excel's 31 character limit and strips the
// characters Excel rejects.
func sheetName(title string, index int) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return -1
		}
		return r
	}, strings.TrimSpace(title))
	if name == "" {
		name = fmt.Sprintf("Sheet%d", index+1)
	}
	if runes := []rune(name); len(runes) > 31 {
		name = string(runes[:31])
	}
	return name
}

// WriteXLSX writes tables as a workbook to w.
func WriteXLSX(w io.Writer, tables ...Table) error {
	f, err := NewWorkbook(tables...)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteFile writes table to path atomically, choosing the format from the
// extension.
func WriteFile(path string, table Table) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}
	return fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		if format == FormatXLSX {
			return WriteXLSX(w, table)
		}
		return WriteCSV(w, table)
	})
}

// WriteWorkbookFile writes every table as its own sheet to an .xlsx file.
func WriteWorkbookFile(path string, tables ...Table) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}
	if format != FormatXLSX {
		return fmt.Errorf("multi-sheet export requires .xlsx, got %q", filepath.Ext(path))
	}
	return fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return WriteXLSX(w, tables...)
	})
}
