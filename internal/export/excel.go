package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// sheetWriter appends rows to sheets of one workbook.
type sheetWriter struct {
	file         *excelize.File
	currentSheet string
	currentRow   int
}

func newSheetWriter() *sheetWriter {
	return &sheetWriter{file: excelize.NewFile()}
}

// AddSheet adds a new sheet and makes it current.
func (w *sheetWriter) AddSheet(name string) error {
	// Excel limit is 31 characters
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}

	if w.currentSheet == "" {
		if err := w.file.SetSheetName("Sheet1", name); err != nil {
			return fmt.Errorf("rename sheet %s: %w", name, err)
		}
	} else if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}

	w.currentSheet = name
	w.currentRow = 1
	return nil
}

// WriteHeader writes bold column headers and freezes them.
func (w *sheetWriter) WriteHeader(columns []string) error {
	if w.currentSheet == "" {
		return fmt.Errorf("no active sheet")
	}

	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, w.currentRow)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(w.currentSheet, cell, col); err != nil {
			return err
		}
	}

	style, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, w.currentRow)
		endCell, _ := excelize.CoordinatesToCellName(len(columns), w.currentRow)
		_ = w.file.SetCellStyle(w.currentSheet, startCell, endCell, style)
	}
	_ = w.file.SetPanes(w.currentSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      w.currentRow,
		TopLeftCell: fmt.Sprintf("A%d", w.currentRow+1),
		ActivePane:  "bottomLeft",
	})

	w.currentRow++
	return nil
}

// WriteRow writes a data row to the current sheet.
func (w *sheetWriter) WriteRow(row []any) error {
	if w.currentSheet == "" {
		return fmt.Errorf("no active sheet")
	}

	for i, val := range row {
		cell, err := excelize.CoordinatesToCellName(i+1, w.currentRow)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(w.currentSheet, cell, val); err != nil {
			return err
		}
	}

	w.currentRow++
	return nil
}

// SetWidths sets column widths starting at column A.
func (w *sheetWriter) SetWidths(widths ...float64) {
	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return
		}
		_ = w.file.SetColWidth(w.currentSheet, col, col, width)
	}
}

func (w *sheetWriter) Save(wr io.Writer) error {
	return w.file.Write(wr)
}

func (w *sheetWriter) Close() error {
	return w.file.Close()
}
