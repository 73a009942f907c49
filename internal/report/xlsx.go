package report

import (
	"io"

	"github.com/xuri/excelize/v2"
)

// WriteXLSX renders rows as a single-sheet spreadsheet.
func WriteXLSX(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, c := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, c); err != nil {
			return err
		}
	}

	for idx, r := range rows {
		values := []any{
			r.ID,
			r.Date.Format("2006-01-02"),
			r.Shift,
			r.Employee,
			r.Equipment,
			r.Product,
			r.Planned,
			r.Actual,
			r.Delta,
			r.Status,
		}
		for j, v := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, idx+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	_, err := f.WriteTo(w)
	return err
}
