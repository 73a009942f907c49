package report

import (
	"encoding/csv"
	"io"
	"strconv"
)

// WriteCSV renders rows as UTF-8 CSV with a BOM so spreadsheet
// applications pick up the encoding.
func WriteCSV(w io.Writer, rows []Row) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			strconv.FormatInt(r.ID, 10),
			r.Date.Format("2006-01-02"),
			r.Shift,
			r.Employee,
			r.Equipment,
			r.Product,
			formatQty(r.Planned),
			formatQty(r.Actual),
			formatQty(r.Delta),
			r.Status,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatQty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
