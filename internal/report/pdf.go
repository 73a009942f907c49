package report

import (
	"io"
	"os"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Candidate fonts with cyrillic glyphs. Core PDF fonts have none, so
// a system TTF is embedded when available; otherwise the output falls
// back to Helvetica and cyrillic text degrades.
var fontPaths = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
	"/usr/share/fonts/TTF/DejaVuSans.ttf",
}

var pdfWidths = []float64{10, 20, 13, 30, 27, 27, 15, 15, 15, 18}

// WritePDF renders rows as a paginated A4 table.
func WritePDF(w io.Writer, rows []Row, title string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")

	font := "Helvetica"
	for _, p := range fontPaths {
		if _, err := os.Stat(p); err == nil {
			pdf.AddUTF8Font("report", "", p)
			font = "report"
			break
		}
	}

	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont(font, "", 14)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	pdf.SetFont(font, "", 8)
	pdf.CellFormat(0, 6, "Сформировано: "+time.Now().Format("02.01.2006 15:04:05"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	header := func() {
		pdf.SetFont(font, "", 7)
		pdf.SetFillColor(68, 114, 196)
		pdf.SetTextColor(255, 255, 255)
		for i, c := range columns {
			pdf.CellFormat(pdfWidths[i], 7, c, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetTextColor(0, 0, 0)
	}
	header()

	for _, r := range rows {
		if pdf.GetY() > 270 {
			pdf.AddPage()
			header()
		}
		cells := []string{
			strconv.FormatInt(r.ID, 10),
			r.Date.Format("02.01.2006"),
			r.Shift,
			r.Employee,
			r.Equipment,
			r.Product,
			formatQty(r.Planned),
			formatQty(r.Actual),
			formatQty(r.Delta),
			r.Status,
		}
		for i, c := range cells {
			pdf.CellFormat(pdfWidths[i], 6, c, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}
