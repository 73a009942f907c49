package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Report formats offered to the user.
const (
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)

func ValidFormat(format string) bool {
	switch format {
	case FormatCSV, FormatPDF, FormatXLSX:
		return true
	}
	return false
}

// Render produces the report bytes in the requested format.
func Render(format string, rows []Row, title string) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case FormatCSV:
		err = WriteCSV(&buf, rows)
	case FormatPDF:
		err = WritePDF(&buf, rows, title)
	case FormatXLSX:
		err = WriteXLSX(&buf, rows)
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FileName builds a unique report file name; concurrent requests for
// the same manager in the same second must not collide.
func FileName(managerID int64, format string, now time.Time) string {
	return fmt.Sprintf("report_manager_%d_%s_%s.%s",
		managerID, now.Format("20060102_150405"), uuid.NewString()[:8], format)
}
