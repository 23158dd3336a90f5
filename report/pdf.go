package report

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/clockpoint/attendance-api/store"
)

// WritePDF writes the records as a landscape A4 table with the same
// columns as the spreadsheet export.
func WritePDF(w io.Writer, records []store.AttendanceRecord) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(60, 10, "Attendance Report")
	pdf.Ln(12)

	widths := []float64{32, 44, 44, 26, 24, 28, 28, 26}

	pdf.SetFont("Arial", "B", 10)
	for i, header := range columns {
		pdf.CellFormat(widths[i], 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, record := range records {
		values := []string{
			record.EmployeeID,
			record.CompanyName,
			record.EmployeeName,
			record.Timestamp.Format("2006-01-02"),
			record.Timestamp.Format("15:04:05"),
			fmt.Sprintf("%.6f", record.Latitude),
			fmt.Sprintf("%.6f", record.Longitude),
			string(record.Status),
		}
		for i, value := range values {
			pdf.CellFormat(widths[i], 7, value, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "I", 8)
	pdf.Cell(0, 8, "Generated: "+time.Now().Format("02 January 2006 15:04:05"))

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("error writing pdf: %w", err)
	}
	return nil
}
