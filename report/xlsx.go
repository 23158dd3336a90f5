// Package report renders attendance record sets as downloadable
// spreadsheet and PDF files.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/clockpoint/attendance-api/store"
)

const sheetName = "Attendance Report"

var columns = []string{"Employee ID", "Company Name", "Employee Name", "Date", "Time", "Latitude", "Longitude", "Status"}

func rowValues(record store.AttendanceRecord) []any {
	return []any{
		record.EmployeeID,
		record.CompanyName,
		record.EmployeeName,
		record.Timestamp.Format("2006-01-02"),
		record.Timestamp.Format("15:04:05"),
		record.Latitude,
		record.Longitude,
		string(record.Status),
	}
}

// WriteXLSX writes the records as an xlsx workbook with one header
// row and one row per clock event.
func WriteXLSX(w io.Writer, records []store.AttendanceRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, header := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIndex, record := range records {
		for colIndex, value := range rowValues(record) {
			cell, _ := excelize.CoordinatesToCellName(colIndex+1, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	f.SetColWidth(sheetName, "A", "H", 18)
	f.DeleteSheet("Sheet1")

	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing spreadsheet: %w", err)
	}
	return nil
}
