package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/clockpoint/attendance-api/store"
)

func sampleRecords() []store.AttendanceRecord {
	at := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	return []store.AttendanceRecord{
		{
			EmployeeID:   "E1",
			CompanyName:  "Etisalat",
			EmployeeName: "Ayesha Khan",
			Status:       store.ClockIn,
			Latitude:     24.90,
			Longitude:    67.05,
			Timestamp:    at,
		},
		{
			EmployeeID:   "E1",
			CompanyName:  "Etisalat",
			EmployeeName: "Ayesha Khan",
			Status:       store.ClockOut,
			Latitude:     24.90,
			Longitude:    67.05,
			Timestamp:    at.Add(8 * time.Hour),
		},
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, sampleRecords()); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 data rows, got %d rows", len(rows))
	}
	for i, header := range columns {
		if rows[0][i] != header {
			t.Fatalf("header column %d: expected %q, got %q", i, header, rows[0][i])
		}
	}
	if rows[1][0] != "E1" || rows[1][3] != "2026-03-10" || rows[1][7] != string(store.ClockIn) {
		t.Fatalf("unexpected first data row: %v", rows[1])
	}
	if rows[2][4] != "17:00:00" || rows[2][7] != string(store.ClockOut) {
		t.Fatalf("unexpected second data row: %v", rows[2])
	}
}

func TestWriteXLSXEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, nil); err != nil {
		t.Fatalf("write empty xlsx: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected header row only, got %d rows", len(rows))
	}
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, sampleRecords()); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatalf("output does not look like a pdf")
	}
	if buf.Len() < 1000 {
		t.Fatalf("pdf suspiciously small: %d bytes", buf.Len())
	}
}
