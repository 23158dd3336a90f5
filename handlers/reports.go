package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clockpoint/attendance-api/gate"
	"github.com/clockpoint/attendance-api/report"
	"github.com/clockpoint/attendance-api/store"
)

// reportQuery builds the record filter and file name stem from the
// optional ?date= and ?employee_id= parameters. No filter means the
// full report; the three shapes mirror the three download buttons of
// the admin panel.
func reportQuery(c *gin.Context) (store.Query, string, error) {
	var q store.Query
	stem := "attendance_report_" + time.Now().Format("2006-01-02T15-04-05")

	if date := c.Query("date"); date != "" {
		day, err := time.ParseInLocation("2006-01-02", date, time.Local)
		if err != nil {
			return q, "", fmt.Errorf("invalid date, use YYYY-MM-DD")
		}
		q.From, q.To = gate.DayWindow(day)
		stem = "date_wise_report_" + date
	}

	if employeeID := c.Query("employee_id"); employeeID != "" {
		q.EmployeeID = employeeID
		stem = "employee_wise_report_" + employeeID
	}

	return q, stem, nil
}

func (h *Handlers) reportRecords(c *gin.Context) ([]store.AttendanceRecord, string, bool) {
	q, stem, err := reportQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, "", false
	}

	records, err := h.Store.QueryAttendance(c.Request.Context(), q)
	if err != nil {
		slog.Error("unable to read attendance for report", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to read attendance records"})
		return nil, "", false
	}
	if len(records) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no records found"})
		return nil, "", false
	}

	return records, stem, true
}

func (h *Handlers) ExportXLSX(c *gin.Context) {
	records, stem, ok := h.reportRecords(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.xlsx", stem))

	if err := report.WriteXLSX(c.Writer, records); err != nil {
		slog.Error("unable to write spreadsheet report", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate report"})
	}
}

func (h *Handlers) ExportPDF(c *gin.Context) {
	records, stem, ok := h.reportRecords(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", stem))

	if err := report.WritePDF(c.Writer, records); err != nil {
		slog.Error("unable to write pdf report", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate report"})
	}
}
