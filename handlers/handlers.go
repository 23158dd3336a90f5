// Package handlers binds the attendance store, the gate and the
// report exporters to the HTTP surface.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clockpoint/attendance-api/gate"
	"github.com/clockpoint/attendance-api/store"
)

type Handlers struct {
	Store store.Store
	Gate  *gate.Gate
}

func New(s store.Store) *Handlers {
	return &Handlers{Store: s, Gate: gate.New(s)}
}

// Register wires the public and admin routes onto the router. The
// admin group is gated by the shared token; an empty token disables
// the whole admin surface.
func (h *Handlers) Register(router gin.IRouter, adminToken string) {
	api := router.Group("/api")
	api.GET("/employees/:id", h.GetEmployee)
	api.GET("/employees/:id/status", h.GetStatus)
	api.POST("/employees/:id/clock", h.PostClock)
	api.GET("/attendance/:id", h.ListAttendance)

	admin := router.Group("/api/admin", RequireAdmin(adminToken))
	admin.POST("/employees", h.PutEmployee)
	admin.GET("/reports/attendance.xlsx", h.ExportXLSX)
	admin.GET("/reports/attendance.pdf", h.ExportPDF)
}

// RequireAdmin is the capability boundary in front of the admin
// surface: everything behind it runs as already-authorized.
func RequireAdmin(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" || c.GetHeader("X-Admin-Token") != token {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin authorization required"})
			return
		}
		c.Next()
	}
}

// GetEmployee is the validation step: look the id up and return the
// profile together with the current day status.
func (h *Handlers) GetEmployee(c *gin.Context) {
	employeeID := strings.TrimSpace(c.Param("id"))

	profile, err := h.Store.Employee(c.Request.Context(), employeeID)
	if errors.Is(err, store.ErrEmployeeNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "employee ID not found"})
		return
	}
	if err != nil {
		slog.Error("unable to read employee", "employee_id", employeeID, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to validate employee ID"})
		return
	}

	status, err := h.Gate.Status(c.Request.Context(), employeeID, time.Now())
	if err != nil {
		slog.Error("unable to determine day status", "employee_id", employeeID, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to check attendance status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"employee": profile, "status": status})
}

func (h *Handlers) GetStatus(c *gin.Context) {
	employeeID := strings.TrimSpace(c.Param("id"))

	status, err := h.Gate.Status(c.Request.Context(), employeeID, time.Now())
	if err != nil {
		slog.Error("unable to determine day status", "employee_id", employeeID, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to check attendance status"})
		return
	}

	c.JSON(http.StatusOK, status)
}

type clockRequest struct {
	RequestedStatus store.Status `json:"requested_status" binding:"required"`
	Latitude        *float64     `json:"latitude"`
	Longitude       *float64     `json:"longitude"`
}

// PostClock records a clock-in or clock-out for the employee in the
// path. The profile display fields are copied from the employees
// collection at write time.
func (h *Handlers) PostClock(c *gin.Context) {
	employeeID := strings.TrimSpace(c.Param("id"))

	var body clockRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "detail": err.Error()})
		return
	}
	if !body.RequestedStatus.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": `requested_status must be "Clock In" or "Clock Out"`})
		return
	}

	profile, err := h.Store.Employee(c.Request.Context(), employeeID)
	if errors.Is(err, store.ErrEmployeeNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "employee ID not found"})
		return
	}
	if err != nil {
		slog.Error("unable to read employee", "employee_id", employeeID, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to validate employee ID"})
		return
	}

	record, err := h.Gate.RecordTransition(c.Request.Context(), gate.TransitionRequest{
		EmployeeID: employeeID,
		Profile:    profile,
		Requested:  body.RequestedStatus,
		Latitude:   body.Latitude,
		Longitude:  body.Longitude,
	}, time.Now())

	switch {
	case errors.Is(err, gate.ErrMissingLocation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, gate.ErrAlreadyClockedIn),
		errors.Is(err, gate.ErrAlreadyComplete),
		errors.Is(err, gate.ErrNotClockedIn):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case err != nil:
		slog.Error("unable to record clock event", "employee_id", employeeID, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to record attendance"})
	default:
		c.JSON(http.StatusCreated, record)
	}
}

// ListAttendance returns the employee's records, limited to one day
// when ?date=YYYY-MM-DD is given.
func (h *Handlers) ListAttendance(c *gin.Context) {
	employeeID := strings.TrimSpace(c.Param("id"))

	q := store.Query{EmployeeID: employeeID}
	if date := c.Query("date"); date != "" {
		day, err := time.ParseInLocation("2006-01-02", date, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, use YYYY-MM-DD"})
			return
		}
		q.From, q.To = gate.DayWindow(day)
	}

	records, err := h.Store.QueryAttendance(c.Request.Context(), q)
	if err != nil {
		slog.Error("unable to list attendance", "employee_id", employeeID, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to read attendance records"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"records": records, "count": len(records)})
}

type employeeRequest struct {
	EmployeeID   string `json:"employee_id" binding:"required"`
	CompanyName  string `json:"company_name" binding:"required"`
	EmployeeName string `json:"employee_name" binding:"required"`
}

// PutEmployee creates or updates an employee profile. Admin only.
func (h *Handlers) PutEmployee(c *gin.Context) {
	var body employeeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "detail": err.Error()})
		return
	}

	profile := store.EmployeeProfile{
		EmployeeID:   strings.TrimSpace(body.EmployeeID),
		CompanyName:  strings.TrimSpace(body.CompanyName),
		EmployeeName: strings.TrimSpace(body.EmployeeName),
	}
	if profile.EmployeeID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "employee_id must not be blank"})
		return
	}

	if err := h.Store.PutEmployee(c.Request.Context(), profile); err != nil {
		slog.Error("unable to save employee", "employee_id", profile.EmployeeID, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to save employee"})
		return
	}

	slog.Info("employee saved", "employee_id", profile.EmployeeID)
	c.JSON(http.StatusCreated, profile)
}
