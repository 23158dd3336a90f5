// Package store holds the attendance data model and the storage
// interface the rest of the service is written against. The original
// deployment kept these records in a hosted document database; any
// backend that can filter by employee and timestamp range satisfies
// the interface.
package store

import (
	"context"
	"errors"
	"time"
)

// Status is the clock event type carried on an attendance record.
// The wire values match what lives in the production collections.
type Status string

const (
	ClockIn  Status = "Clock In"
	ClockOut Status = "Clock Out"
)

// Valid reports whether s is one of the two known clock event types.
func (s Status) Valid() bool {
	return s == ClockIn || s == ClockOut
}

// ErrEmployeeNotFound is returned by Employee when no profile exists
// for the requested id.
var ErrEmployeeNotFound = errors.New("employee not found")

// EmployeeProfile is created and updated only through the admin
// surface. The display names are copied onto attendance records at
// write time and never re-validated afterwards.
type EmployeeProfile struct {
	EmployeeID   string `json:"employee_id"`
	CompanyName  string `json:"company_name"`
	EmployeeName string `json:"employee_name"`
}

// AttendanceRecord is a single clock event. Records are append-only;
// nothing in this service mutates or deletes one once written.
type AttendanceRecord struct {
	EmployeeID   string    `json:"employee_id"`
	CompanyName  string    `json:"company_name"`
	EmployeeName string    `json:"employee_name"`
	Status       Status    `json:"status"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	Timestamp    time.Time `json:"timestamp"`
}

// Query filters an attendance scan. A zero EmployeeID disables the
// equality filter and zero From/To disable the range filter, so the
// zero Query returns every record (used for the full report).
// The time range is half-open: [From, To).
type Query struct {
	EmployeeID string
	From       time.Time
	To         time.Time
}

// Matches reports whether record r passes the query filters.
func (q Query) Matches(r AttendanceRecord) bool {
	if q.EmployeeID != "" && r.EmployeeID != q.EmployeeID {
		return false
	}
	if !q.From.IsZero() && r.Timestamp.Before(q.From) {
		return false
	}
	if !q.To.IsZero() && !r.Timestamp.Before(q.To) {
		return false
	}
	return true
}

// Store is the attendance repository consumed by the gate, the
// handlers and the report exporters.
type Store interface {
	Employee(ctx context.Context, employeeID string) (EmployeeProfile, error)
	PutEmployee(ctx context.Context, profile EmployeeProfile) error
	QueryAttendance(ctx context.Context, q Query) ([]AttendanceRecord, error)
	PutAttendance(ctx context.Context, key string, record AttendanceRecord) error
}

// RecordKey derives the unique storage key for a clock event from the
// employee id and the acceptance timestamp, so two events for the same
// employee can never collide unless they carry the same instant.
func RecordKey(employeeID string, at time.Time) string {
	return employeeID + "|" + at.UTC().Format(time.RFC3339Nano)
}
