// Package gate decides whether a clock-in or clock-out is currently
// valid for an employee and, when it is, builds and persists the
// attendance record.
package gate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/clockpoint/attendance-api/store"
)

// Business-rule rejections. Handlers map these to user-visible
// notifications; none of them is fatal and nothing is retried.
var (
	ErrMissingLocation  = errors.New("location coordinates are missing")
	ErrAlreadyClockedIn = errors.New("already clocked in today")
	ErrAlreadyComplete  = errors.New("already clocked in and out for the day")
	ErrNotClockedIn     = errors.New("not clocked in today")
)

// DayStatus is the employee's attendance state for one day window.
type DayStatus string

const (
	CanClockIn  DayStatus = "can_clock_in"
	CanClockOut DayStatus = "can_clock_out"
	DayComplete DayStatus = "day_complete"
)

// StatusResult carries the day status plus a flag set when the day's
// records violate the alternating clock-in/clock-out sequence (for
// example a clock-out with no matching clock-in). An inconsistent day
// is blocked rather than silently resolved.
type StatusResult struct {
	Day          DayStatus `json:"day_status"`
	Inconsistent bool      `json:"inconsistent,omitempty"`
}

// TransitionRequest is one clock-in or clock-out attempt. Latitude
// and Longitude are pointers so an absent coordinate is
// distinguishable from zero.
type TransitionRequest struct {
	EmployeeID string
	Profile    store.EmployeeProfile
	Requested  store.Status
	Latitude   *float64
	Longitude  *float64
}

type Gate struct {
	store store.Store
}

func New(s store.Store) *Gate {
	return &Gate{store: s}
}

// DayWindow returns the half-open midnight-to-midnight interval
// containing now, in now's location.
func DayWindow(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1)
}

// Status classifies the employee's day from the full same-day record
// set. Pure read, no side effects.
func (g *Gate) Status(ctx context.Context, employeeID string, now time.Time) (StatusResult, error) {
	from, to := DayWindow(now)
	records, err := g.store.QueryAttendance(ctx, store.Query{EmployeeID: employeeID, From: from, To: to})
	if err != nil {
		return StatusResult{}, fmt.Errorf("error querying today's attendance for %s: %w", employeeID, err)
	}

	result := classify(records)
	if result.Inconsistent {
		slog.Warn("day records violate the alternating clock in/out sequence",
			"employee_id", employeeID, "records", len(records))
	}
	return result, nil
}

// classify inspects every record in the day window, not just the
// first match: a day is complete once both event types are present,
// open while only a clock-in exists, and fresh when empty. A
// clock-out with no clock-in blocks the day.
func classify(records []store.AttendanceRecord) StatusResult {
	var ins, outs int
	for _, record := range records {
		switch record.Status {
		case store.ClockIn:
			ins++
		case store.ClockOut:
			outs++
		}
	}

	switch {
	case ins == 0 && outs == 0:
		return StatusResult{Day: CanClockIn}
	case ins > 0 && outs == 0:
		return StatusResult{Day: CanClockOut, Inconsistent: ins > 1}
	case ins == 0 && outs > 0:
		return StatusResult{Day: DayComplete, Inconsistent: true}
	default:
		return StatusResult{Day: DayComplete, Inconsistent: ins > 1 || outs > 1}
	}
}

// RecordTransition checks the requested transition against the
// current day status and appends exactly one record on acceptance.
// The record timestamp is assigned here, not taken from the caller's
// payload. The status check and the write are not atomic against a
// concurrent submit for the same employee.
func (g *Gate) RecordTransition(ctx context.Context, req TransitionRequest, now time.Time) (store.AttendanceRecord, error) {
	if req.Latitude == nil || req.Longitude == nil {
		return store.AttendanceRecord{}, ErrMissingLocation
	}

	current, err := g.Status(ctx, req.EmployeeID, now)
	if err != nil {
		return store.AttendanceRecord{}, err
	}

	switch req.Requested {
	case store.ClockIn:
		if current.Day == CanClockOut {
			return store.AttendanceRecord{}, ErrAlreadyClockedIn
		}
		if current.Day == DayComplete {
			return store.AttendanceRecord{}, ErrAlreadyComplete
		}
	case store.ClockOut:
		if current.Day == CanClockIn {
			return store.AttendanceRecord{}, ErrNotClockedIn
		}
		if current.Day == DayComplete {
			return store.AttendanceRecord{}, ErrAlreadyComplete
		}
	default:
		return store.AttendanceRecord{}, fmt.Errorf("unknown clock event type %q", req.Requested)
	}

	record := store.AttendanceRecord{
		EmployeeID:   req.EmployeeID,
		CompanyName:  req.Profile.CompanyName,
		EmployeeName: req.Profile.EmployeeName,
		Status:       req.Requested,
		Latitude:     *req.Latitude,
		Longitude:    *req.Longitude,
		Timestamp:    now,
	}

	key := store.RecordKey(req.EmployeeID, record.Timestamp)
	if err := g.store.PutAttendance(ctx, key, record); err != nil {
		return store.AttendanceRecord{}, fmt.Errorf("error recording %s for %s: %w", req.Requested, req.EmployeeID, err)
	}

	slog.Info("clock event recorded", "employee_id", req.EmployeeID, "status", req.Requested, "timestamp", record.Timestamp)
	return record, nil
}
