package gate

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/clockpoint/attendance-api/store"
)

// fakeStore is an in-memory AttendanceStore for gate tests.
type fakeStore struct {
	employees map[string]store.EmployeeProfile
	records   map[string]store.AttendanceRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		employees: make(map[string]store.EmployeeProfile),
		records:   make(map[string]store.AttendanceRecord),
	}
}

func (f *fakeStore) Employee(_ context.Context, employeeID string) (store.EmployeeProfile, error) {
	profile, ok := f.employees[employeeID]
	if !ok {
		return store.EmployeeProfile{}, store.ErrEmployeeNotFound
	}
	return profile, nil
}

func (f *fakeStore) PutEmployee(_ context.Context, profile store.EmployeeProfile) error {
	f.employees[profile.EmployeeID] = profile
	return nil
}

func (f *fakeStore) QueryAttendance(_ context.Context, q store.Query) ([]store.AttendanceRecord, error) {
	var records []store.AttendanceRecord
	for _, record := range f.records {
		if q.Matches(record) {
			records = append(records, record)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
	return records, nil
}

func (f *fakeStore) PutAttendance(_ context.Context, key string, record store.AttendanceRecord) error {
	f.records[key] = record
	return nil
}

// seed writes a record directly, bypassing the gate.
func (f *fakeStore) seed(employeeID string, status store.Status, at time.Time) {
	record := store.AttendanceRecord{
		EmployeeID: employeeID,
		Status:     status,
		Latitude:   24.90,
		Longitude:  67.05,
		Timestamp:  at,
	}
	f.records[store.RecordKey(employeeID, at)] = record
}

var noon = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func coords() (*float64, *float64) {
	lat, lng := 24.90, 67.05
	return &lat, &lng
}

func request(employeeID string, status store.Status) TransitionRequest {
	lat, lng := coords()
	return TransitionRequest{
		EmployeeID: employeeID,
		Profile:    store.EmployeeProfile{EmployeeID: employeeID, CompanyName: "Etisalat", EmployeeName: "Ayesha Khan"},
		Requested:  status,
		Latitude:   lat,
		Longitude:  lng,
	}
}

func TestStatusEmptyDay(t *testing.T) {
	g := New(newFakeStore())

	result, err := g.Status(context.Background(), "E1", noon)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if result.Day != CanClockIn {
		t.Fatalf("expected CanClockIn for empty day, got %s", result.Day)
	}
	if result.Inconsistent {
		t.Fatalf("empty day must not be inconsistent")
	}
}

func TestStatusNeverAllowsSecondClockIn(t *testing.T) {
	cases := []struct {
		name string
		ins  int
	}{
		{"one unmatched clock in", 1},
		{"two unmatched clock ins", 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fake := newFakeStore()
			for i := 0; i < tc.ins; i++ {
				fake.seed("E1", store.ClockIn, noon.Add(time.Duration(i)*time.Minute))
			}
			g := New(fake)

			result, err := g.Status(context.Background(), "E1", noon)
			if err != nil {
				t.Fatalf("status: %v", err)
			}
			if result.Day == CanClockIn {
				t.Fatalf("unmatched clock in must never yield CanClockIn")
			}
		})
	}
}

func TestStatusCompleteDay(t *testing.T) {
	fake := newFakeStore()
	fake.seed("E1", store.ClockIn, noon.Add(-3*time.Hour))
	fake.seed("E1", store.ClockOut, noon.Add(-1*time.Hour))
	g := New(fake)

	result, err := g.Status(context.Background(), "E1", noon)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if result.Day != DayComplete {
		t.Fatalf("expected DayComplete, got %s", result.Day)
	}
	if result.Inconsistent {
		t.Fatalf("a single in/out pair must not be inconsistent")
	}
}

func TestStatusClockOutOnlyDayIsBlocked(t *testing.T) {
	fake := newFakeStore()
	fake.seed("E1", store.ClockOut, noon.Add(-1*time.Hour))
	g := New(fake)

	result, err := g.Status(context.Background(), "E1", noon)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if result.Day != DayComplete {
		t.Fatalf("a clock-out-only day must be blocked, got %s", result.Day)
	}
	if !result.Inconsistent {
		t.Fatalf("a clock-out-only day must be flagged inconsistent")
	}
}

func TestClockOutWithoutClockInRejected(t *testing.T) {
	fake := newFakeStore()
	g := New(fake)

	_, err := g.RecordTransition(context.Background(), request("E1", store.ClockOut), noon)
	if !errors.Is(err, ErrNotClockedIn) {
		t.Fatalf("expected ErrNotClockedIn, got %v", err)
	}
	if len(fake.records) != 0 {
		t.Fatalf("rejected transition must not persist a record")
	}
}

func TestDayBoundaryIsolation(t *testing.T) {
	fake := newFakeStore()
	endOfDay := time.Date(2026, time.March, 10, 23, 59, 59, 0, time.UTC)
	fake.seed("E1", store.ClockIn, endOfDay)
	g := New(fake)

	nextDay := time.Date(2026, time.March, 11, 0, 0, 1, 0, time.UTC)
	result, err := g.Status(context.Background(), "E1", nextDay)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if result.Day != CanClockIn {
		t.Fatalf("yesterday's clock in must not leak into today, got %s", result.Day)
	}
}

func TestMissingLocationRejectedBeforeWrite(t *testing.T) {
	fake := newFakeStore()
	g := New(fake)

	req := request("E1", store.ClockIn)
	req.Latitude = nil
	req.Longitude = nil

	_, err := g.RecordTransition(context.Background(), req, noon)
	if !errors.Is(err, ErrMissingLocation) {
		t.Fatalf("expected ErrMissingLocation, got %v", err)
	}
	if len(fake.records) != 0 {
		t.Fatalf("missing location must be rejected before any store write")
	}

	req = request("E1", store.ClockIn)
	req.Longitude = nil
	if _, err := g.RecordTransition(context.Background(), req, noon); !errors.Is(err, ErrMissingLocation) {
		t.Fatalf("expected ErrMissingLocation with one coordinate absent, got %v", err)
	}
}

func TestDuplicateClockInPersistsOnce(t *testing.T) {
	fake := newFakeStore()
	g := New(fake)

	req := request("E1", store.ClockIn)
	if _, err := g.RecordTransition(context.Background(), req, noon); err != nil {
		t.Fatalf("first clock in: %v", err)
	}

	_, err := g.RecordTransition(context.Background(), req, noon.Add(time.Second))
	if !errors.Is(err, ErrAlreadyClockedIn) {
		t.Fatalf("expected ErrAlreadyClockedIn, got %v", err)
	}
	if len(fake.records) != 1 {
		t.Fatalf("expected exactly one persisted record, got %d", len(fake.records))
	}
}

func TestUnknownStatusRejected(t *testing.T) {
	g := New(newFakeStore())

	req := request("E1", store.Status("Lunch"))
	if _, err := g.RecordTransition(context.Background(), req, noon); err == nil {
		t.Fatalf("expected error for unknown clock event type")
	}
}

func TestFullDayScenario(t *testing.T) {
	fake := newFakeStore()
	g := New(fake)
	ctx := context.Background()

	result, err := g.Status(ctx, "E1", noon)
	if err != nil || result.Day != CanClockIn {
		t.Fatalf("fresh day: expected CanClockIn, got %s (err %v)", result.Day, err)
	}

	record, err := g.RecordTransition(ctx, request("E1", store.ClockIn), noon)
	if err != nil {
		t.Fatalf("clock in: %v", err)
	}
	if record.Status != store.ClockIn {
		t.Fatalf("expected recorded status %q, got %q", store.ClockIn, record.Status)
	}
	if record.CompanyName != "Etisalat" || record.EmployeeName != "Ayesha Khan" {
		t.Fatalf("profile display fields not copied onto record: %+v", record)
	}
	if !record.Timestamp.Equal(noon) {
		t.Fatalf("record timestamp must be assigned at acceptance, got %v", record.Timestamp)
	}

	result, err = g.Status(ctx, "E1", noon.Add(time.Hour))
	if err != nil || result.Day != CanClockOut {
		t.Fatalf("after clock in: expected CanClockOut, got %s (err %v)", result.Day, err)
	}

	record, err = g.RecordTransition(ctx, request("E1", store.ClockOut), noon.Add(8*time.Hour))
	if err != nil {
		t.Fatalf("clock out: %v", err)
	}
	if record.Status != store.ClockOut {
		t.Fatalf("expected recorded status %q, got %q", store.ClockOut, record.Status)
	}

	result, err = g.Status(ctx, "E1", noon.Add(9*time.Hour))
	if err != nil || result.Day != DayComplete {
		t.Fatalf("after clock out: expected DayComplete, got %s (err %v)", result.Day, err)
	}

	if _, err := g.RecordTransition(ctx, request("E1", store.ClockIn), noon.Add(10*time.Hour)); !errors.Is(err, ErrAlreadyComplete) {
		t.Fatalf("third transition: expected ErrAlreadyComplete, got %v", err)
	}
	if len(fake.records) != 2 {
		t.Fatalf("expected exactly two persisted records, got %d", len(fake.records))
	}
}

func TestDayWindowIsHalfOpen(t *testing.T) {
	start, end := DayWindow(noon)
	if !start.Equal(time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected window start %v", start)
	}
	if !end.Equal(time.Date(2026, time.March, 11, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected window end %v", end)
	}
}
