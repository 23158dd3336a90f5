package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	_ "github.com/lib/pq"
)

const databaseTimeout = "5"

const schema = `
CREATE TABLE IF NOT EXISTS employees (
	employee_id   text PRIMARY KEY,
	company_name  text NOT NULL,
	employee_name text NOT NULL
);
CREATE TABLE IF NOT EXISTS attendance (
	record_key    text PRIMARY KEY,
	employee_id   text NOT NULL,
	company_name  text NOT NULL,
	employee_name text NOT NULL,
	status        text NOT NULL,
	latitude      double precision NOT NULL,
	longitude     double precision NOT NULL,
	event_time    timestamptz NOT NULL
);
CREATE INDEX IF NOT EXISTS attendance_employee_time ON attendance (employee_id, event_time);`

const getEmployeeQuery = `SELECT employee_id, company_name, employee_name FROM employees WHERE employee_id = $1;`

const putEmployeeQuery = `INSERT INTO employees (employee_id, company_name, employee_name)
VALUES ($1, $2, $3)
ON CONFLICT (employee_id) DO UPDATE SET company_name = EXCLUDED.company_name, employee_name = EXCLUDED.employee_name;`

const putAttendanceQuery = `INSERT INTO attendance (record_key, employee_id, company_name, employee_name, status, latitude, longitude, event_time)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (record_key) DO NOTHING;`

// PostgresStore backs the repository with postgres through lib/pq.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres reads the ATTENDANCE_DB_* environment variables, opens
// the connection and bootstraps the schema.
func OpenPostgres() (*PostgresStore, error) {
	slog.Info("getting environment variables for postgres store")
	var (
		host     = os.Getenv("ATTENDANCE_DB_HOST")
		user     = os.Getenv("ATTENDANCE_DB_USER")
		password = os.Getenv("ATTENDANCE_DB_PASSWORD")
		dbname   = os.Getenv("ATTENDANCE_DB_NAME")
	)
	port, err := strconv.Atoi(os.Getenv("ATTENDANCE_DB_PORT"))
	if err != nil {
		return nil, fmt.Errorf("ATTENDANCE_DB_PORT is not an int: %w", err)
	}
	if host == "" || user == "" || password == "" || dbname == "" {
		return nil, errors.New("ATTENDANCE_DB_HOST, ATTENDANCE_DB_USER, ATTENDANCE_DB_PASSWORD and ATTENDANCE_DB_NAME must be set")
	}

	slog.Info("setting up database connection", "host", host, "port", port, "dbname", dbname)
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s "+
		"password=%s dbname=%s sslmode=disable connect_timeout=%s",
		host, port, user, password, dbname, databaseTimeout)

	db, err := sql.Open("postgres", psqlInfo)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating schema: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) Employee(ctx context.Context, employeeID string) (EmployeeProfile, error) {
	var profile EmployeeProfile
	row := s.db.QueryRowContext(ctx, getEmployeeQuery, employeeID)
	err := row.Scan(&profile.EmployeeID, &profile.CompanyName, &profile.EmployeeName)
	if errors.Is(err, sql.ErrNoRows) {
		return EmployeeProfile{}, ErrEmployeeNotFound
	}
	if err != nil {
		return EmployeeProfile{}, fmt.Errorf("error reading employee %s: %w", employeeID, err)
	}
	return profile, nil
}

func (s *PostgresStore) PutEmployee(ctx context.Context, profile EmployeeProfile) error {
	_, err := s.db.ExecContext(ctx, putEmployeeQuery, profile.EmployeeID, profile.CompanyName, profile.EmployeeName)
	if err != nil {
		return fmt.Errorf("error upserting employee %s: %w", profile.EmployeeID, err)
	}
	return nil
}

func (s *PostgresStore) QueryAttendance(ctx context.Context, q Query) ([]AttendanceRecord, error) {
	query := `SELECT employee_id, company_name, employee_name, status, latitude, longitude, event_time FROM attendance`

	var conditions []string
	var args []any
	if q.EmployeeID != "" {
		args = append(args, q.EmployeeID)
		conditions = append(conditions, fmt.Sprintf("employee_id = $%d", len(args)))
	}
	if !q.From.IsZero() {
		args = append(args, q.From)
		conditions = append(conditions, fmt.Sprintf("event_time >= $%d", len(args)))
	}
	if !q.To.IsZero() {
		args = append(args, q.To)
		conditions = append(conditions, fmt.Sprintf("event_time < $%d", len(args)))
	}
	for i, c := range conditions {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY event_time ASC;"

	slog.Debug("sending database query", "query", query)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying attendance: %w", err)
	}
	defer rows.Close()

	var records []AttendanceRecord
	for rows.Next() {
		var record AttendanceRecord
		err := rows.Scan(&record.EmployeeID, &record.CompanyName, &record.EmployeeName,
			&record.Status, &record.Latitude, &record.Longitude, &record.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("error scanning attendance row: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *PostgresStore) PutAttendance(ctx context.Context, key string, record AttendanceRecord) error {
	_, err := s.db.ExecContext(ctx, putAttendanceQuery, key, record.EmployeeID, record.CompanyName,
		record.EmployeeName, record.Status, record.Latitude, record.Longitude, record.Timestamp)
	if err != nil {
		return fmt.Errorf("error inserting attendance record %s: %w", key, err)
	}
	return nil
}
