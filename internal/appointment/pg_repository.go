package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackgods/clinic-booking/internal/db"
)

const pgUniqueViolation = "23505"

const appointmentColumns = `id, patient_name, email, phone, appointment_date, appointment_time, physician, created_at`

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var tod pgtype.Time

	err := row.Scan(
		&a.ID,
		&a.PatientName,
		&a.Email,
		&a.Phone,
		&a.Date,
		&tod,
		&a.Physician,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Time = formatTimeOfDay(tod)
	return &a, nil
}

func formatTimeOfDay(t pgtype.Time) string {
	d := time.Duration(t.Microseconds) * time.Microsecond
	return time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC).Add(d).Format(TimeLayout)
}

func parseTimeOfDay(s string) (pgtype.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return pgtype.Time{}, err
	}
	d := time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute
	return pgtype.Time{Microseconds: d.Microseconds(), Valid: true}, nil
}

func isDatePhysicianViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == db.DatePhysicianConstraint
}

// Interface methods

// Create inserts the candidate in a single statement; the table constraint
// decides conflicts, so concurrent callers cannot both win a (date, physician).
func (r *PgRepository) Create(ctx context.Context, c Candidate) (*Appointment, error) {
	tod, err := parseTimeOfDay(c.Time)
	if err != nil {
		return nil, fmt.Errorf("candidate time %q: %w", c.Time, err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (patient_name, email, phone, appointment_date, appointment_time, physician)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+appointmentColumns,
		c.PatientName, c.Email, c.Phone, c.Date, tod, c.Physician)

	appt, err := scanAppointment(row)
	if err != nil {
		if isDatePhysicianViolation(err) {
			return nil, ErrConflict
		}
		return nil, &StorageError{Op: "insert appointment", Err: err}
	}
	return appt, nil
}

func (r *PgRepository) List(ctx context.Context) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		ORDER BY appointment_date ASC, physician COLLATE "C" ASC, appointment_time ASC, id ASC
	`)
	if err != nil {
		return nil, &StorageError{Op: "list appointments", Err: err}
	}
	defer rows.Close()

	result := []Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, &StorageError{Op: "scan appointment", Err: err}
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "list appointments", Err: err}
	}

	return result, nil
}
