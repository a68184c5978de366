package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DatePhysicianConstraint is the name of the unique constraint that keeps a
// physician to one appointment per calendar date.
const DatePhysicianConstraint = "appointments_date_physician_key"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS appointments (
	id               BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	patient_name     TEXT        NOT NULL,
	email            TEXT        NOT NULL DEFAULT '',
	phone            TEXT        NOT NULL DEFAULT '',
	appointment_date DATE        NOT NULL,
	appointment_time TIME        NOT NULL,
	physician        TEXT        NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT ` + DatePhysicianConstraint + ` UNIQUE (appointment_date, physician)
)`

// EnsureSchema creates the appointments table if it is missing. It is safe to
// run on every startup.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure appointments schema: %w", err)
	}
	return nil
}
