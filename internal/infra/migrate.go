package infra

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is the idempotent bootstrap DDL. Enum alterations are additive only;
// existing rows are never rewritten.
const schema = `
DO $$ BEGIN
	CREATE TYPE user_role AS ENUM ('donor', 'patient', 'admin', 'hospital');
EXCEPTION WHEN duplicate_object THEN NULL; END $$;

DO $$ BEGIN
	CREATE TYPE blood_group AS ENUM ('A+', 'A-', 'B+', 'B-', 'AB+', 'AB-', 'O+', 'O-');
EXCEPTION WHEN duplicate_object THEN NULL; END $$;

DO $$ BEGIN
	CREATE TYPE request_status AS ENUM ('Pending', 'Approved', 'Denied');
EXCEPTION WHEN duplicate_object THEN NULL; END $$;

DO $$ BEGIN
	CREATE TYPE urgency_level AS ENUM ('Normal', 'Urgent', 'Emergency');
EXCEPTION WHEN duplicate_object THEN NULL; END $$;

CREATE TABLE IF NOT EXISTS users (
	id SERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	password_salt TEXT NOT NULL,
	age INTEGER NOT NULL,
	blood_group blood_group NOT NULL,
	role user_role NOT NULL,
	address TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	wallet_address TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS hospitals (
	id SERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	address TEXT NOT NULL,
	latitude DOUBLE PRECISION NOT NULL,
	longitude DOUBLE PRECISION NOT NULL,
	phone TEXT NOT NULL,
	email TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS blood_inventory (
	id SERIAL PRIMARY KEY,
	blood_group blood_group NOT NULL,
	units INTEGER NOT NULL CHECK (units >= 0),
	expiry_date TIMESTAMPTZ NOT NULL,
	hospital_id INTEGER NOT NULL REFERENCES hospitals(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS blood_requests (
	id SERIAL PRIMARY KEY,
	patient_id INTEGER NOT NULL REFERENCES users(id),
	patient_name TEXT NOT NULL,
	patient_age INTEGER NOT NULL,
	blood_group blood_group NOT NULL,
	units INTEGER NOT NULL CHECK (units > 0),
	hospital TEXT NOT NULL,
	location TEXT NOT NULL,
	required_date TIMESTAMPTZ NOT NULL,
	urgency urgency_level NOT NULL,
	reason TEXT NOT NULL DEFAULT '',
	contact_number TEXT NOT NULL,
	status request_status NOT NULL DEFAULT 'Pending',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS donations (
	id SERIAL PRIMARY KEY,
	donor_id INTEGER NOT NULL REFERENCES users(id),
	blood_group blood_group NOT NULL,
	units INTEGER NOT NULL CHECK (units > 0),
	hospital_id INTEGER NOT NULL REFERENCES hospitals(id),
	donation_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	ledger_ref TEXT,
	verified BOOLEAN NOT NULL DEFAULT FALSE,
	CONSTRAINT verified_requires_ledger_ref CHECK (NOT verified OR ledger_ref IS NOT NULL)
);

CREATE TABLE IF NOT EXISTS eligibility_history (
	id SERIAL PRIMARY KEY,
	user_id INTEGER NOT NULL REFERENCES users(id),
	eligible BOOLEAN NOT NULL,
	reason TEXT NOT NULL DEFAULT '',
	check_date TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS donations_donor_id_idx ON donations (donor_id);
CREATE INDEX IF NOT EXISTS blood_requests_patient_id_idx ON blood_requests (patient_id);
CREATE INDEX IF NOT EXISTS eligibility_history_user_id_idx ON eligibility_history (user_id);
`

// Migrate applies the bootstrap schema. Safe to run on every startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
