package db

import "context"

// Uniqueness lives in the schema: two concurrent callbacks racing to create
// the same email must collide here, not in application code.
const migration = `
CREATE EXTENSION IF NOT EXISTS "pgcrypto";

CREATE TABLE IF NOT EXISTS users (
    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    name text,
    email text NOT NULL,
    password_hash text,
    google_id text,
    github_id text,
    avatar_url text,
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW(),
    CONSTRAINT users_has_credential CHECK (
        password_hash IS NOT NULL OR google_id IS NOT NULL OR github_id IS NOT NULL
    )
);

CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_unique
ON users (LOWER(email));

CREATE UNIQUE INDEX IF NOT EXISTS users_google_id_unique
ON users (google_id) WHERE google_id IS NOT NULL;

CREATE UNIQUE INDEX IF NOT EXISTS users_github_id_unique
ON users (github_id) WHERE github_id IS NOT NULL;
`

func Migrate(ctx context.Context, db *DB) error {
	_, err := db.ExecContext(ctx, migration)
	return err
}
