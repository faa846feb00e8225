package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/irahuldutta02/go-google-github-auth/internal/auth"
	"github.com/irahuldutta02/go-google-github-auth/internal/db"
)

const uniqueViolation = "23505"

type Postgres struct {
	db *db.DB
}

func NewPostgres(db *db.DB) *Postgres {
	return &Postgres{db: db}
}

const userColumns = `id, COALESCE(name, ''), email, COALESCE(password_hash, ''),
	COALESCE(google_id, ''), COALESCE(github_id, ''), COALESCE(avatar_url, ''),
	created_at, updated_at`

func (p *Postgres) FindByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row)
}

func (p *Postgres) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`, email)
	return scanUser(row)
}

func (p *Postgres) FindByProviderID(ctx context.Context, provider auth.Provider, providerID string) (*auth.User, error) {
	column, err := providerColumn(provider)
	if err != nil {
		return nil, err
	}

	row := p.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE `+column+` = $1
	`, providerID)
	return scanUser(row)
}

func (p *Postgres) Create(ctx context.Context, user *auth.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	err := p.db.QueryRowContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, google_id, github_id, avatar_url)
		VALUES ($1, NULLIF($2, ''), $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''))
		RETURNING created_at, updated_at
	`,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.GoogleID,
		user.GitHubID,
		user.AvatarURL,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (p *Postgres) Save(ctx context.Context, user *auth.User) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE users
		SET name = NULLIF($2, ''),
		    email = $3,
		    password_hash = NULLIF($4, ''),
		    google_id = NULLIF($5, ''),
		    github_id = NULLIF($6, ''),
		    avatar_url = NULLIF($7, ''),
		    updated_at = NOW()
		WHERE id = $1
	`,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.GoogleID,
		user.GitHubID,
		user.AvatarURL,
	)

	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (*auth.User, error) {
	var u auth.User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.GoogleID,
		&u.GitHubID,
		&u.AvatarURL,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func providerColumn(provider auth.Provider) (string, error) {
	switch provider {
	case auth.ProviderGoogle:
		return "google_id", nil
	case auth.ProviderGitHub:
		return "github_id", nil
	}
	return "", fmt.Errorf("unknown provider: %s", provider)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
