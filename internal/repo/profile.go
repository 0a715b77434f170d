// Package repo contains the profile record store: a Postgres implementation
// and an in-memory one used when no database is configured.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pkordes/travel-guide/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Integration tests pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ProfileRepo defines the persistence operations for user profiles.
// Timestamps are always assigned by the store.
type ProfileRepo interface {
	// Create writes the initial profile for an identity, replacing any
	// existing record with the same ID. created_at and last_login are set to
	// the store's current time.
	Create(ctx context.Context, p domain.UserProfile) error

	// Get returns the profile for id, or domain.ErrNotFound.
	Get(ctx context.Context, id string) (domain.UserProfile, error)

	// TouchLastLogin sets last_login to now. Returns domain.ErrNotFound if
	// there is no profile for id.
	TouchLastLogin(ctx context.Context, id string) error

	// TouchLastLogout sets last_logout to now. Returns domain.ErrNotFound if
	// there is no profile for id.
	TouchLastLogout(ctx context.Context, id string) error
}

// pgProfileRepo is the Postgres implementation of ProfileRepo.
type pgProfileRepo struct {
	db db
}

// NewProfileRepo constructs a ProfileRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewProfileRepo(db db) ProfileRepo {
	return &pgProfileRepo{db: db}
}

// Create upserts the profile row.
func (r *pgProfileRepo) Create(ctx context.Context, p domain.UserProfile) error {
	const q = `
		INSERT INTO profiles (id, name, email, created_at, last_login, last_logout, preferences, account_status)
		VALUES (@id, @name, @email, now(), now(), NULL, @preferences, @account_status)
		ON CONFLICT (id) DO UPDATE
		SET name           = EXCLUDED.name,
		    email          = EXCLUDED.email,
		    created_at     = EXCLUDED.created_at,
		    last_login     = EXCLUDED.last_login,
		    last_logout    = NULL,
		    preferences    = EXCLUDED.preferences,
		    account_status = EXCLUDED.account_status`

	prefs := p.Preferences
	if prefs == nil {
		prefs = []string{}
	}
	status := p.AccountStatus
	if status == "" {
		status = domain.AccountActive
	}
	args := pgx.NamedArgs{
		"id":             p.ID,
		"name":           p.Name,
		"email":          p.Email,
		"preferences":    prefs,
		"account_status": status,
	}

	if _, err := r.db.Exec(ctx, q, args); err != nil {
		return fmt.Errorf("repo.ProfileRepo.Create: %w", classify(err))
	}
	return nil
}

// Get retrieves a profile by primary key.
func (r *pgProfileRepo) Get(ctx context.Context, id string) (domain.UserProfile, error) {
	const q = `
		SELECT id, name, email, created_at, last_login, last_logout, preferences, account_status
		FROM profiles
		WHERE id = @id`

	var (
		p          domain.UserProfile
		lastLogout *time.Time
	)
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).Scan(
		&p.ID, &p.Name, &p.Email, &p.CreatedAt, &p.LastLogin, &lastLogout, &p.Preferences, &p.AccountStatus,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UserProfile{}, fmt.Errorf("repo.ProfileRepo.Get: %w", domain.ErrNotFound)
		}
		return domain.UserProfile{}, fmt.Errorf("repo.ProfileRepo.Get: %w", classify(err))
	}
	p.LastLogout = lastLogout
	if p.Preferences == nil {
		p.Preferences = []string{}
	}
	return p, nil
}

// TouchLastLogin sets last_login to the server's current time.
func (r *pgProfileRepo) TouchLastLogin(ctx context.Context, id string) error {
	const q = `UPDATE profiles SET last_login = now() WHERE id = @id`
	return r.touch(ctx, "repo.ProfileRepo.TouchLastLogin", q, id)
}

// TouchLastLogout sets last_logout to the server's current time.
func (r *pgProfileRepo) TouchLastLogout(ctx context.Context, id string) error {
	const q = `UPDATE profiles SET last_logout = now() WHERE id = @id`
	return r.touch(ctx, "repo.ProfileRepo.TouchLastLogout", q, id)
}

func (r *pgProfileRepo) touch(ctx context.Context, op, q, id string) error {
	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("%s: %w", op, classify(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return nil
}
