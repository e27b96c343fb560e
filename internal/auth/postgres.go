package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/dbx"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/gophchat/internal/auth/migrations"
)

// PostgresStore keeps credentials in a `credentials` table. Writes hit the
// database immediately, so Flush is a no-op.
type PostgresStore struct {
	db dbx.DBTX
}

func NewPostgresStore(db dbx.DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgres connects to dsn, runs migrations, and returns a store over
// the connection.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, *sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("db open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("db ping: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("db migrate: %w", err)
	}
	return NewPostgresStore(db), db, nil
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

func (s *PostgresStore) Get(ctx context.Context, username string) (*Credential, error) {
	query :=
		`SELECT username, salt, verifier FROM credentials
		 WHERE username = $1
		 `

	cred := &Credential{}
	err := s.db.QueryRowContext(ctx, query, username).Scan(&cred.Username, &cred.Salt, &cred.Verifier)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return cred, nil
}

func (s *PostgresStore) Put(ctx context.Context, cred *Credential) error {
	query :=
		`INSERT INTO credentials (username, salt, verifier)
         VALUES ($1, $2, $3)
		 `

	_, err := s.db.ExecContext(ctx, query, cred.Username, cred.Salt, cred.Verifier)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return common.ErrUserAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

// Flush is a no-op: every Put is already durable.
func (s *PostgresStore) Flush() error { return nil }
