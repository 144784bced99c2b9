package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/AngelCh415/perfdash/internal/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore keeps each customer as a JSONB document. Archive state and
// timestamps live in their own columns and win over the document copy.
type PostgresStore struct {
	db  *sql.DB
	log *slog.Logger
	now func() time.Time
}

// OpenPostgres opens and pings a lib/pq connection pool.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func NewPostgresStore(db *sql.DB, log *slog.Logger) *PostgresStore {
	if log == nil {
		log = slog.Default()
	}
	return &PostgresStore{db: db, log: log, now: utcNow}
}

// Migrate applies the embedded schema migrations.
func (s *PostgresStore) Migrate() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	driver, err := postgres.WithInstance(s.db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			s.log.Info("no new migrations to apply")
			return nil
		}
		return fmt.Errorf("migrate up: %w", err)
	}
	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("migration version: %w", err)
	}
	s.log.Info("migrations applied", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
	return nil
}

const (
	listCustomersSQL = `
		SELECT doc, archived, created_at, updated_at
		FROM customers
		WHERE $1 OR NOT archived
		ORDER BY created_at DESC, id ASC`
	getCustomerSQL = `
		SELECT doc, archived, created_at, updated_at
		FROM customers
		WHERE id = $1`
	createdAtSQL   = `SELECT created_at FROM customers WHERE id = $1`
	upsertCustomer = `
		INSERT INTO customers (id, doc, archived, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET doc = EXCLUDED.doc, archived = EXCLUDED.archived, updated_at = EXCLUDED.updated_at`
	archiveCustomerSQL = `UPDATE customers SET archived = TRUE, updated_at = $2 WHERE id = $1`
	deleteCustomerSQL  = `DELETE FROM customers WHERE id = $1`
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomer(r rowScanner) (models.Customer, error) {
	var (
		doc      []byte
		c        models.Customer
		archived bool
		created  time.Time
		updated  time.Time
	)
	if err := r.Scan(&doc, &archived, &created, &updated); err != nil {
		return models.Customer{}, err
	}
	if err := json.Unmarshal(doc, &c); err != nil {
		return models.Customer{}, fmt.Errorf("decode customer document: %w", err)
	}
	c.Archived = archived
	c.CreatedAt = created.UTC()
	c.UpdatedAt = updated.UTC()
	return c, nil
}

func (s *PostgresStore) List(ctx context.Context, includeArchived bool) ([]models.Customer, error) {
	rows, err := s.db.QueryContext(ctx, listCustomersSQL, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()
	out := []models.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (models.Customer, error) {
	c, err := scanCustomer(s.db.QueryRowContext(ctx, getCustomerSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Customer{}, models.ErrNotFound
	}
	if err != nil {
		return models.Customer{}, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) Save(ctx context.Context, c models.Customer) (models.Customer, error) {
	c.ID = strings.TrimSpace(c.ID)
	var prev *models.Customer
	if c.ID != "" {
		var created time.Time
		err := s.db.QueryRowContext(ctx, createdAtSQL, c.ID).Scan(&created)
		switch {
		case err == nil:
			prev = &models.Customer{CreatedAt: created.UTC()}
		case !errors.Is(err, sql.ErrNoRows):
			return models.Customer{}, fmt.Errorf("load customer: %w", err)
		}
	}
	c, err := prepare(c, prev, s.now())
	if err != nil {
		return models.Customer{}, err
	}
	doc, err := json.Marshal(c)
	if err != nil {
		return models.Customer{}, fmt.Errorf("encode customer document: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, upsertCustomer, c.ID, doc, c.Archived, c.CreatedAt, c.UpdatedAt); err != nil {
		return models.Customer{}, fmt.Errorf("save customer: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) Archive(ctx context.Context, id string) error {
	return s.execOne(ctx, "archive customer", archiveCustomerSQL, id, s.now())
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	return s.execOne(ctx, "delete customer", deleteCustomerSQL, id)
}

// execOne runs a statement that must touch exactly the row with the id.
func (s *PostgresStore) execOne(ctx context.Context, op, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}
