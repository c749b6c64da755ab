package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"personpatch/internal/person/models"
	id "personpatch/pkg/domain"
	"personpatch/pkg/platform/sentinel"
	"personpatch/pkg/platform/tx"
)

// uniqueViolation is the Postgres SQLSTATE for a duplicate key.
const uniqueViolation = "23505"

// Schema creates the people table. seq preserves insertion order for listing.
const Schema = `
CREATE TABLE IF NOT EXISTS people (
	seq           BIGSERIAL,
	id            TEXT PRIMARY KEY,
	first_name    TEXT,
	last_name     TEXT,
	date_of_birth DATE,
	address       TEXT,
	city          TEXT,
	post_code     TEXT,
	email         TEXT,
	phone_number  TEXT
)`

const selectColumns = `id, first_name, last_name, date_of_birth, address, city, post_code, email, phone_number`

// PostgresStore persists people in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed person store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the people table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure people schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]*models.Person, error) {
	rows, err := tx.Conn(ctx, s.db).QueryContext(ctx, `SELECT `+selectColumns+` FROM people ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Person, 0)
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		out = append(out, e.toPerson())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate people: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, personID id.PersonID) (*models.Person, error) {
	row := tx.Conn(ctx, s.db).QueryRowContext(ctx, `SELECT `+selectColumns+` FROM people WHERE id = $1`, personID.String())
	e, err := scanEntity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find person: %w", err)
	}
	return e.toPerson(), nil
}

func (s *PostgresStore) Insert(ctx context.Context, p *models.Person) (id.PersonID, error) {
	personID := assignID(p)
	e := toEntity(p)
	_, err := tx.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO people (id, first_name, last_name, date_of_birth, address, city, post_code, email, phone_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.FirstName, e.LastName, dateArg(e.DateOfBirth), e.Address, e.City, e.PostCode, e.Email, e.PhoneNumber,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return "", sentinel.ErrConflict
		}
		return "", fmt.Errorf("insert person: %w", err)
	}
	return personID, nil
}

// Replace locks the current row, reads it as the previous version and
// overwrites it in the same transaction. A transaction already carried by ctx
// is joined.
func (s *PostgresStore) Replace(ctx context.Context, personID id.PersonID, p *models.Person) (*models.Person, error) {
	var previous entity
	err := tx.Run(ctx, s.db, func(ctx context.Context) error {
		conn := tx.Conn(ctx, s.db)
		row := conn.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM people WHERE id = $1 FOR UPDATE`, personID.String())
		var err error
		previous, err = scanEntity(row)
		if errors.Is(err, sql.ErrNoRows) {
			return sentinel.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lock person: %w", err)
		}

		e := toEntity(p)
		_, err = conn.ExecContext(ctx, `
			UPDATE people SET first_name = $2, last_name = $3, date_of_birth = $4, address = $5,
				city = $6, post_code = $7, email = $8, phone_number = $9
			WHERE id = $1`,
			personID.String(), e.FirstName, e.LastName, dateArg(e.DateOfBirth), e.Address, e.City, e.PostCode, e.Email, e.PhoneNumber,
		)
		if err != nil {
			return fmt.Errorf("update person: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return previous.toPerson(), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntity(row rowScanner) (entity, error) {
	var (
		e   entity
		dob sql.NullTime
	)
	err := row.Scan(&e.ID, &e.FirstName, &e.LastName, &dob, &e.Address, &e.City, &e.PostCode, &e.Email, &e.PhoneNumber)
	if err != nil {
		return entity{}, err
	}
	if dob.Valid {
		d := id.DateOf(dob.Time)
		e.DateOfBirth = &d
	}
	return e, nil
}

func dateArg(d *id.Date) any {
	if d == nil {
		return nil
	}
	return d.Time()
}
