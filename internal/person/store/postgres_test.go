package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/suite"

	"personpatch/pkg/platform/sentinel"
)

// PostgresStoreUnitSuite checks the SQL the store issues against sqlmock.
// The full contract runs against a real database in the integration suite.
type PostgresStoreUnitSuite struct {
	suite.Suite
	ctx   context.Context
	db    *sql.DB
	mock  sqlmock.Sqlmock
	store *PostgresStore
}

func TestPostgresStoreUnitSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreUnitSuite))
}

func (s *PostgresStoreUnitSuite) SetupTest() {
	db, mock, err := sqlmock.New()
	s.Require().NoError(err)
	s.ctx = context.Background()
	s.db = db
	s.mock = mock
	s.store = NewPostgres(db)
}

func (s *PostgresStoreUnitSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	_ = s.db.Close()
}

var personColumns = []string{"id", "first_name", "last_name", "date_of_birth", "address", "city", "post_code", "email", "phone_number"}

func (s *PostgresStoreUnitSuite) TestEnsureSchema() {
	s.mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS people")).WillReturnResult(sqlmock.NewResult(0, 0))
	s.NoError(s.store.EnsureSchema(s.ctx))
}

func (s *PostgresStoreUnitSuite) TestFindByID() {
	s.Run("maps columns onto sections", func() {
		s.mock.ExpectQuery(regexp.QuoteMeta("FROM people WHERE id = $1")).
			WithArgs("p1").
			WillReturnRows(sqlmock.NewRows(personColumns).
				AddRow("p1", "Alan", "Turing", time.Date(1912, time.June, 23, 0, 0, 0, 0, time.UTC), nil, nil, nil, "alan@example.com", nil))

		p, err := s.store.FindByID(s.ctx, "p1")
		s.Require().NoError(err)
		pd, ok := p.PersonalDetails.Get()
		s.Require().True(ok)
		s.Equal("1912-06-23", pd.DateOfBirth.String())
		s.False(p.Address.IsPresent())
		c, ok := p.Contact.Get()
		s.Require().True(ok)
		s.Equal("alan@example.com", *c.Email)
		s.Nil(c.PhoneNumber)
	})

	s.Run("no rows is not found", func() {
		s.mock.ExpectQuery(regexp.QuoteMeta("FROM people WHERE id = $1")).
			WithArgs("nope").
			WillReturnRows(sqlmock.NewRows(personColumns))

		_, err := s.store.FindByID(s.ctx, "nope")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *PostgresStoreUnitSuite) TestListAllOrdersBySequence() {
	s.mock.ExpectQuery(regexp.QuoteMeta("FROM people ORDER BY seq")).
		WillReturnRows(sqlmock.NewRows(personColumns).
			AddRow("a", nil, nil, nil, nil, nil, nil, "a@x.io", nil).
			AddRow("b", nil, nil, nil, nil, nil, nil, "b@x.io", nil))

	people, err := s.store.ListAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(people, 2)
	s.Equal("a", people[0].ID.String())
	s.Equal("b", people[1].ID.String())
}

func (s *PostgresStoreUnitSuite) TestInsert() {
	s.Run("writes every column", func() {
		p := contactOnly("c@x.io")
		p.ID = "c"
		s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO people")).
			WithArgs("c", nil, nil, nil, nil, nil, nil, "c@x.io", nil).
			WillReturnResult(sqlmock.NewResult(1, 1))

		personID, err := s.store.Insert(s.ctx, p)
		s.Require().NoError(err)
		s.Equal("c", personID.String())
	})

	s.Run("duplicate key is a conflict", func() {
		p := contactOnly("d@x.io")
		p.ID = "d"
		s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO people")).
			WillReturnError(&pq.Error{Code: uniqueViolation})

		_, err := s.store.Insert(s.ctx, p)
		s.ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("other failures are wrapped", func() {
		p := contactOnly("e@x.io")
		p.ID = "e"
		s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO people")).
			WillReturnError(errors.New("connection reset"))

		_, err := s.store.Insert(s.ctx, p)
		s.ErrorContains(err, "insert person")
		s.NotErrorIs(err, sentinel.ErrConflict)
	})
}

func (s *PostgresStoreUnitSuite) TestReplace() {
	s.Run("locks, updates and returns the previous row", func() {
		s.mock.ExpectBegin()
		s.mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 FOR UPDATE")).
			WithArgs("p1").
			WillReturnRows(sqlmock.NewRows(personColumns).
				AddRow("p1", nil, nil, nil, nil, nil, nil, "old@x.io", nil))
		s.mock.ExpectExec(regexp.QuoteMeta("UPDATE people SET")).
			WithArgs("p1", nil, nil, nil, nil, nil, nil, "new@x.io", nil).
			WillReturnResult(sqlmock.NewResult(0, 1))
		s.mock.ExpectCommit()

		previous, err := s.store.Replace(s.ctx, "p1", contactOnly("new@x.io"))
		s.Require().NoError(err)
		c, _ := previous.Contact.Get()
		s.Equal("old@x.io", *c.Email)
	})

	s.Run("unknown id rolls back without writing", func() {
		s.mock.ExpectBegin()
		s.mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
			WithArgs("ghost").
			WillReturnRows(sqlmock.NewRows(personColumns))
		s.mock.ExpectRollback()

		_, err := s.store.Replace(s.ctx, "ghost", contactOnly("g@x.io"))
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}
