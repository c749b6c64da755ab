package store

import (
	"context"
	"sync"

	"github.com/stretchr/testify/suite"

	"personpatch/internal/person/models"
	id "personpatch/pkg/domain"
	"personpatch/pkg/platform/sentinel"
)

type personStore interface {
	ListAll(ctx context.Context) ([]*models.Person, error)
	FindByID(ctx context.Context, personID id.PersonID) (*models.Person, error)
	Insert(ctx context.Context, p *models.Person) (id.PersonID, error)
	Replace(ctx context.Context, personID id.PersonID, p *models.Person) (*models.Person, error)
}

var (
	_ personStore = (*InMemory)(nil)
	_ personStore = (*RedisStore)(nil)
	_ personStore = (*PostgresStore)(nil)
)

// StoreContractSuite is the behaviour every backend must share. Backend
// suites embed it and set store in SetupTest.
type StoreContractSuite struct {
	suite.Suite
	ctx   context.Context
	store personStore
}

func str(v string) *string { return &v }

func contactOnly(email string) *models.Person {
	return &models.Person{Contact: models.SectionOf(models.Contact{Email: str(email)})}
}

func withID(p *models.Person, personID id.PersonID) *models.Person {
	p.ID = personID
	return p
}

func fullPerson() *models.Person {
	dob := id.MustParseDate("1912-06-23")
	return &models.Person{
		PersonalDetails: models.SectionOf(models.PersonalDetails{FirstName: str("Alan"), LastName: str("Turing"), DateOfBirth: &dob}),
		Address:         models.SectionOf(models.Address{Address: str("2 Hampton Rd"), City: str("Teddington"), PostCode: str("TW11 0LW")}),
		Contact:         models.SectionOf(models.Contact{Email: str("alan@example.com"), PhoneNumber: str("442089770000")}),
	}
}

func (s *StoreContractSuite) TestInsertAndFind() {
	s.Run("assigns an id and round-trips every field", func() {
		p := fullPerson()
		personID, err := s.store.Insert(s.ctx, p)
		s.Require().NoError(err)
		s.False(personID.IsNil())
		s.Equal(personID, p.ID)

		found, err := s.store.FindByID(s.ctx, personID)
		s.Require().NoError(err)
		s.Equal(p, found)
	})

	s.Run("keeps a caller-chosen id", func() {
		p := contactOnly("a@b.com")
		p.ID = "chosen-id"
		personID, err := s.store.Insert(s.ctx, p)
		s.Require().NoError(err)
		s.Equal(id.PersonID("chosen-id"), personID)
	})

	s.Run("rejects a duplicate id", func() {
		p := contactOnly("dup@b.com")
		p.ID = "dup"
		_, err := s.store.Insert(s.ctx, p)
		s.Require().NoError(err)

		_, err = s.store.Insert(s.ctx, withID(contactOnly("other@b.com"), "dup"))
		s.ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("absent sections stay absent", func() {
		personID, err := s.store.Insert(s.ctx, contactOnly("solo@b.com"))
		s.Require().NoError(err)

		found, err := s.store.FindByID(s.ctx, personID)
		s.Require().NoError(err)
		s.False(found.PersonalDetails.IsPresent())
		s.False(found.Address.IsPresent())
		s.True(found.Contact.IsPresent())
	})

	s.Run("unknown id is not found", func() {
		_, err := s.store.FindByID(s.ctx, "missing")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *StoreContractSuite) TestListAll() {
	people, err := s.store.ListAll(s.ctx)
	s.Require().NoError(err)
	s.Empty(people)

	var ids []id.PersonID
	for _, email := range []string{"1@x.io", "2@x.io", "3@x.io"} {
		personID, err := s.store.Insert(s.ctx, contactOnly(email))
		s.Require().NoError(err)
		ids = append(ids, personID)
	}

	people, err = s.store.ListAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(people, 3)
	for i, p := range people {
		s.Equal(ids[i], p.ID)
	}
}

func (s *StoreContractSuite) TestReplace() {
	s.Run("returns the previous version", func() {
		original := fullPerson()
		personID, err := s.store.Insert(s.ctx, original)
		s.Require().NoError(err)

		updated := withID(contactOnly("new@example.com"), personID)
		previous, err := s.store.Replace(s.ctx, personID, updated)
		s.Require().NoError(err)
		s.Equal(original, previous)

		found, err := s.store.FindByID(s.ctx, personID)
		s.Require().NoError(err)
		s.Equal(updated, found)
	})

	s.Run("stores under the given id regardless of the person's id", func() {
		personID, err := s.store.Insert(s.ctx, contactOnly("x@example.com"))
		s.Require().NoError(err)

		_, err = s.store.Replace(s.ctx, personID, withID(contactOnly("y@example.com"), "elsewhere"))
		s.Require().NoError(err)

		found, err := s.store.FindByID(s.ctx, personID)
		s.Require().NoError(err)
		s.Equal(personID, found.ID)
		_, err = s.store.FindByID(s.ctx, "elsewhere")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("unknown id inserts nothing", func() {
		_, err := s.store.Replace(s.ctx, "ghost", withID(contactOnly("g@example.com"), "ghost"))
		s.ErrorIs(err, sentinel.ErrNotFound)

		_, err = s.store.FindByID(s.ctx, "ghost")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *StoreContractSuite) TestStoredCopiesDoNotAlias() {
	p := contactOnly("alias@example.com")
	personID, err := s.store.Insert(s.ctx, p)
	s.Require().NoError(err)

	c, _ := p.Contact.Get()
	*c.Email = "mutated@example.com"

	found, err := s.store.FindByID(s.ctx, personID)
	s.Require().NoError(err)
	fc, _ := found.Contact.Get()
	s.Equal("alias@example.com", *fc.Email)
}

func (s *StoreContractSuite) TestConcurrentReplaceIsLastWriteWins() {
	personID, err := s.store.Insert(s.ctx, contactOnly("start@example.com"))
	s.Require().NoError(err)

	const writers = 20
	var wg sync.WaitGroup
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Replace(s.ctx, personID, withID(contactOnly("writer@example.com"), personID))
			s.NoError(err)
		}()
	}
	wg.Wait()

	found, err := s.store.FindByID(s.ctx, personID)
	s.Require().NoError(err)
	c, _ := found.Contact.Get()
	s.Equal("writer@example.com", *c.Email)
}
