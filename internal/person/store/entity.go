// Package store persists people. Every backend keeps the same flat record:
// the id plus eight nullable columns, one per field of every sub-grouping.
// Absent sub-groupings are simply all-null columns; reconstruction collapses
// them back to absent.
package store

import (
	"personpatch/internal/person/models"
	id "personpatch/pkg/domain"
)

type entity struct {
	ID          string   `json:"id"`
	FirstName   *string  `json:"firstName,omitempty"`
	LastName    *string  `json:"lastName,omitempty"`
	DateOfBirth *id.Date `json:"dateOfBirth,omitempty"`
	Address     *string  `json:"address,omitempty"`
	City        *string  `json:"city,omitempty"`
	PostCode    *string  `json:"postCode,omitempty"`
	Email       *string  `json:"email,omitempty"`
	PhoneNumber *string  `json:"phoneNumber,omitempty"`
}

// toEntity flattens p. Field values are copied so the stored record never
// aliases the caller's person.
func toEntity(p *models.Person) entity {
	e := entity{ID: p.ID.String()}
	if pd, ok := p.PersonalDetails.Get(); ok {
		e.FirstName = clone(pd.FirstName)
		e.LastName = clone(pd.LastName)
		e.DateOfBirth = clone(pd.DateOfBirth)
	}
	if a, ok := p.Address.Get(); ok {
		e.Address = clone(a.Address)
		e.City = clone(a.City)
		e.PostCode = clone(a.PostCode)
	}
	if c, ok := p.Contact.Get(); ok {
		e.Email = clone(c.Email)
		e.PhoneNumber = clone(c.PhoneNumber)
	}
	return e
}

func (e entity) toPerson() *models.Person {
	return &models.Person{
		ID: id.PersonID(e.ID),
		PersonalDetails: models.SectionOf(models.PersonalDetails{
			FirstName:   clone(e.FirstName),
			LastName:    clone(e.LastName),
			DateOfBirth: clone(e.DateOfBirth),
		}),
		Address: models.SectionOf(models.Address{
			Address:  clone(e.Address),
			City:     clone(e.City),
			PostCode: clone(e.PostCode),
		}),
		Contact: models.SectionOf(models.Contact{
			Email:       clone(e.Email),
			PhoneNumber: clone(e.PhoneNumber),
		}),
	}
}

func clone[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// assignID gives p a fresh id when it has none and returns the id to store under.
func assignID(p *models.Person) id.PersonID {
	if p.ID.IsNil() {
		p.ID = id.NewPersonID()
	}
	return p.ID
}
