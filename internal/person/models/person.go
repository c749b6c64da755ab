package models

import (
	"log/slog"

	id "personpatch/pkg/domain"
)

// Person is the aggregate stored for every resource under /people.
//
// Invariants:
//   - ID is empty only before the first insert; stores assign it
//   - each sub-grouping is a Section: absent, or present with at least one field set
//   - a patch never changes ID
type Person struct {
	ID              id.PersonID
	PersonalDetails Section[PersonalDetails]
	Address         Section[Address]
	Contact         Section[Contact]
}

// PersonalDetails groups identity fields. Every field is optional on its own.
type PersonalDetails struct {
	FirstName   *string
	LastName    *string
	DateOfBirth *id.Date
}

func (p PersonalDetails) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.DateOfBirth == nil
}

type Address struct {
	Address  *string
	City     *string
	PostCode *string
}

func (a Address) IsEmpty() bool {
	return a.Address == nil && a.City == nil && a.PostCode == nil
}

type Contact struct {
	Email       *string
	PhoneNumber *string
}

func (c Contact) IsEmpty() bool {
	return c.Email == nil && c.PhoneNumber == nil
}

// Section names as they appear on the wire. Used for logs and change events.
const (
	SectionPersonalDetails = "personalDetails"
	SectionAddress         = "address"
	SectionContact         = "contact"
)

// LogValue keeps personal data out of logs: only the id and which
// sub-groupings are present are rendered.
func (p *Person) LogValue() slog.Value {
	if p == nil {
		return slog.StringValue("<nil>")
	}
	return slog.GroupValue(
		slog.String("id", p.ID.String()),
		slog.Bool(SectionPersonalDetails, p.PersonalDetails.IsPresent()),
		slog.Bool(SectionAddress, p.Address.IsPresent()),
		slog.Bool(SectionContact, p.Contact.IsPresent()),
	)
}

// ChangedSections lists the sub-groupings whose content differs between two
// versions of a person, in wire order.
func ChangedSections(before, after *Person) []string {
	var changed []string
	if !samePersonalDetails(before.PersonalDetails, after.PersonalDetails) {
		changed = append(changed, SectionPersonalDetails)
	}
	if !sameAddress(before.Address, after.Address) {
		changed = append(changed, SectionAddress)
	}
	if !sameContact(before.Contact, after.Contact) {
		changed = append(changed, SectionContact)
	}
	return changed
}

func samePersonalDetails(a, b Section[PersonalDetails]) bool {
	av, aok := a.Get()
	bv, bok := b.Get()
	if aok != bok {
		return false
	}
	return equalPtr(av.FirstName, bv.FirstName) &&
		equalPtr(av.LastName, bv.LastName) &&
		equalPtr(av.DateOfBirth, bv.DateOfBirth)
}

func sameAddress(a, b Section[Address]) bool {
	av, aok := a.Get()
	bv, bok := b.Get()
	if aok != bok {
		return false
	}
	return equalPtr(av.Address, bv.Address) &&
		equalPtr(av.City, bv.City) &&
		equalPtr(av.PostCode, bv.PostCode)
}

func sameContact(a, b Section[Contact]) bool {
	av, aok := a.Get()
	bv, bok := b.Get()
	if aok != bok {
		return false
	}
	return equalPtr(av.Email, bv.Email) && equalPtr(av.PhoneNumber, bv.PhoneNumber)
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
