package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "personpatch/pkg/domain-errors"
)

// maxIDLength bounds identifiers accepted at the API boundary.
const maxIDLength = 128

// PersonID identifies a stored person. It is opaque: stores mint UUIDs, but
// nothing outside a store inspects the format.
type PersonID string

// NewPersonID mints a fresh identifier in UUID text form.
func NewPersonID() PersonID {
	return PersonID(uuid.NewString())
}

// ParsePersonID accepts any non-blank identifier up to maxIDLength bytes that
// carries no control characters. Anything else can never have been issued by
// a store, so it is reported as not found rather than as bad input.
func ParsePersonID(s string) (PersonID, error) {
	if strings.TrimSpace(s) == "" || len(s) > maxIDLength {
		return "", errPersonNotFound()
	}
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			return "", errPersonNotFound()
		}
	}
	return PersonID(s), nil
}

func errPersonNotFound() error {
	return dErrors.New(dErrors.CodeNotFound, "person not found")
}

func (id PersonID) String() string {
	return string(id)
}

// IsNil reports whether the id has not been assigned yet.
func (id PersonID) IsNil() bool {
	return id == ""
}
