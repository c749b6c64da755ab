package models

import (
	id "personpatch/pkg/domain"
)

// PersonResponse is returned by GET and PATCH. Absent sub-groupings and unset
// fields are omitted.
type PersonResponse struct {
	ID              string                   `json:"id"`
	PersonalDetails *PersonalDetailsResponse `json:"personalDetails,omitempty"`
	Address         *AddressResponse         `json:"address,omitempty"`
	Contact         *ContactResponse         `json:"contact,omitempty"`
}

type PersonalDetailsResponse struct {
	FirstName   *string  `json:"firstName,omitempty"`
	LastName    *string  `json:"lastName,omitempty"`
	DateOfBirth *id.Date `json:"dateOfBirth,omitempty"`
}

type AddressResponse struct {
	Address  *string `json:"address,omitempty"`
	City     *string `json:"city,omitempty"`
	PostCode *string `json:"postCode,omitempty"`
}

type ContactResponse struct {
	Email       *string `json:"email,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
}
