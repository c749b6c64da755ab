package models

import (
	id "personpatch/pkg/domain"
)

// PersonRequest is the body of POST /people and the shape a merge patch is
// applied to. Sub-groupings are pointers so that "absent" is distinguishable
// from "present with every field unset".
type PersonRequest struct {
	PersonalDetails *PersonalDetailsRequest `json:"personalDetails,omitempty"`
	Address         *AddressRequest         `json:"address,omitempty"`
	Contact         *ContactRequest         `json:"contact,omitempty"`
}

type PersonalDetailsRequest struct {
	FirstName   *string  `json:"firstName,omitempty"`
	LastName    *string  `json:"lastName,omitempty"`
	DateOfBirth *id.Date `json:"dateOfBirth,omitempty"`
}

type AddressRequest struct {
	Address  *string `json:"address,omitempty"`
	City     *string `json:"city,omitempty"`
	PostCode *string `json:"postCode,omitempty"`
}

type ContactRequest struct {
	Email       *string `json:"email,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
}

func (r *PersonalDetailsRequest) isEmpty() bool {
	return r == nil || (r.FirstName == nil && r.LastName == nil && r.DateOfBirth == nil)
}

func (r *AddressRequest) isEmpty() bool {
	return r == nil || (r.Address == nil && r.City == nil && r.PostCode == nil)
}

func (r *ContactRequest) isEmpty() bool {
	return r == nil || (r.Email == nil && r.PhoneNumber == nil)
}
