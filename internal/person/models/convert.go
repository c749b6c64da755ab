package models

import (
	id "personpatch/pkg/domain"
)

// ToDomain builds a Person from a request. Absent request sub-groupings become
// absent sections; present ones are copied field by field, partial or not.
func ToDomain(personID id.PersonID, req *PersonRequest) *Person {
	p := &Person{ID: personID}
	if req == nil {
		return p
	}
	if pd := req.PersonalDetails; pd != nil {
		p.PersonalDetails = SectionOf(PersonalDetails{
			FirstName:   pd.FirstName,
			LastName:    pd.LastName,
			DateOfBirth: pd.DateOfBirth,
		})
	}
	if a := req.Address; a != nil {
		p.Address = SectionOf(Address{
			Address:  a.Address,
			City:     a.City,
			PostCode: a.PostCode,
		})
	}
	if c := req.Contact; c != nil {
		p.Contact = SectionOf(Contact{
			Email:       c.Email,
			PhoneNumber: c.PhoneNumber,
		})
	}
	return p
}

// ToRequest renders a Person as the request that would create it. Only
// present sections are emitted. Used as the merge target for patches.
func ToRequest(p *Person) *PersonRequest {
	req := &PersonRequest{}
	if pd, ok := p.PersonalDetails.Get(); ok {
		req.PersonalDetails = &PersonalDetailsRequest{
			FirstName:   pd.FirstName,
			LastName:    pd.LastName,
			DateOfBirth: pd.DateOfBirth,
		}
	}
	if a, ok := p.Address.Get(); ok {
		req.Address = &AddressRequest{
			Address:  a.Address,
			City:     a.City,
			PostCode: a.PostCode,
		}
	}
	if c, ok := p.Contact.Get(); ok {
		req.Contact = &ContactRequest{
			Email:       c.Email,
			PhoneNumber: c.PhoneNumber,
		}
	}
	return req
}

// ToResponse renders a Person for API output, omitting absent sections.
func ToResponse(p *Person) *PersonResponse {
	resp := &PersonResponse{ID: p.ID.String()}
	if pd, ok := p.PersonalDetails.Get(); ok {
		resp.PersonalDetails = &PersonalDetailsResponse{
			FirstName:   pd.FirstName,
			LastName:    pd.LastName,
			DateOfBirth: pd.DateOfBirth,
		}
	}
	if a, ok := p.Address.Get(); ok {
		resp.Address = &AddressResponse{
			Address:  a.Address,
			City:     a.City,
			PostCode: a.PostCode,
		}
	}
	if c, ok := p.Contact.Get(); ok {
		resp.Contact = &ContactResponse{
			Email:       c.Email,
			PhoneNumber: c.PhoneNumber,
		}
	}
	return resp
}

// ToResponses converts a list of people preserving order.
func ToResponses(people []*Person) []*PersonResponse {
	out := make([]*PersonResponse, 0, len(people))
	for _, p := range people {
		out = append(out, ToResponse(p))
	}
	return out
}
