package models

import (
	"regexp"

	id "personpatch/pkg/domain"
	"personpatch/pkg/platform/validation"
)

var phoneNumberPattern = regexp.MustCompile(`^\d{1,20}$`)

// requestSubject is what the rule table is evaluated against: the request and
// the date "today" is for the past-date rule.
type requestSubject struct {
	req   *PersonRequest
	today id.Date
}

// personalRule, addressRule and contactRule only fire when their
// sub-grouping is present on the request with at least one field set. A
// sub-grouping with every field unset collapses to absent in ToDomain and is
// treated the same way here.
func personalRule(check func(pd *PersonalDetailsRequest, today id.Date) string) func(requestSubject) string {
	return func(s requestSubject) string {
		if s.req.PersonalDetails.isEmpty() {
			return ""
		}
		return check(s.req.PersonalDetails, s.today)
	}
}

func addressRule(check func(a *AddressRequest) string) func(requestSubject) string {
	return func(s requestSubject) string {
		if s.req.Address.isEmpty() {
			return ""
		}
		return check(s.req.Address)
	}
}

func contactRule(check func(c *ContactRequest) string) func(requestSubject) string {
	return func(s requestSubject) string {
		if s.req.Contact.isEmpty() {
			return ""
		}
		return check(s.req.Contact)
	}
}

var checkPhoneNumber = validation.Pattern(phoneNumberPattern)

// requestRules is applied to every creation request and to every patched
// document before it is turned back into a Person.
var requestRules = validation.Rules[requestSubject]{
	{Field: "personalDetails.firstName", Check: personalRule(func(pd *PersonalDetailsRequest, _ id.Date) string {
		return validation.NotBlank(pd.FirstName)
	})},
	{Field: "personalDetails.lastName", Check: personalRule(func(pd *PersonalDetailsRequest, _ id.Date) string {
		return validation.NotBlank(pd.LastName)
	})},
	{Field: "personalDetails.dateOfBirth", Check: personalRule(func(pd *PersonalDetailsRequest, today id.Date) string {
		if pd.DateOfBirth != nil && !pd.DateOfBirth.Before(today) {
			return validation.MsgPast
		}
		return ""
	})},
	{Field: "address.address", Check: addressRule(func(a *AddressRequest) string {
		return validation.NotBlank(a.Address)
	})},
	{Field: "address.city", Check: addressRule(func(a *AddressRequest) string {
		return validation.NotBlank(a.City)
	})},
	{Field: "address.postCode", Check: addressRule(func(a *AddressRequest) string {
		return validation.NotBlank(a.PostCode)
	})},
	{Field: "contact.email", Check: contactRule(func(c *ContactRequest) string {
		return validation.Email(c.Email)
	})},
	{Field: "contact.phoneNumber", Check: contactRule(func(c *ContactRequest) string {
		return checkPhoneNumber(c.PhoneNumber)
	})},
}

// Validate checks the whole request against the rule table and returns
// validation.Errors listing every violation, or nil.
func (r *PersonRequest) Validate(today id.Date) error {
	if r == nil {
		return validation.Errors{{Field: "", Message: "request is required"}}
	}
	return requestRules.Validate(requestSubject{req: r, today: today})
}
