//go:build go1.18

package domain

import (
	"testing"
)

// FuzzParsePersonID tests that parsing never panics on arbitrary input
// and always returns either a valid ID or an error.
func FuzzParsePersonID(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("1")
	f.Add("'; DROP TABLE people;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))
	f.Add("550e8400-e29b-41d4-a716-446655440000\x00suffix")

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParsePersonID(input)
		if err != nil {
			if id != "" {
				t.Errorf("error returned with non-empty id %q", id)
			}
			return
		}
		roundTrip, err := ParsePersonID(id.String())
		if err != nil {
			t.Errorf("valid id failed round-trip: %v", err)
		}
		if roundTrip != id {
			t.Error("round-trip changed id value")
		}
	})
}
