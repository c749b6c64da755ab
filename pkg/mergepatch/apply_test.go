package mergepatch

import (
	"testing"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, doc string) Node {
	t.Helper()
	n, err := Parse([]byte(doc))
	require.NoError(t, err)
	return n
}

func applyJSON(t *testing.T, target, patch string) string {
	t.Helper()
	return Apply(mustParse(t, target), mustParse(t, patch)).String()
}

// Object documents patched with object patches, checked against the expected
// result and against the evanphx/json-patch implementation.
func TestApply_ObjectDocuments(t *testing.T) {
	tests := []struct {
		name   string
		target string
		patch  string
		want   string
	}{
		{"replace scalar", `{"a":"b"}`, `{"a":"c"}`, `{"a":"c"}`},
		{"add key", `{"a":"b"}`, `{"b":"c"}`, `{"a":"b","b":"c"}`},
		{"remove only key", `{"a":"b"}`, `{"a":null}`, `{}`},
		{"remove one of two", `{"a":"b","b":"c"}`, `{"a":null}`, `{"b":"c"}`},
		{"array replaced by scalar", `{"a":["b"]}`, `{"a":"c"}`, `{"a":"c"}`},
		{"scalar replaced by array", `{"a":"c"}`, `{"a":["b"]}`, `{"a":["b"]}`},
		{"nested merge and delete", `{"a":{"b":"c"}}`, `{"a":{"b":"d","c":null}}`, `{"a":{"b":"d"}}`},
		{"arrays are not merged", `{"a":[{"b":"c"}]}`, `{"a":[1]}`, `{"a":[1]}`},
		{"existing null kept", `{"e":null}`, `{"a":1}`, `{"e":null,"a":1}`},
		{"nulls dropped inside new object", `{}`, `{"a":{"bb":{"ccc":null}}}`, `{"a":{"bb":{}}}`},
		{"empty patch is identity", `{"a":{"b":1}}`, `{}`, `{"a":{"b":1}}`},
		{"removing missing key is a no-op", `{"a":1}`, `{"z":null}`, `{"a":1}`},
		{"field added to existing section",
			`{"contact":{"email":"a@b.com"}}`,
			`{"contact":{"phoneNumber":"12345"}}`,
			`{"contact":{"email":"a@b.com","phoneNumber":"12345"}}`},
		{"section removed",
			`{"contact":{"email":"a@b.com"}}`,
			`{"contact":null}`,
			`{}`},
		{"section created from nothing",
			`{"contact":{"email":"a@b.com"}}`,
			`{"address":{"city":"Leeds"}}`,
			`{"contact":{"email":"a@b.com"},"address":{"city":"Leeds"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := applyJSON(t, tt.target, tt.patch)
			assert.JSONEq(t, tt.want, got)

			reference, err := jsonpatch.MergePatch([]byte(tt.target), []byte(tt.patch))
			require.NoError(t, err)
			assert.JSONEq(t, string(reference), got, "differs from reference implementation")
		})
	}
}

// Cases where the target or the patch is not an object (RFC 7396 appendix A).
func TestApply_NonObjectOperands(t *testing.T) {
	tests := []struct {
		name   string
		target string
		patch  string
		want   string
	}{
		{"array target replaced by object", `["a","b"]`, `{"a":"c"}`, `{"a":"c"}`},
		{"object replaced by array", `{"a":"foo"}`, `["c"]`, `["c"]`},
		{"object replaced by null", `{"a":"foo"}`, `null`, `null`},
		{"object replaced by string", `{"a":"foo"}`, `"bar"`, `"bar"`},
		{"scalar member turned into object", `{"a":"foo"}`, `{"a":{"b":"c"}}`, `{"a":{"b":"c"}}`},
		{"null target", `null`, `{"a":1}`, `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.JSONEq(t, tt.want, applyJSON(t, tt.target, tt.patch))
		})
	}
}

func TestApply_DoesNotMutateInputs(t *testing.T) {
	target := mustParse(t, `{"a":{"b":"c","d":"e"},"f":[1,2]}`)
	patch := mustParse(t, `{"a":{"b":null,"x":"y"},"f":null,"g":true}`)
	targetBefore := target.String()
	patchBefore := patch.String()

	result := Apply(target, patch)

	assert.JSONEq(t, `{"a":{"d":"e","x":"y"},"g":true}`, result.String())
	assert.Equal(t, targetBefore, target.String())
	assert.Equal(t, patchBefore, patch.String())
}

func TestApply_PreservesMemberOrder(t *testing.T) {
	got := applyJSON(t, `{"z":1,"a":2,"m":3}`, `{"a":20,"b":4}`)
	assert.Equal(t, `{"z":1,"a":20,"m":3,"b":4}`, got)
}
