package mergepatch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("parses every kind", func(t *testing.T) {
		n := mustParse(t, `{"s":"x","n":1.50,"b":false,"z":null,"a":[1,"two"],"o":{}}`)
		require.Equal(t, Object, n.Kind())

		kinds := map[string]Kind{"s": String, "n": Number, "b": Bool, "z": Null, "a": Array, "o": Object}
		for key, kind := range kinds {
			v, ok := n.Get(key)
			require.True(t, ok, key)
			assert.Equal(t, kind, v.Kind(), key)
		}
	})

	t.Run("keeps number literals", func(t *testing.T) {
		assert.Equal(t, `{"n":1.50,"big":12345678901234567890}`, mustParse(t, `{"n":1.50,"big":12345678901234567890}`).String())
	})

	t.Run("last duplicate key wins", func(t *testing.T) {
		assert.Equal(t, `{"a":2}`, mustParse(t, `{"a":1,"a":2}`).String())
	})

	t.Run("rejects empty input", func(t *testing.T) {
		_, err := Parse(nil)
		assert.Error(t, err)
	})

	t.Run("rejects trailing data", func(t *testing.T) {
		_, err := Parse([]byte(`{"a":1} {"b":2}`))
		assert.Error(t, err)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		_, err := Parse([]byte(`{"a":`))
		assert.Error(t, err)
	})
}

func TestNodeRoundTrip(t *testing.T) {
	doc := `{"name":"<Ana & Bob>","tags":["x",true,null],"nested":{"k":-2e3}}`
	n := mustParse(t, doc)
	assert.Equal(t, doc, n.String())

	var decoded Node
	require.NoError(t, json.Unmarshal([]byte(doc), &decoded))
	assert.True(t, Equal(n, decoded))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(mustParse(t, `{"a":1,"b":[1,2]}`), mustParse(t, `{"b":[1,2],"a":1}`)))
	assert.False(t, Equal(mustParse(t, `{"a":1}`), mustParse(t, `{"a":"1"}`)))
	assert.False(t, Equal(mustParse(t, `[1,2]`), mustParse(t, `[2,1]`)))
	assert.False(t, Equal(mustParse(t, `{"a":1}`), mustParse(t, `{"a":1,"b":2}`)))
	assert.True(t, Equal(NullNode(), Node{}))
}

func TestFromValueAndDecode(t *testing.T) {
	type contact struct {
		Email *string `json:"email,omitempty"`
		Phone *string `json:"phone,omitempty"`
	}
	email := "a@b.com"

	n, err := FromValue(contact{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, `{"email":"a@b.com"}`, n.String())

	var out contact
	require.NoError(t, Decode(mustParse(t, `{"email":"x@y.z","phone":"1"}`), &out))
	assert.Equal(t, "x@y.z", *out.Email)
	assert.Equal(t, "1", *out.Phone)

	assert.Error(t, Decode(mustParse(t, `{"email":42}`), &out))
}

func TestObjectNodeBuilders(t *testing.T) {
	n := ObjectNode(
		Member{Key: "a", Value: StringNode("x")},
		Member{Key: "b", Value: ArrayNode(BoolNode(true), NumberNode("3"))},
		Member{Key: "a", Value: NullNode()},
	)
	assert.Equal(t, `{"a":null,"b":[true,3]}`, n.String())
	assert.Equal(t, `{}`, ObjectNode().String())
}
