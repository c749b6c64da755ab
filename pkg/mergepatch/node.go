// Package mergepatch implements JSON merge patch (RFC 7396) over a small
// tagged-value tree. It is schema-less: callers serialize their own shapes
// into a Node, apply a patch, and decode the result back.
package mergepatch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Kind tags the variant held by a Node.
type Kind uint8

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Member is one key/value pair of an object node.
type Member struct {
	Key   string
	Value Node
}

// Node is an immutable JSON value. The zero Node is JSON null.
// Object members keep their first-seen order; a repeated key keeps the last value.
type Node struct {
	kind    Kind
	boolean bool
	text    string // string value, or the literal of a number
	items   []Node
	members []Member
}

func NullNode() Node { return Node{} }
func BoolNode(b bool) Node { return Node{kind: Bool, boolean: b} }
func StringNode(s string) Node { return Node{kind: String, text: s} }
func ArrayNode(items ...Node) Node { return Node{kind: Array, items: items} }

// NumberNode wraps a JSON number literal.
func NumberNode(n json.Number) Node {
	return Node{kind: Number, text: n.String()}
}

// ObjectNode builds an object from members; later duplicates win.
func ObjectNode(members ...Member) Node {
	n := Node{kind: Object}
	for _, m := range members {
		n.members = setMember(n.members, m.Key, m.Value)
	}
	if n.members == nil {
		n.members = []Member{}
	}
	return n
}

func (n Node) Kind() Kind { return n.kind }
func (n Node) IsNull() bool { return n.kind == Null }
func (n Node) IsObject() bool { return n.kind == Object }

// Get returns the member value for key on an object node.
func (n Node) Get(key string) (Node, bool) {
	if n.kind != Object {
		return Node{}, false
	}
	for _, m := range n.members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Node{}, false
}

// Members returns a copy of the object members, or nil for other kinds.
func (n Node) Members() []Member {
	if n.kind != Object {
		return nil
	}
	return append([]Member(nil), n.members...)
}

// Items returns a copy of the array items, or nil for other kinds.
func (n Node) Items() []Node {
	if n.kind != Array {
		return nil
	}
	return append([]Node(nil), n.items...)
}

// StringValue returns the string held by a String node.
func (n Node) StringValue() (string, bool) {
	return n.text, n.kind == String
}

// Equal reports deep equality. Object member order is ignored and numbers are
// compared by literal.
func Equal(a, b Node) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case Null:
		return true
	case Bool:
		return a.boolean == b.boolean
	case Number, String:
		return a.text == b.text
	case Array:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !Equal(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	case Object:
		if len(a.members) != len(b.members) {
			return false
		}
		for _, m := range a.members {
			other, ok := b.Get(m.Key)
			if !ok || !Equal(m.Value, other) {
				return false
			}
		}
		return true
	}
	return false
}

func setMember(members []Member, key string, value Node) []Member {
	for i := range members {
		if members[i].Key == key {
			members[i].Value = value
			return members
		}
	}
	return append(members, Member{Key: key, Value: value})
}

// Parse decodes a single JSON document into a Node.
func Parse(data []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	n, err := parseValue(dec)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Node{}, errors.New("mergepatch: empty document")
		}
		return Node{}, fmt.Errorf("mergepatch: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Node{}, errors.New("mergepatch: unexpected data after document")
	}
	return n, nil
}

func parseValue(dec *json.Decoder) (Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return Node{}, err
	}
	switch v := tok.(type) {
	case nil:
		return NullNode(), nil
	case bool:
		return BoolNode(v), nil
	case json.Number:
		return NumberNode(v), nil
	case string:
		return StringNode(v), nil
	case json.Delim:
		switch v {
		case '{':
			return parseObject(dec)
		case '[':
			return parseArray(dec)
		}
	}
	return Node{}, fmt.Errorf("unexpected token %v", tok)
}

func parseObject(dec *json.Decoder) (Node, error) {
	members := []Member{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Node{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return Node{}, fmt.Errorf("object key must be a string, got %v", tok)
		}
		value, err := parseValue(dec)
		if err != nil {
			return Node{}, err
		}
		members = setMember(members, key, value)
	}
	if _, err := dec.Token(); err != nil {
		return Node{}, err
	}
	return Node{kind: Object, members: members}, nil
}

func parseArray(dec *json.Decoder) (Node, error) {
	items := []Node{}
	for dec.More() {
		item, err := parseValue(dec)
		if err != nil {
			return Node{}, err
		}
		items = append(items, item)
	}
	if _, err := dec.Token(); err != nil {
		return Node{}, err
	}
	return Node{kind: Array, items: items}, nil
}

// MarshalJSON renders the node, keeping object member order.
func (n Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON lets a Node be decoded directly from a request body.
func (n *Node) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

func (n Node) String() string {
	out, err := n.MarshalJSON()
	if err != nil {
		return "<invalid: " + err.Error() + ">"
	}
	return string(out)
}

func (n Node) write(buf *bytes.Buffer) error {
	switch n.kind {
	case Null:
		buf.WriteString("null")
	case Bool:
		if n.boolean {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Number:
		buf.WriteString(n.text)
	case String:
		return writeString(buf, n.text)
	case Array:
		buf.WriteByte('[')
		for i, item := range n.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.write(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		for i, m := range n.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(buf, m.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := m.Value.write(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("mergepatch: unknown node kind %s", n.kind)
	}
	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encoder terminates each value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

// FromValue serializes v with encoding/json and parses the result.
func FromValue(v any) (Node, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Node{}, fmt.Errorf("mergepatch: encode value: %w", err)
	}
	return Parse(data)
}

// Decode unmarshals the node into out. Type mismatches between the tree and
// out's shape are returned as errors.
func Decode(n Node, out any) error {
	data, err := n.MarshalJSON()
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	return dec.Decode(out)
}
