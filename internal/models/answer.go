package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Value is a single form answer. Multiselect answers are lists; everything
// else is text. An unanswered field has no Value at all (see Section).
type Value struct {
	Text   string
	List   []string
	IsList bool
}

// Text builds a text answer.
func Text(s string) Value {
	return Value{Text: s}
}

// List builds a list answer. A nil list is stored as an empty array.
func List(items ...string) Value {
	if items == nil {
		items = []string{}
	}
	return Value{List: items, IsList: true}
}

// Empty reports whether the answer has no usable content.
func (v Value) Empty() bool {
	if v.IsList {
		for _, item := range v.List {
			if strings.TrimSpace(item) != "" {
				return false
			}
		}
		return true
	}
	return strings.TrimSpace(v.Text) == ""
}

// Matches reports whether the answer equals want, or contains it for lists.
func (v Value) Matches(want string) bool {
	if v.IsList {
		for _, item := range v.List {
			if item == want {
				return true
			}
		}
		return false
	}
	return v.Text == want
}

// String renders the answer for logs and messages.
func (v Value) String() string {
	if v.IsList {
		return strings.Join(v.List, ", ")
	}
	return v.Text
}

// MarshalJSON encodes text answers as strings and list answers as arrays.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsList {
		items := v.List
		if items == nil {
			items = []string{}
		}
		return json.Marshal(items)
	}
	return json.Marshal(v.Text)
}

// UnmarshalJSON accepts strings, arrays and scalar literals.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*v = Value{}
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Text(s)
	case '[':
		var raw []interface{}
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		items := make([]string, 0, len(raw))
		for _, item := range raw {
			if item == nil {
				continue
			}
			items = append(items, fmt.Sprint(item))
		}
		*v = List(items...)
	case '{':
		return fmt.Errorf("answer cannot be an object")
	default:
		*v = Text(trimmed)
	}
	return nil
}

// MarshalBSONValue stores text answers as BSON strings and lists as arrays.
func (v Value) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if v.IsList {
		items := v.List
		if items == nil {
			items = []string{}
		}
		return bson.MarshalValue(items)
	}
	return bson.MarshalValue(v.Text)
}

// UnmarshalBSONValue decodes strings and arrays. Numbers and booleans written
// by hand into the database become their plain text form.
func (v *Value) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.Array:
		elems, err := raw.Array().Values()
		if err != nil {
			return fmt.Errorf("failed to decode list answer: %w", err)
		}
		items := make([]string, 0, len(elems))
		for _, elem := range elems {
			if elem.Type == bsontype.Null || elem.Type == bsontype.Undefined {
				continue
			}
			items = append(items, bsonText(elem))
		}
		*v = List(items...)
	case bsontype.Null, bsontype.Undefined:
		*v = Value{}
	default:
		*v = Text(bsonText(raw))
	}
	return nil
}

func bsonText(raw bson.RawValue) string {
	switch raw.Type {
	case bsontype.String:
		return raw.StringValue()
	case bsontype.Int32:
		return strconv.FormatInt(int64(raw.Int32()), 10)
	case bsontype.Int64:
		return strconv.FormatInt(raw.Int64(), 10)
	case bsontype.Double:
		return strconv.FormatFloat(raw.Double(), 'f', -1, 64)
	case bsontype.Decimal128:
		return raw.Decimal128().String()
	case bsontype.Boolean:
		return strconv.FormatBool(raw.Boolean())
	default:
		return raw.String()
	}
}

// Section is a node of the answer tree: answers keyed by field name plus
// nested sections keyed by section name. A field without a key is unanswered.
type Section struct {
	Values   map[string]Value
	Sections map[string]*Section
}

// NewSection returns an empty section ready for writes.
func NewSection() *Section {
	return &Section{
		Values:   map[string]Value{},
		Sections: map[string]*Section{},
	}
}

// Child returns the named nested section or nil.
func (s *Section) Child(name string) *Section {
	if s == nil || s.Sections == nil {
		return nil
	}
	return s.Sections[name]
}

// Get returns the answer at a dotted path such as "endereco.cep".
func (s *Section) Get(path string) (Value, bool) {
	if s == nil {
		return Value{}, false
	}
	parts := strings.Split(path, ".")
	node := s
	for _, part := range parts[:len(parts)-1] {
		node = node.Child(part)
		if node == nil {
			return Value{}, false
		}
	}
	if node.Values == nil {
		return Value{}, false
	}
	v, ok := node.Values[parts[len(parts)-1]]
	return v, ok
}

// Set stores an answer at a dotted path, creating intermediate sections.
func (s *Section) Set(path string, v Value) {
	parts := strings.Split(path, ".")
	node := s
	for _, part := range parts[:len(parts)-1] {
		if node.Sections == nil {
			node.Sections = map[string]*Section{}
		}
		child, ok := node.Sections[part]
		if !ok || child == nil {
			child = NewSection()
			node.Sections[part] = child
		}
		node = child
	}
	if node.Values == nil {
		node.Values = map[string]Value{}
	}
	node.Values[parts[len(parts)-1]] = v
}

// Clone returns a deep copy.
func (s *Section) Clone() *Section {
	if s == nil {
		return nil
	}
	out := NewSection()
	for k, v := range s.Values {
		if v.IsList {
			v.List = append([]string{}, v.List...)
		}
		out.Values[k] = v
	}
	for k, child := range s.Sections {
		out.Sections[k] = child.Clone()
	}
	return out
}

func (s Section) keys() []string {
	keys := make([]string, 0, len(s.Values)+len(s.Sections))
	for k := range s.Values {
		keys = append(keys, k)
	}
	for k := range s.Sections {
		if _, dup := s.Values[k]; !dup {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// MarshalJSON renders the tree as nested objects.
func (s Section) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(s.Values)+len(s.Sections))
	for k, v := range s.Values {
		out[k] = v
	}
	for k, child := range s.Sections {
		if child != nil {
			out[k] = child
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads nested objects as sections and everything else as answers.
func (s *Section) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = *NewSection()
	for k, msg := range raw {
		trimmed := strings.TrimSpace(string(msg))
		switch {
		case trimmed == "null":
			continue
		case strings.HasPrefix(trimmed, "{"):
			child := NewSection()
			if err := child.UnmarshalJSON(msg); err != nil {
				return fmt.Errorf("section %q: %w", k, err)
			}
			s.Sections[k] = child
		default:
			var v Value
			if err := v.UnmarshalJSON(msg); err != nil {
				return fmt.Errorf("field %q: %w", k, err)
			}
			s.Values[k] = v
		}
	}
	return nil
}

// MarshalBSON renders the tree as nested documents with sorted keys.
func (s Section) MarshalBSON() ([]byte, error) {
	doc := bson.D{}
	for _, k := range s.keys() {
		if v, ok := s.Values[k]; ok {
			doc = append(doc, bson.E{Key: k, Value: v})
			continue
		}
		if child := s.Sections[k]; child != nil {
			doc = append(doc, bson.E{Key: k, Value: child})
		}
	}
	return bson.Marshal(doc)
}

// UnmarshalBSON reads embedded documents as sections and the rest as answers.
func (s *Section) UnmarshalBSON(data []byte) error {
	elems, err := bson.Raw(data).Elements()
	if err != nil {
		return err
	}
	*s = *NewSection()
	for _, elem := range elems {
		key := elem.Key()
		val := elem.Value()
		switch val.Type {
		case bsontype.EmbeddedDocument:
			child := NewSection()
			if err := child.UnmarshalBSON(val.Value); err != nil {
				return fmt.Errorf("section %q: %w", key, err)
			}
			s.Sections[key] = child
		case bsontype.Null, bsontype.Undefined:
			continue
		default:
			var v Value
			if err := v.UnmarshalBSONValue(val.Type, val.Value); err != nil {
				return fmt.Errorf("field %q: %w", key, err)
			}
			s.Values[key] = v
		}
	}
	return nil
}
