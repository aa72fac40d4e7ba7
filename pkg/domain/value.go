package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// ValueKind identifies the variant held by a Value.
type ValueKind string

const (
	KindString ValueKind = "string"
	KindBool   ValueKind = "bool"
	KindList   ValueKind = "list"
	KindMap    ValueKind = "map"
)

// Value is a closed tagged union used by free-form bags such as Section.Advanced.
// The zero Value is "unset" and encodes as JSON null.
type Value struct {
	kind ValueKind
	str  string
	flag bool
	list []string
	dict map[string]string
}

// String creates a string Value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Bool creates a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }

// List creates a list-of-string Value.
func List(items ...string) Value {
	l := make([]string, len(items))
	copy(l, items)
	return Value{kind: KindList, list: l}
}

// Map creates a map-of-string Value.
func Map(m map[string]string) Value {
	d := make(map[string]string, len(m))
	maps.Copy(d, m)
	return Value{kind: KindMap, dict: d}
}

// Kind returns the variant, or "" for the zero Value.
func (v Value) Kind() ValueKind { return v.kind }

// IsZero reports whether the Value is unset.
func (v Value) IsZero() bool { return v.kind == "" }

// AsString returns the string payload if the Value holds one.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsBool returns the boolean payload if the Value holds one.
func (v Value) AsBool() (bool, bool) { return v.flag, v.kind == KindBool }

// AsList returns a copy of the list payload if the Value holds one.
func (v Value) AsList() ([]string, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return slices.Clone(v.list), true
}

// AsMap returns a copy of the map payload if the Value holds one.
func (v Value) AsMap() (map[string]string, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	return maps.Clone(v.dict), true
}

// Clone returns a deep copy.
func (v Value) Clone() Value {
	v.list = slices.Clone(v.list)
	v.dict = maps.Clone(v.dict)
	return v
}

// MarshalJSON encodes the payload without a type tag; the JSON shape is the tag.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindBool:
		return json.Marshal(v.flag)
	case KindList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	case KindMap:
		if v.dict == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(v.dict)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON infers the variant from the JSON shape.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("%w: empty input", ErrInvalidValue)
	}
	switch data[0] {
	case 'n':
		*v = Value{}
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		*v = String(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		*v = Bool(b)
	case '[':
		var l []string
		if err := json.Unmarshal(data, &l); err != nil {
			return fmt.Errorf("%w: list must contain strings: %v", ErrInvalidValue, err)
		}
		*v = Value{kind: KindList, list: l}
	case '{':
		var m map[string]string
		if err := json.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("%w: map must contain strings: %v", ErrInvalidValue, err)
		}
		*v = Value{kind: KindMap, dict: m}
	default:
		return fmt.Errorf("%w: unsupported JSON %q", ErrInvalidValue, string(data))
	}
	return nil
}

// cloneValues deep-copies a value bag, preserving nil.
func cloneValues(in map[string]Value) map[string]Value {
	if in == nil {
		return nil
	}
	out := make(map[string]Value, len(in))
	for k, v := range in {
		out[k] = v.Clone()
	}
	return out
}
