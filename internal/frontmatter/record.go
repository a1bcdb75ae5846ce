// Package frontmatter reads and writes the section metadata block that
// precedes a markdown body.
//
// The block is a constrained YAML subset: scalar "key: value" lines and one
// list shape of label/value pairs. It is parsed line by line on purpose;
// arbitrary YAML is not supported.
package frontmatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Reserved keys present in every decoded record.
const (
	KeyOrder = "order"
	KeyTitle = "title"
)

// MetaKey is the key the site uses for its label/value sidebar list.
const MetaKey = "sidebar_meta"

// MetaItem is one entry of a label/value list.
type MetaItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Record is an ordered mapping of frontmatter keys to values. A value is a
// string, an int, or a []MetaItem.
//
// The zero value is an empty record ready to use.
type Record struct {
	keys   []string
	values map[string]any
}

// Len returns the number of keys.
func (r Record) Len() int { return len(r.keys) }

// Keys returns the keys in insertion order.
func (r Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Get returns the value stored under key.
func (r Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Set stores v under key. New keys are appended; existing keys keep their
// position.
func (r *Record) Set(key string, v any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

// Delete removes key.
func (r *Record) Delete(key string) {
	if _, ok := r.values[key]; !ok {
		return
	}
	delete(r.values, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i:i], r.keys[i+1:]...)
			break
		}
	}
}

// String returns the string value under key, or "" when the key is missing or
// holds another type.
func (r Record) String(key string) string {
	s, _ := r.values[key].(string)
	return s
}

// Int returns the int value under key and whether it was an int.
func (r Record) Int(key string) (int, bool) {
	n, ok := r.values[key].(int)
	return n, ok
}

// Meta returns the label/value list under key.
func (r Record) Meta(key string) []MetaItem {
	items, _ := r.values[key].([]MetaItem)
	return items
}

// Order returns the section order.
func (r Record) Order() int {
	n, _ := r.Int(KeyOrder)
	return n
}

// Title returns the section title.
func (r Record) Title() string {
	return r.String(KeyTitle)
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	var out Record
	for _, k := range r.keys {
		v := r.values[k]
		if items, ok := v.([]MetaItem); ok {
			v = append([]MetaItem{}, items...)
		}
		out.Set(k, v)
	}
	return out
}

// Equal reports whether r and o hold the same keys and values. Key order is
// not compared.
func (r Record) Equal(o Record) bool {
	if len(r.keys) != len(o.keys) {
		return false
	}
	for k, v := range r.values {
		ov, ok := o.values[k]
		if !ok || !equalValue(v, ov) {
			return false
		}
	}
	return true
}

func equalValue(a, b any) bool {
	switch av := a.(type) {
	case []MetaItem:
		bv, ok := b.([]MetaItem)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// MarshalJSON encodes the record as a JSON object preserving key order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, fmt.Errorf("frontmatter: marshal %s: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// WithReserved returns a copy of r whose first two keys are order (an int,
// default 0) and title (a string, default ""), followed by the remaining keys
// of r in their original order.
func WithReserved(r Record) Record {
	var out Record

	order := 0
	switch v := r.values[KeyOrder].(type) {
	case int:
		order = v
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			order = n
		}
	}
	out.Set(KeyOrder, order)

	title := ""
	switch v := r.values[KeyTitle].(type) {
	case string:
		title = v
	case int:
		title = strconv.Itoa(v)
	}
	out.Set(KeyTitle, title)

	for _, k := range r.keys {
		if k == KeyOrder || k == KeyTitle {
			continue
		}
		out.Set(k, r.values[k])
	}
	return out
}
