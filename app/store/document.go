package store

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/pkg/errors"
)

// reserved document fields, always set by the processor
const (
	FieldObjectID    = "objectID"
	FieldContentType = "ContentTypeName"
	FieldItemGUID    = "ItemGuid"
	FieldLanguage    = "LanguageName"
	FieldURL         = "Url"
)

// Value is a closed union of document field values:
// String, Number, Bool, Array and *Document
type Value interface {
	isValue()
}

// String field value
type String string

// Number field value
type Number float64

// Bool field value
type Bool bool

// Array field value
type Array []Value

func (String) isValue()    {}
func (Number) isValue()    {}
func (Bool) isValue()      {}
func (Array) isValue()     {}
func (*Document) isValue() {}

// Document is a search document with ordered fields.
// Any strategy can add any field, the order of first insertion is kept on encoding.
type Document struct {
	keys   []string
	values map[string]Value
}

// NewDocument makes empty document
func NewDocument() *Document {
	return &Document{values: map[string]Value{}}
}

// Set adds or replaces field value, replaced field keeps its position
func (d *Document) Set(key string, val Value) *Document {
	if d.values == nil {
		d.values = map[string]Value{}
	}
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = val
	return d
}

// Get returns field value
func (d *Document) Get(key string) (Value, bool) {
	if d == nil {
		return nil, false
	}
	v, ok := d.values[key]
	return v, ok
}

// GetString returns field value if it is a string
func (d *Document) GetString(key string) (string, bool) {
	v, ok := d.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(String)
	return string(s), ok
}

// Has checks if field is set
func (d *Document) Has(key string) bool {
	_, ok := d.Get(key)
	return ok
}

// Keys returns field names in insertion order
func (d *Document) Keys() []string {
	if d == nil {
		return nil
	}
	return append([]string(nil), d.keys...)
}

// Len returns number of fields
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.keys)
}

// Map converts document to plain map, used by engines which walk documents with reflection
func (d *Document) Map() map[string]interface{} {
	if d == nil {
		return nil
	}
	res := make(map[string]interface{}, len(d.keys))
	for _, k := range d.keys {
		res[k] = plainValue(d.values[k])
	}
	return res
}

func plainValue(v Value) interface{} {
	switch val := v.(type) {
	case String:
		return string(val)
	case Number:
		return float64(val)
	case Bool:
		return bool(val)
	case Array:
		res := make([]interface{}, 0, len(val))
		for _, e := range val {
			res = append(res, plainValue(e))
		}
		return res
	case *Document:
		return val.Map()
	}
	return nil
}

// MarshalJSON encodes document as JSON object with fields in insertion order
func (d *Document) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}
	buf := bytes.Buffer{}
	buf.WriteByte('{')
	for i, k := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if err := writeValue(&buf, d.values[k]); err != nil {
			return nil, errors.Wrapf(err, "can't encode field %q", k)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeValue(buf *bytes.Buffer, v Value) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
		return nil
	case Number:
		if math.IsNaN(float64(val)) || math.IsInf(float64(val), 0) {
			return errors.Errorf("unsupported number %v", float64(val))
		}
	case Array:
		buf.WriteByte('[')
		for i, e := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case *Document:
		data, err := val.MarshalJSON()
		if err != nil {
			return err
		}
		buf.Write(data)
		return nil
	}
	data, err := json.Marshal(plainValue(v))
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}
