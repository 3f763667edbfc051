// File: /services/pk.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"motoroutes-api/errs"
)

// PKValue is a foreign-key reference as it arrived: absent, null, an integer id,
// or some other value that typed validation will reject.
type PKValue struct {
	Set  bool
	Null bool
	ID   uint
	Raw  interface{}
}

func (p *PKValue) UnmarshalJSON(data []byte) error {
	p.Set = true
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		p.Null = true
		return nil
	}

	var value interface{}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&value); err != nil {
		return err
	}
	*p = PKFromValue(value)
	return nil
}

// PKFromValue builds a reference from an already decoded or normalized value.
// Integer strings such as "7" are accepted as ids.
func PKFromValue(value interface{}) PKValue {
	switch v := value.(type) {
	case nil:
		return PKValue{Set: true, Null: true}
	case int:
		return pkFromInt(int64(v), value)
	case int64:
		return pkFromInt(v, value)
	case uint:
		return PKValue{Set: true, ID: v, Raw: value}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return pkFromInt(n, value)
		}
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return pkFromInt(n, value)
		}
		if f, err := v.Float64(); err == nil && f == math.Trunc(f) {
			return pkFromInt(int64(f), value)
		}
	}
	return PKValue{Set: true, Raw: value}
}

func pkFromInt(n int64, raw interface{}) PKValue {
	if n <= 0 {
		// Never matches a row; kept so the existence check reports it.
		return PKValue{Set: true, Raw: raw}
	}
	return PKValue{Set: true, ID: uint(n), Raw: raw}
}

// Ptr returns the referenced id, or nil for absent and null references.
func (p PKValue) Ptr() *uint {
	if !p.Set || p.Null || p.ID == 0 {
		return nil
	}
	id := p.ID
	return &id
}

// TypeError is the message for a value that is not a primary key at all, or "".
func (p PKValue) TypeError() string {
	if !p.Set || p.Null || p.ID != 0 {
		return ""
	}
	switch raw := p.Raw.(type) {
	case json.Number, int, int64, uint:
		return ""
	case string:
		if _, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64); err == nil {
			return ""
		}
	}
	return fmt.Sprintf("Incorrect type. Expected pk value, received %s.", valueKind(p.Raw))
}

// MissingError is the message for a well-typed id with no matching row.
func (p PKValue) MissingError() string {
	return fmt.Sprintf("Invalid pk \"%s\" - object does not exist.", p.display())
}

func (p PKValue) display() string {
	switch v := p.Raw.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	}
	return strconv.FormatUint(uint64(p.ID), 10)
}

func valueKind(value interface{}) string {
	switch value.(type) {
	case string:
		return "str"
	case bool:
		return "bool"
	case []interface{}:
		return "list"
	case map[string]interface{}:
		return "dict"
	case json.Number, float64:
		return "float"
	default:
		return strings.ToLower(fmt.Sprintf("%T", value))
	}
}

// checkPK records a field error when pk is set but is not an id of an existing row.
func checkPK(ctx context.Context, fields errs.FieldErrors, name string, pk PKValue, exists func(context.Context, uint) (bool, error)) error {
	if !pk.Set || pk.Null {
		return nil
	}
	if msg := pk.TypeError(); msg != "" {
		fields.Add(name, msg)
		return nil
	}
	if pk.ID == 0 {
		fields.Add(name, pk.MissingError())
		return nil
	}

	ok, err := exists(ctx, pk.ID)
	if err != nil {
		return err
	}
	if !ok {
		fields.Add(name, pk.MissingError())
	}
	return nil
}
