package utils

import (
	"encoding/json"
	"reflect"
	"strings"
)

// Optional distinguishes an absent JSON field from an explicit null.
// Numeric values may also arrive as strings, e.g. "49.5" or "2020".
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Null = true
		return nil
	}

	err := json.Unmarshal(data, &o.Value)
	if err == nil || len(data) == 0 || data[0] != '"' || !isNumeric[T]() {
		return err
	}

	var text string
	if json.Unmarshal(data, &text) != nil {
		return err
	}
	text = strings.TrimSpace(text)
	if text == "" || text[0] == '"' || json.Unmarshal([]byte(text), &o.Value) != nil {
		return err
	}
	return nil
}

func isNumeric[T any]() bool {
	switch reflect.TypeOf((*T)(nil)).Elem().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// Ptr returns nil for an absent or null value.
func (o Optional[T]) Ptr() *T {
	if !o.Set || o.Null {
		return nil
	}
	v := o.Value
	return &v
}

// Some builds a set, non-null Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// Null builds an explicit null Optional.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}
