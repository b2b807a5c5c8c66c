package dto

import (
	"bytes"
	"encoding/json"
)

// OptionalString tells an absent JSON key apart from an explicit null.
type OptionalString struct {
	Set   bool
	Valid bool // false when the key was sent as null
	Value string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Valid = false
		o.Value = ""
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

// Some builds a present, non-null value.
func Some(v string) OptionalString {
	return OptionalString{Set: true, Valid: true, Value: v}
}

// Null builds a present, null value.
func Null() OptionalString {
	return OptionalString{Set: true}
}
