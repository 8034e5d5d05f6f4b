package dto

import "encoding/json"

// Optional distinguishes an absent JSON member from an explicit null in PATCH bodies.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// UnmarshalJSON is only invoked when the member is present.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// Ptr returns the value when one was sent, nil for absent or null.
func (o Optional[T]) Ptr() *T {
	if !o.Set || o.Null {
		return nil
	}
	v := o.Value
	return &v
}

// Cleared reports an explicit null.
func (o Optional[T]) Cleared() bool {
	return o.Set && o.Null
}
