package handler

import "encoding/json"

// jsonOptional distinguishes an absent JSON field from one explicitly set to
// null, so PATCH-style updates can clear a value.
type jsonOptional[T any] struct {
	Value *T
	Set   bool
}

func (o *jsonOptional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}
