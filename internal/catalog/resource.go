// ABOUTME: Resource model decoded from the catalog API
// ABOUTME: Accepts numeric or string ids and a null description or price

package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrEmptyID is returned when an operation needs a resource id and got none.
var ErrEmptyID = errors.New("empty item id")

// Resource is one catalog item.
type Resource struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
}

// UnmarshalJSON accepts the server's integer ids and null descriptions.
func (r *Resource) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID          json.RawMessage `json:"id"`
		Name        string          `json:"name"`
		Description *string         `json:"description"`
		Price       *float64        `json:"price"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	id, err := decodeID(raw.ID)
	if err != nil {
		return err
	}

	*r = Resource{ID: id, Name: raw.Name, Price: raw.Price}
	if raw.Description != nil {
		r.Description = *raw.Description
	}
	return nil
}

func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("decoding id: %w", err)
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("decoding id: %w", err)
	}
	return n.String(), nil
}

// Clone returns a deep copy of r.
func (r Resource) Clone() Resource {
	if r.Price != nil {
		p := *r.Price
		r.Price = &p
	}
	return r
}

// CloneAll deep-copies a slice of resources.
func CloneAll(items []Resource) []Resource {
	if items == nil {
		return nil
	}
	out := make([]Resource, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}
