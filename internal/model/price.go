package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// UnmarshalJSON accepts price as a string or a bare number.
func (c *Charge) UnmarshalJSON(b []byte) error {
	type plain Charge
	aux := struct {
		*plain
		Price json.RawMessage `json:"price"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	p, err := decodePrice(aux.Price)
	if err != nil {
		return fmt.Errorf("charge %s: %w", c.Code, err)
	}
	c.Price = p
	return nil
}

// UnmarshalJSON accepts price as a string or a bare number.
func (t *PriceTier) UnmarshalJSON(b []byte) error {
	type plain PriceTier
	aux := struct {
		*plain
		Price json.RawMessage `json:"price"`
	}{plain: (*plain)(t)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	p, err := decodePrice(aux.Price)
	if err != nil {
		return fmt.Errorf("tier starting at %d: %w", t.Starts, err)
	}
	t.Price = p
	return nil
}

func decodePrice(raw json.RawMessage) (*string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return &s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("price must be a string or a number: %w", err)
	}
	s := n.String()
	return &s, nil
}
