package model

import "sort"

// AttributeSet maps whitelisted attribute names to coerced values
// (string, int64 or bool).
type AttributeSet map[string]any

// String returns the string value of key, or "".
func (a AttributeSet) String(key string) string {
	s, _ := a[key].(string)
	return s
}

// Has reports whether key is present.
func (a AttributeSet) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// Keys returns the attribute names in sorted order.
func (a AttributeSet) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
