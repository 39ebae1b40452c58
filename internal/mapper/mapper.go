package mapper

import (
	"math"
	"strconv"
	"strings"

	"github.com/bunnyapp/bunny-cli/internal/importer"
	"github.com/bunnyapp/bunny-cli/internal/model"
)

// MatchMode controls how source column names are matched to attributes.
type MatchMode int

const (
	// MatchFold trims the column name and compares case-insensitively.
	MatchFold MatchMode = iota
	// MatchExact trims the column name and compares exactly.
	MatchExact
)

// FieldType is the declared type an attribute value is coerced to.
type FieldType int

const (
	TypeString FieldType = iota
	TypeBool
	TypeInt
)

// Schema is the attribute whitelist of one entity kind.
type Schema struct {
	mode  MatchMode
	types map[string]FieldType
	index map[string]string // normalized column -> attribute
}

// NewSchema builds a schema. Every name in bools and ints must also be in names.
func NewSchema(mode MatchMode, names, bools, ints []string) *Schema {
	s := &Schema{
		mode:  mode,
		types: make(map[string]FieldType, len(names)),
		index: make(map[string]string, len(names)),
	}
	for _, n := range names {
		s.types[n] = TypeString
		s.index[s.normalize(n)] = n
	}
	for _, n := range bools {
		if _, ok := s.types[n]; !ok {
			panic("boolean field not in whitelist: " + n)
		}
		s.types[n] = TypeBool
	}
	for _, n := range ints {
		if _, ok := s.types[n]; !ok {
			panic("integer field not in whitelist: " + n)
		}
		s.types[n] = TypeInt
	}
	return s
}

func (s *Schema) normalize(column string) string {
	c := strings.TrimSpace(column)
	if s.mode == MatchFold {
		c = strings.ToLower(c)
	}
	return c
}

// Lookup returns the attribute a source column maps to.
func (s *Schema) Lookup(column string) (string, bool) {
	name, ok := s.index[s.normalize(column)]
	return name, ok
}

// Allows reports whether name is a whitelisted attribute.
func (s *Schema) Allows(name string) bool {
	_, ok := s.types[name]
	return ok
}

// Record is a mapped row. Row is the 1-based position among data rows.
type Record struct {
	Row        int
	Attributes model.AttributeSet
}

// Map converts every row of t. Columns are visited in header order, so when
// two columns map to the same attribute the later one wins. Rows that map
// to no attributes are dropped.
func (s *Schema) Map(t *importer.Table) []Record {
	var out []Record
	for i, row := range t.Rows {
		attrs := s.MapRow(t.Header, row)
		if len(attrs) == 0 {
			continue
		}
		out = append(out, Record{Row: i + 1, Attributes: attrs})
	}
	return out
}

// MapRow maps one row, skipping unmapped columns and absent values.
func (s *Schema) MapRow(header []string, row importer.Row) model.AttributeSet {
	attrs := model.AttributeSet{}
	for _, col := range header {
		name, ok := s.Lookup(col)
		if !ok {
			continue
		}
		raw, ok := row.Get(col)
		if !ok {
			continue
		}
		if v, ok := s.coerce(name, raw); ok {
			attrs[name] = v
		}
	}
	return attrs
}

func (s *Schema) coerce(name, raw string) (any, bool) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil, false
	}
	switch s.types[name] {
	case TypeBool:
		return ParseBool(v), true
	case TypeInt:
		return ParseInt(v)
	default:
		return v, true
	}
}

// ParseBool is true only for "true" or "1", ignoring case and space.
func ParseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1":
		return true
	default:
		return false
	}
}

// ParseInt parses an integer after removing thousands separators.
// Decimal input is truncated; anything else is reported absent.
func ParseInt(v string) (int64, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return int64(f), true
	}
	return 0, false
}
