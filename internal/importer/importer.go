package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Row is one source record keyed by the verbatim column header.
// Columns missing from a short row are absent, not empty.
type Row map[string]string

// Get returns the raw value for key and whether the column was present.
func (r Row) Get(key string) (string, bool) {
	v, ok := r[key]
	return v, ok
}

// Value returns the raw value for key, or "".
func (r Row) Value(key string) string {
	return r[key]
}

// Trimmed returns the value for key with surrounding space removed.
func (r Row) Trimmed(key string) string {
	return strings.TrimSpace(r[key])
}

// Table is a parsed tabular source.
type Table struct {
	Header []string
	Rows   []Row
}

// Record returns row's values in header order, "" for absent columns.
func (t *Table) Record(row Row) []string {
	rec := make([]string, len(t.Header))
	for i, h := range t.Header {
		rec[i] = row[h]
	}
	return rec
}

// Parser converts a tabular stream into a Table.
type Parser interface {
	Parse(r io.Reader) (*Table, error)
	Format() string
}

// Registry holds parsers keyed by format (file extension without dot).
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// ForPath returns the parser matching path's extension.
func (r *Registry) ForPath(path string) (Parser, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	p := r.Get(ext)
	if p == nil {
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
	return p, nil
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&CSVParser{})
	r.Register(&CSVParser{Comma: '\t', Name: "tsv"})
	return r
}

// ReadFile parses the file at path with the parser registered for its extension.
func (r *Registry) ReadFile(path string) (*Table, error) {
	p, err := r.ForPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	t, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return t, nil
}

// CountFile counts the data rows of the file at path with a separate read,
// independent of any earlier parse.
func (r *Registry) CountFile(path string) (int, error) {
	p, err := r.ForPath(path)
	if err != nil {
		return 0, err
	}
	c, ok := p.(*CSVParser)
	if !ok {
		t, err := r.ReadFile(path)
		if err != nil {
			return 0, err
		}
		return len(t.Rows), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return c.Count(f)
}
