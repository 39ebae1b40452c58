package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/bunnyapp/bunny-cli/internal/model"
)

var validate = validator.New()

// Document is a parsed product import file.
type Document struct {
	Products []Product
}

// Product pairs the typed view used for validation with the product exactly
// as it was written, which is what gets submitted.
type Product struct {
	model.Product
	Raw json.RawMessage
}

// ParseDocument decodes and validates a product import document.
func ParseDocument(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading products document: %w", err)
	}

	var raw struct {
		Products []json.RawMessage `json:"products"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding products document: %w", err)
	}
	var typed model.ImportDocument
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&typed); err != nil {
		return nil, fmt.Errorf("decoding products document: %w", err)
	}
	if err := validate.Struct(typed); err != nil {
		return nil, fmt.Errorf("invalid products document: %w", err)
	}

	doc := &Document{Products: make([]Product, len(typed.Products))}
	for i, p := range typed.Products {
		doc.Products[i] = Product{Product: p, Raw: raw.Products[i]}
	}
	return doc, nil
}

// ReadDocument parses the product import document at path.
func ReadDocument(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return ParseDocument(f)
}
