package platform

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// The client reports failures as one of three error types:
//
//   - *TransportError: the request never produced a GraphQL response
//     (network failure, OAuth rejection, non-2xx status).
//   - GraphQLErrors: the response carried a top-level errors array.
//   - PayloadErrors: the mutation payload carried business-rule errors.

// TransportError is a failed HTTP exchange. Which fields are set depends on
// what the server sent back: nothing, a bare string, or a JSON object.
type TransportError struct {
	StatusCode  int
	Exception   string         // server exception name on 500s
	Description string         // bare-string body or OAuth error_description
	Body        map[string]any // decoded JSON object body
	Err         error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode == http.StatusInternalServerError:
		exc := e.Exception
		if exc == "" {
			exc = "unknown server error"
		}
		return "Internal Server Error: " + exc
	case e.Description != "":
		return e.Description
	case e.Body != nil:
		if msg, ok := e.Body["message"].(string); ok && msg != "" {
			return msg
		}
		data, _ := json.Marshal(e.Body)
		return string(data)
	case e.Err != nil:
		return e.Err.Error()
	case e.StatusCode != 0:
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	default:
		return "Unknown error"
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// Empty reports whether the failure carried no detail at all.
func (e *TransportError) Empty() bool {
	return e.StatusCode == 0 && e.Exception == "" && e.Description == "" && e.Body == nil && e.Err == nil
}

// GraphQLError is one entry of a response's errors array.
type GraphQLError struct {
	Message string         `json:"message"`
	Path    []any          `json:"path,omitempty"`
	Raw     map[string]any `json:"-"`
}

func (e *GraphQLError) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		e.Message = s
		return nil
	}
	e.Raw = raw
	e.Message, _ = raw["message"].(string)
	if p, ok := raw["path"].([]any); ok {
		e.Path = p
	}
	return nil
}

func (e GraphQLError) text() string {
	if e.Message != "" {
		return e.Message
	}
	data, _ := json.Marshal(e.Raw)
	return string(data)
}

// GraphQLErrors is a non-empty top-level errors array.
type GraphQLErrors []GraphQLError

func (e GraphQLErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ge := range e {
		msgs[i] = ge.text()
	}
	return "GraphQL errors: " + strings.Join(msgs, ", ")
}

// PayloadErrors are the errors a mutation payload reports. The server
// sends either a list of strings or a single string.
type PayloadErrors []string

func (e PayloadErrors) Error() string {
	return "Import errors: " + strings.Join(e, ", ")
}

func (e *PayloadErrors) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*e = list
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "" {
			*e = PayloadErrors{s}
		}
		return nil
	}
	var items []any
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("decoding payload errors: %w", err)
	}
	for _, v := range items {
		b, _ := json.Marshal(v)
		*e = append(*e, string(b))
	}
	return nil
}

// MissingPayloadError means the response had no payload for a mutation.
type MissingPayloadError struct {
	Field string
}

func (e MissingPayloadError) Error() string {
	return fmt.Sprintf("Invalid response from server - no %s data", e.Field)
}

// ImportFailedError is a productImport response with status "failed".
type ImportFailedError struct {
	Message string
}

func (e ImportFailedError) Error() string {
	if e.Message == "" {
		return "product import failed"
	}
	return e.Message
}
