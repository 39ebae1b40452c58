// Package platform talks to a billing platform instance over GraphQL.
package platform

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Options configures a Client.
type Options struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Scopes       []string
	Timeout      time.Duration
	// Insecure skips TLS verification, for self-hosted instances with
	// self-signed certificates.
	Insecure bool
	Log      zerolog.Logger
}

// Client sends GraphQL documents with an OAuth2 client-credentials token.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// New builds a Client. Tokens are fetched lazily from <base>/oauth/token.
func New(ctx context.Context, opts Options) *Client {
	base := &http.Client{Timeout: opts.Timeout}
	if opts.Insecure {
		base.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // opt-in via --unsafe
		}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")

	cc := clientcredentials.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		TokenURL:     baseURL + "/oauth/token",
		Scopes:       opts.Scopes,
	}
	hc := cc.Client(context.WithValue(ctx, oauth2.HTTPClient, base))
	hc.Timeout = opts.Timeout

	return &Client{baseURL: baseURL, http: hc, log: opts.Log}
}

// BaseURL returns the instance URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type request struct {
	Query     string `json:"query"`
	Variables any    `json:"variables,omitempty"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors GraphQLErrors   `json:"errors"`
}

// Query posts document to <base>/graphql. It returns the raw data object,
// or an error that is a *TransportError or GraphQLErrors.
func (c *Client) Query(ctx context.Context, document string, variables any) (json.RawMessage, error) {
	body, err := json.Marshal(request{Query: document, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/graphql", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportFailure(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: err}
	}
	c.log.Debug().Int("status", resp.StatusCode).RawJSON("body", jsonOrString(raw)).Msg("graphql response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusFailure(resp.StatusCode, raw)
	}

	var r response
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Description: strings.TrimSpace(string(raw)), Err: err}
	}
	if len(r.Errors) > 0 {
		return r.Data, r.Errors
	}
	return r.Data, nil
}

// transportFailure classifies an error from http.Client.Do.
func transportFailure(err error) *TransportError {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		te := &TransportError{Err: err}
		if re.Response != nil {
			te.StatusCode = re.Response.StatusCode
		}
		switch {
		case re.ErrorDescription != "":
			te.Description = re.ErrorDescription
		case re.ErrorCode != "":
			te.Description = re.ErrorCode
		default:
			te.Description = strings.TrimSpace(string(re.Body))
		}
		return te
	}
	return &TransportError{Err: err}
}

// statusFailure classifies a non-2xx response body.
func statusFailure(status int, raw []byte) *TransportError {
	te := &TransportError{StatusCode: status}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return te
	}
	var obj map[string]any
	if err := json.Unmarshal(trimmed, &obj); err == nil {
		te.Body = obj
		te.Exception, _ = obj["exception"].(string)
		return te
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		te.Description = s
		return te
	}
	te.Description = string(trimmed)
	return te
}

func jsonOrString(raw []byte) []byte {
	if json.Valid(raw) {
		return raw
	}
	b, _ := json.Marshal(string(raw))
	return b
}

// decodeField unmarshals data[field] into dst and reports whether the
// field was present and non-null.
func decodeField(data json.RawMessage, field string, dst any) (bool, error) {
	if len(data) == 0 {
		return false, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return false, fmt.Errorf("decoding response data: %w", err)
	}
	v, ok := fields[field]
	if !ok || string(v) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(v, dst); err != nil {
		return false, fmt.Errorf("decoding %s: %w", field, err)
	}
	return true, nil
}
