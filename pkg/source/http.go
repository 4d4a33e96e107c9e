package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
)

// ErrNotFound signals that no data exists yet for a form id. Callers usually
// treat it as "start from defaults" rather than a failure.
var ErrNotFound = errors.New("source: form data not found")

// HTTPOption customises the HTTP data source.
type HTTPOption func(*HTTPSource)

// WithClient injects the HTTP client used for requests.
func WithClient(client *http.Client) HTTPOption {
	return func(s *HTTPSource) {
		if client != nil {
			s.client = client
		}
	}
}

// WithHeader attaches a header to every request, e.g. authorization.
func WithHeader(name, value string) HTTPOption {
	return func(s *HTTPSource) {
		s.headers[name] = value
	}
}

// HTTPSource reads and writes form data over HTTP: GET and PUT against
// {base}/forms/{id}/data with JSON bodies.
type HTTPSource struct {
	base    string
	client  *http.Client
	headers map[string]string
}

// NewHTTPSource constructs a source rooted at baseURL.
func NewHTTPSource(baseURL string, options ...HTTPOption) (*HTTPSource, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errors.New("source: base url is required")
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("source: parse base url: %w", err)
	}
	s := &HTTPSource{
		base:    trimmed,
		client:  http.DefaultClient,
		headers: make(map[string]string),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s, nil
}

// Load fetches the stored data for a form id. A 404 maps to ErrNotFound.
func (s *HTTPSource) Load(ctx context.Context, formID string) (map[string]any, error) {
	req, err := s.newRequest(ctx, http.MethodGet, formID, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("source: load form %q: %w", formID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("source: load form %q: %w", formID, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("source: load form %q: unexpected status %s", formID, resp.Status)
	}

	return decodeBody(resp.Body)
}

// Save writes the payload for a form id and returns the server-normalized
// copy from the response body.
func (s *HTTPSource) Save(ctx context.Context, formID string, data map[string]any) (map[string]any, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("source: encode form %q: %w", formID, err)
	}

	req, err := s.newRequest(ctx, http.MethodPut, formID, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("source: save form %q: %w", formID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("source: save form %q: unexpected status %s", formID, resp.Status)
	}

	return decodeBody(resp.Body)
}

func (s *HTTPSource) newRequest(ctx context.Context, method, formID string, body io.Reader) (*http.Request, error) {
	if ctx == nil {
		return nil, errors.New("source: context is required")
	}
	endpoint := fmt.Sprintf("%s/forms/%s/data", s.base, url.PathEscape(formID))
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("source: build request: %w", err)
	}
	for name, value := range s.headers {
		req.Header.Set(name, value)
	}
	return req, nil
}

func decodeBody(body io.Reader) (map[string]any, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("source: read response: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("source: decode response: %w", err)
	}
	return data, nil
}
