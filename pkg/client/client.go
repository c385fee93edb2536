// Package client is a typed Go client for the Algoritmia JSON API, plus the
// list and form controllers front ends build on it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"algoritmia_backend/pkg/validation"

	"github.com/pkg/errors"
)

const defaultTimeout = 30 * time.Second

// APIError is a non-2xx answer. Fields is set for validation failures.
type APIError struct {
	Status  int
	Message string
	Fields  []validation.FieldError
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Error)
	}
	return fmt.Sprintf("api error %d: %s (%s)", e.Status, e.Message, strings.Join(parts, "; "))
}

// Page is one page of a listing endpoint.
type Page[T any] struct {
	Items []T
	Total int64
	Page  int
	Limit int
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Total   int64           `json:"total"`
	Page    int             `json:"page"`
	Limit   int             `json:"limit"`
}

type Client struct {
	BaseURL string
	HTTP    *http.Client

	mu    sync.RWMutex
	token string
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: defaultTimeout},
	}
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Login exchanges credentials for a token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var res struct {
		Token string `json:"token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.Post(ctx, "/api/auth/login", body, &res); err != nil {
		return err
	}
	c.SetToken(res.Token)
	return nil
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	_, err := c.do(ctx, http.MethodGet, path, query, nil, out)
	return err
}

func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	_, err := c.do(ctx, http.MethodPost, path, nil, body, out)
	return err
}

func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	_, err := c.do(ctx, http.MethodPut, path, nil, body, out)
	return err
}

func (c *Client) Patch(ctx context.Context, path string, body, out interface{}) error {
	_, err := c.do(ctx, http.MethodPatch, path, nil, body, out)
	return err
}

func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.do(ctx, http.MethodDelete, path, nil, nil, nil)
	return err
}

// List fetches one page of a listing endpoint.
func List[T any](ctx context.Context, c *Client, path string, q Query) (*Page[T], error) {
	items := []T{}
	env, err := c.do(ctx, http.MethodGet, path, q.Values(), nil, &items)
	if err != nil {
		return nil, err
	}
	return &Page[T]{Items: items, Total: env.Total, Page: env.Page, Limit: env.Limit}, nil
}

// do sends the request and decodes the data member of the envelope into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) (*envelope, error) {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "encode request")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return &envelope{Code: resp.StatusCode}, nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			if resp.StatusCode >= http.StatusBadRequest {
				return nil, &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
			}
			return nil, errors.Wrap(err, "decode response")
		}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode, Message: env.Message}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		var details struct {
			Fields []validation.FieldError `json:"fields"`
		}
		if len(env.Data) > 0 && json.Unmarshal(env.Data, &details) == nil {
			apiErr.Fields = details.Fields
		}
		return nil, apiErr
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, errors.Wrap(err, "decode data")
		}
	}
	return &env, nil
}

// Query is the state of a listing request.
type Query struct {
	Page    int
	Limit   int
	Sort    string
	Order   string
	Search  string
	Filters map[string][]string
}

// Values encodes q. Zero fields and empty filter values are left out.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Order != "" {
		v.Set("order", q.Order)
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		v.Set("search", s)
	}
	for key, values := range q.Filters {
		for _, value := range values {
			if value != "" {
				v.Add(key, value)
			}
		}
	}
	return v
}

func (q Query) clone() Query {
	out := q
	if q.Filters != nil {
		out.Filters = make(map[string][]string, len(q.Filters))
		for k, v := range q.Filters {
			out.Filters[k] = append([]string(nil), v...)
		}
	}
	return out
}
