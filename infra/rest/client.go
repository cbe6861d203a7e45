// Package rest implements the backend client over the schedule service's
// HTTP API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pcouderc/worksched/core/backend"
	"github.com/pcouderc/worksched/core/model"
)

// Config holds connection settings for the schedule service.
type Config struct {
	BaseURL string `json:"base_url" yaml:"base_url"`
	Token   string `json:"token" yaml:"token"`
	Timeout string `json:"timeout" yaml:"timeout"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Timeout == "" {
		c.Timeout = "15s"
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("rest: base_url is required")
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("rest: invalid base_url: %w", err)
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("rest: invalid timeout: %w", err)
	}
	return nil
}

// Client talks to the schedule service. It is safe for concurrent use.
type Client struct {
	base  string
	token string
	http  *http.Client
}

var _ backend.Client = (*Client)(nil)

// NewClient builds a Client from the given configuration.
func NewClient(cfg Config) (*Client, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	timeout, _ := time.ParseDuration(cfg.Timeout)
	return &Client{
		base:  cfg.BaseURL,
		token: cfg.Token,
		http:  &http.Client{Timeout: timeout},
	}, nil
}

// APIError is a non-2xx response from the schedule service.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("schedule service returned %d: %s", e.StatusCode, e.Body)
}

func scopeQuery(scope model.Scope) url.Values {
	q := url.Values{}
	q.Set("projectId", scope.ProjectID)
	if scope.ContractID != "" {
		q.Set("contractId", scope.ContractID)
	}
	if scope.SOWID != "" {
		q.Set("sowId", scope.SOWID)
	}
	if scope.ProcessID != "" {
		q.Set("processId", scope.ProcessID)
	}
	return q
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(raw))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// ListAllocations fetches every allocation in scope.
func (c *Client) ListAllocations(ctx context.Context, scope model.Scope) ([]model.Allocation, error) {
	var out []model.Allocation
	if err := c.do(ctx, http.MethodGet, "/allocations", scopeQuery(scope), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAllocation creates an allocation and returns the server's copy,
// including its assigned id.
func (c *Client) CreateAllocation(ctx context.Context, scope model.Scope, payload model.AllocationCreate) (model.Allocation, error) {
	var out model.Allocation
	if err := c.do(ctx, http.MethodPost, "/allocations", scopeQuery(scope), payload, &out); err != nil {
		return model.Allocation{}, err
	}
	return out, nil
}

// UpdateAllocation patches a single allocation and returns the updated copy.
func (c *Client) UpdateAllocation(ctx context.Context, id string, patch model.AllocationPatch) (model.Allocation, error) {
	var out model.Allocation
	if err := c.do(ctx, http.MethodPatch, "/allocations/"+url.PathEscape(id), nil, patch, &out); err != nil {
		return model.Allocation{}, err
	}
	return out, nil
}

// DeleteAllocation removes an allocation.
func (c *Client) DeleteAllocation(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/allocations/"+url.PathEscape(id), nil, nil, nil)
}

// ListConflicts fetches the scope's conflicts.
func (c *Client) ListConflicts(ctx context.Context, scope model.Scope) ([]model.Conflict, error) {
	var out []model.Conflict
	if err := c.do(ctx, http.MethodGet, "/conflicts", scopeQuery(scope), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CriticalPath fetches the ids of allocations on the critical path.
func (c *Client) CriticalPath(ctx context.Context, scope model.Scope) ([]string, error) {
	var out []string
	if err := c.do(ctx, http.MethodGet, "/critical-path", scopeQuery(scope), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
