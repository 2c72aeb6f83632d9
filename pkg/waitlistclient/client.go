// Package waitlistclient is the Go counterpart of the landing-page waitlist
// form: a typed client for the public waitlist API plus a Form that mirrors
// the server's validation rules and submission states.
package waitlistclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultRequestTimeout = 15 * time.Second

// Submission is the payload for joining the waitlist. The validate tags
// mirror the server's binding rules; the server always re-validates.
type Submission struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	UserType string `json:"userType" validate:"required,oneof=renter landlord"`
}

type JoinResult struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

type Entry struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	UserType  string `json:"userType"`
	CreatedAt string `json:"createdAt"`
}

type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is a non-2xx response from the waitlist API.
type APIError struct {
	StatusCode int
	Message    string
	Violations []FieldViolation
}

func (e *APIError) Error() string {
	if len(e.Violations) == 0 {
		return fmt.Sprintf("waitlist api: %d: %s", e.StatusCode, e.Message)
	}

	fields := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		fields = append(fields, v.Field)
	}
	return fmt.Sprintf("waitlist api: %d: %s (%s)", e.StatusCode, e.Message, strings.Join(fields, ", "))
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient points at a server base URL such as "https://hutmuts.com". A nil
// httpClient gets a default with a bounded timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Join submits an entry. Rejections come back as *APIError.
func (c *Client) Join(ctx context.Context, sub Submission) (*JoinResult, error) {
	body, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("encode submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/waitlist", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, decodeAPIError(resp)
	}

	var result JoinResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &result, nil
}

// List fetches every waitlist entry.
func (c *Client) List(ctx context.Context) ([]Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/waitlist", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}

	var entries []Entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return entries, nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var envelope struct {
		Error   string           `json:"error"`
		Details []FieldViolation `json:"details"`
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err == nil && json.Unmarshal(raw, &envelope) == nil && envelope.Error != "" {
		apiErr.Message = envelope.Error
		apiErr.Violations = envelope.Details
		return apiErr
	}

	apiErr.Message = http.StatusText(resp.StatusCode)
	return apiErr
}
