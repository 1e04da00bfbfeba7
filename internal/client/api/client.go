// Package api implements the remote user store over the userdesk REST API.
package api

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
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/userdesk/internal/client/models"
)

const (
	usersPath       = "/api/users"
	requestIDHeader = "X-Request-Id"
	maxErrorBody    = 4 << 10
)

// Client talks to the users endpoints of a userdesk server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New builds a Client for baseURL. A zero timeout leaves requests bounded
// only by their context.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("api: parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api: base url %q must be absolute", baseURL)
	}
	return &Client{
		baseURL:    strings.TrimRight(u.String(), "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// List fetches every user in the order the server returns them.
func (c *Client) List(ctx context.Context) ([]models.User, error) {
	resp, err := c.do(ctx, http.MethodGet, usersPath, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	var users []models.User
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return nil, fmt.Errorf("%w: list users: %v", ErrDecode, err)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// Create submits a candidate record and returns it as persisted, with the
// id assigned by the server.
func (c *Client) Create(ctx context.Context, candidate models.User) (models.User, error) {
	body, err := json.Marshal(candidate)
	if err != nil {
		return models.User{}, fmt.Errorf("api: encode user: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPost, usersPath, body)
	if err != nil {
		return models.User{}, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return models.User{}, err
	}
	var created models.User
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return models.User{}, fmt.Errorf("%w: create user: %v", ErrDecode, err)
	}
	return created, nil
}

// Delete removes the user with id. A missing record yields an error
// matching ErrNotFound.
func (c *Client) Delete(ctx context.Context, id int64) error {
	resp, err := c.do(ctx, http.MethodDelete, usersPath+"/"+strconv.FormatInt(id, 10), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("api: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}
	return resp, nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
}
