// Package api is the HTTP client for the todo service.
//
// All authenticated traffic funnels through Client.do so that 401 handling
// lives in exactly one place: any endpoint rejecting the bearer token
// invalidates the session via the registered hook, and callers get
// ErrSessionExpired instead of a response body.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"taskpad-cli/internal/model"
)

type Client struct {
	baseURL string
	http    *http.Client

	// tokenFunc returns the current bearer token, or "" when anonymous.
	tokenFunc func() string
	// onUnauthorized is invoked once per 401 response, before the call fails.
	onUnauthorized func()
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// SetTokenFunc wires the token source (the session manager).
func (c *Client) SetTokenFunc(f func() string) { c.tokenFunc = f }

// SetUnauthorizedHook wires session invalidation for the 401 path.
func (c *Client) SetUnauthorizedHook(f func()) { c.onUnauthorized = f }

// SetHTTPClient overrides the underlying transport (tests).
func (c *Client) SetHTTPClient(h *http.Client) { c.http = h }

// detailBody is the error shape of every failure response.
type detailBody struct {
	Detail string `json:"detail"`
}

func errDetail(body []byte, fallback string) string {
	var d detailBody
	if err := json.Unmarshal(body, &d); err == nil && strings.TrimSpace(d.Detail) != "" {
		return d.Detail
	}
	return fallback
}

// do performs one authenticated request and returns the response body.
//
// With no token available it refuses locally (ErrNoSession) without touching
// the network. A 401 invalidates the session and returns ErrSessionExpired;
// the body of a 401 must never be interpreted by callers.
func (c *Client) do(ctx context.Context, op, method, path string, payload any) ([]byte, error) {
	token := ""
	if c.tokenFunc != nil {
		token = c.tokenFunc()
	}
	if token == "" {
		return nil, ErrNoSession
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return nil, ErrSessionExpired
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RequestError{
			Op:      op,
			Status:  resp.StatusCode,
			Message: errDetail(b, http.StatusText(resp.StatusCode)),
		}
	}
	return b, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges credentials for a bearer token. Unauthenticated: a 401
// here means bad credentials, not an expired session.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &AuthError{Message: errDetail(b, "invalid credentials")}
	}

	var tok tokenResponse
	if err := json.Unmarshal(b, &tok); err != nil {
		return "", fmt.Errorf("login: decode response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", &AuthError{Message: "server returned no access token"}
	}
	return tok.AccessToken, nil
}

// Register creates a new user. It never authenticates.
func (c *Client) Register(ctx context.Context, draft model.RegisterDraft) error {
	b, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/new-user",
		bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RegisterError{Message: errDetail(body, "could not create user")}
	}
	return nil
}

// wireProfile matches the actual user-info response, which uses display-style
// keys ("First Name", not first_name) on the wire.
type wireProfile struct {
	ID          int    `json:"ID"`
	Username    string `json:"Username"`
	Email       string `json:"Email"`
	FirstName   string `json:"First Name"`
	LastName    string `json:"Last Name"`
	Active      bool   `json:"Status"`
	Role        string `json:"Role"`
	PhoneNumber string `json:"Phone Number"`
}

func (c *Client) UserInfo(ctx context.Context) (model.UserProfile, error) {
	b, err := c.do(ctx, "fetch profile", http.MethodGet, "/users/user-info", nil)
	if err != nil {
		return model.UserProfile{}, err
	}
	var w wireProfile
	if err := json.Unmarshal(b, &w); err != nil {
		return model.UserProfile{}, fmt.Errorf("fetch profile: decode response: %w", err)
	}
	return model.UserProfile{
		ID:          w.ID,
		Username:    w.Username,
		Email:       w.Email,
		FirstName:   w.FirstName,
		LastName:    w.LastName,
		Role:        model.Role(w.Role),
		PhoneNumber: w.PhoneNumber,
		Active:      w.Active,
	}, nil
}

// ChangePassword sends old/new as query parameters with an empty body; the
// endpoint answers 204 on success.
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	q := url.Values{}
	q.Set("old_password", oldPassword)
	q.Set("new_password", newPassword)
	_, err := c.do(ctx, "change password", http.MethodPost, "/users/change-password?"+q.Encode(), nil)
	return err
}

func (c *Client) ChangePhoneNumber(ctx context.Context, newPhone string) error {
	q := url.Values{}
	q.Set("new_phone_number", newPhone)
	_, err := c.do(ctx, "change phone number", http.MethodPost, "/users/change-phone-number?"+q.Encode(), nil)
	return err
}

func (c *Client) Todos(ctx context.Context) ([]model.TodoItem, error) {
	b, err := c.do(ctx, "list todos", http.MethodGet, "/todos/", nil)
	if err != nil {
		return nil, err
	}
	var items []model.TodoItem
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("list todos: decode response: %w", err)
	}
	if items == nil {
		items = []model.TodoItem{}
	}
	return items, nil
}

func (c *Client) Todo(ctx context.Context, id int) (model.TodoItem, error) {
	b, err := c.do(ctx, "fetch todo", http.MethodGet, fmt.Sprintf("/todos/%d", id), nil)
	if err != nil {
		return model.TodoItem{}, err
	}
	var item model.TodoItem
	if err := json.Unmarshal(b, &item); err != nil {
		return model.TodoItem{}, fmt.Errorf("fetch todo: decode response: %w", err)
	}
	return item, nil
}

func (c *Client) CreateTodo(ctx context.Context, draft model.TodoDraft) error {
	_, err := c.do(ctx, "create todo", http.MethodPost, "/todos/", draft)
	return err
}

func (c *Client) UpdateTodo(ctx context.Context, id int, update model.TodoUpdate) error {
	_, err := c.do(ctx, "update todo", http.MethodPut, fmt.Sprintf("/todos/%d", id), update)
	return err
}

func (c *Client) DeleteTodo(ctx context.Context, id int) error {
	_, err := c.do(ctx, "delete todo", http.MethodDelete, fmt.Sprintf("/todos/%d", id), nil)
	return err
}

// AdminTodos lists every user's todos. The server enforces the admin role;
// the client only uses the decoded token role as a UI hint.
func (c *Client) AdminTodos(ctx context.Context) ([]model.TodoItem, error) {
	b, err := c.do(ctx, "list all todos", http.MethodGet, "/admin/todos", nil)
	if err != nil {
		return nil, err
	}
	var items []model.TodoItem
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("list all todos: decode response: %w", err)
	}
	if items == nil {
		items = []model.TodoItem{}
	}
	return items, nil
}

func (c *Client) AdminDeleteTodo(ctx context.Context, id int) error {
	_, err := c.do(ctx, "delete todo (admin)", http.MethodDelete, fmt.Sprintf("/admin/todos/%d", id), nil)
	return err
}
