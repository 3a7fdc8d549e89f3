package remote

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

	"noted/internal/client/feed"
)

const defaultTimeout = 10 * time.Second

// HTTPClient implements Client against the note service HTTP API.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPClient creates a client for the given base URL. The token may be
// empty for anonymous use.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

// SetToken installs the bearer token used on subsequent requests.
func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

// FetchPage fetches one page of the feed.
func (c *HTTPClient) FetchPage(ctx context.Context, scope feed.Scope, cursor string) (feed.Page, error) {
	query := url.Values{}
	if scope.Limit > 0 {
		query.Set("limit", strconv.Itoa(scope.Limit))
	}
	if scope.MyNotes {
		query.Set("my_notes", "true")
	}
	if cursor != "" {
		query.Set("cursor", cursor)
	}

	path := "/api/v1/notes"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var page feed.Page
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return feed.Page{}, err
	}
	return page, nil
}

// CreateNote creates a note and returns the server's version of it.
func (c *HTTPClient) CreateNote(ctx context.Context, in CreateInput) (feed.Note, error) {
	var note feed.Note
	if err := c.do(ctx, http.MethodPost, "/api/v1/notes", in, &note); err != nil {
		return feed.Note{}, err
	}
	return note, nil
}

// UpdateNote patches a note.
func (c *HTTPClient) UpdateNote(ctx context.Context, id string, patch feed.Patch) (feed.Note, error) {
	body := struct {
		Title     *string `json:"title,omitempty"`
		Content   *string `json:"content,omitempty"`
		IsPrivate *bool   `json:"is_private,omitempty"`
	}{patch.Title, patch.Content, patch.IsPrivate}

	var note feed.Note
	if err := c.do(ctx, http.MethodPatch, "/api/v1/notes/"+url.PathEscape(id), body, &note); err != nil {
		return feed.Note{}, err
	}
	return note, nil
}

// DeleteNote removes a note and returns its last state.
func (c *HTTPClient) DeleteNote(ctx context.Context, id string) (feed.Note, error) {
	var note feed.Note
	if err := c.do(ctx, http.MethodDelete, "/api/v1/notes/"+url.PathEscape(id), nil, &note); err != nil {
		return feed.Note{}, err
	}
	return note, nil
}

// CurrentUser returns the profile of the token's owner.
func (c *HTTPClient) CurrentUser(ctx context.Context) (*feed.Author, error) {
	var profile profileResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/user/profile", nil, &profile); err != nil {
		return nil, err
	}
	return profile.author(), nil
}

// Register creates an account and returns its session.
func (c *HTTPClient) Register(ctx context.Context, email, username, password string) (*Session, error) {
	return c.session(ctx, "/api/v1/auth/register", map[string]string{
		"email":    email,
		"username": username,
		"password": password,
	})
}

// Login exchanges credentials for a session.
func (c *HTTPClient) Login(ctx context.Context, email, password string) (*Session, error) {
	return c.session(ctx, "/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

type profileResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

func (p *profileResponse) author() *feed.Author {
	return &feed.Author{ID: p.ID, Name: p.Username, AvatarURL: p.AvatarURL}
}

func (c *HTTPClient) session(ctx context.Context, path string, body map[string]string) (*Session, error) {
	var resp struct {
		Token string          `json:"token"`
		User  profileResponse `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}

	c.token = resp.Token
	return &Session{Token: resp.Token, User: resp.User.author()}, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return errorFromResponse(resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return NewError(ErrTransport, fmt.Sprintf("decoding response: %v", err))
	}
	return nil
}

// errorFromResponse maps an HTTP status onto an error kind, keeping the
// server's message verbatim.
func errorFromResponse(status int, raw []byte) *Error {
	var body struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(raw, &body)

	kind := ErrTransport
	switch status {
	case http.StatusBadRequest, http.StatusConflict:
		kind = ErrValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = ErrUnauthorized
	case http.StatusNotFound:
		kind = ErrNotFound
	}

	message := body.Error
	if message == "" {
		message = fmt.Sprintf("unexpected status %d", status)
	}
	return NewError(kind, message)
}
