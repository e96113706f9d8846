package dux

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
)

// AuthenticationPath is the service that issues and revokes access tokens.
const AuthenticationPath = "authentication"

// maxResponseSize caps how much of a response body is read.
const maxResponseSize = 4 << 20

// Error is a failed call as reported by the server.
type Error struct {
	Code    int    `json:"code"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Name, e.Code, e.Message)
}

// HTTPCaller calls services over the REST transport and remembers the
// access token issued by a successful log in.
type HTTPCaller struct {
	BaseURL string
	Client  *http.Client

	mu    sync.RWMutex
	token string
}

// NewHTTPCaller returns a caller for the server at baseURL.
func NewHTTPCaller(baseURL string, client *http.Client) *HTTPCaller {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPCaller{BaseURL: strings.TrimRight(baseURL, "/"), Client: client}
}

// Token returns the cached access token.
func (c *HTTPCaller) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the cached access token.
func (c *HTTPCaller) SetToken(tok string) {
	c.mu.Lock()
	c.token = tok
	c.mu.Unlock()
}

// Call implements Caller.
func (c *HTTPCaller) Call(ctx context.Context, service string, r Request) (any, error) {
	verb, target, err := c.route(service, r)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if r.Data != nil || verb == http.MethodPost || verb == http.MethodPut || verb == http.MethodPatch {
		b, err := json.Marshal(r.Data)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", service, r.Method, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, verb, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", verb, target, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", verb, target, err)
	}

	if service == AuthenticationPath {
		switch r.Method {
		case Create:
			if resp.StatusCode < 300 {
				c.SetToken(gjson.GetBytes(raw, "accessToken").String())
			}
		case Remove:
			c.SetToken("")
		}
	}

	if resp.StatusCode >= 300 {
		return nil, decodeError(resp.StatusCode, raw)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", verb, target, err)
	}
	return out, nil
}

func (c *HTTPCaller) route(service string, r Request) (string, string, error) {
	base := c.BaseURL + "/" + strings.Trim(service, "/")
	withID := base
	if r.ID != "" {
		withID = base + "/" + url.PathEscape(r.ID)
	}

	var verb, target string
	switch r.Method {
	case Find:
		verb, target = http.MethodGet, base
	case Get:
		verb, target = http.MethodGet, withID
	case Create:
		verb, target = http.MethodPost, base
	case Update:
		verb, target = http.MethodPut, withID
	case Patch:
		verb, target = http.MethodPatch, withID
	case Remove:
		verb, target = http.MethodDelete, withID
	default:
		return "", "", fmt.Errorf("unknown method %q", r.Method)
	}
	if (r.Method == Get || r.Method == Update || r.Method == Patch) && r.ID == "" {
		return "", "", fmt.Errorf("%s %s needs an id", service, r.Method)
	}

	if len(r.Query) > 0 {
		q := url.Values{}
		for k, v := range r.Query {
			q.Set(k, v)
		}
		target += "?" + q.Encode()
	}
	return verb, target, nil
}

func decodeError(status int, raw []byte) error {
	res := gjson.ParseBytes(raw)
	e := &Error{
		Code:    status,
		Name:    res.Get("name").String(),
		Message: res.Get("message").String(),
	}
	if e.Name == "" {
		e.Name = http.StatusText(status)
	}
	if e.Message == "" {
		e.Message = strings.TrimSpace(string(raw))
	}
	return e
}
