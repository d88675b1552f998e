// Package client talks to a running shade API.
package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mattjoyce/shade/internal/api"
	"github.com/mattjoyce/shade/internal/events"
	"github.com/mattjoyce/shade/internal/session"
)

// StatusError is a non-2xx API response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned %d", e.Code)
	}
	return fmt.Sprintf("api returned %d: %s", e.Code, e.Message)
}

// Client calls the theme API on behalf of one session. The session id is
// learned from the first response when none is given.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client

	mu      sync.Mutex
	session string
}

func New(baseURL, apiKey, sessionID string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
		session: sessionID,
	}
}

// Session returns the session id the client is bound to, or "" before the
// first response.
func (c *Client) Session() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Client) Health(ctx context.Context) (api.HealthzResponse, error) {
	var out api.HealthzResponse
	err := c.doJSON(ctx, http.MethodGet, "/healthz", nil, &out)
	return out, err
}

func (c *Client) State(ctx context.Context) (session.State, error) {
	var out session.State
	err := c.doJSON(ctx, http.MethodGet, "/api/theme", nil, &out)
	return out, err
}

func (c *Client) SetTheme(ctx context.Context, theme string) (session.State, error) {
	var out session.State
	err := c.doJSON(ctx, http.MethodPut, "/api/theme", api.SetThemeRequest{Theme: theme}, &out)
	return out, err
}

func (c *Client) Toggle(ctx context.Context) (session.State, error) {
	var out session.State
	err := c.doJSON(ctx, http.MethodPost, "/api/theme/toggle", nil, &out)
	return out, err
}

// SetSystem reports the client's OS color scheme.
func (c *Client) SetSystem(ctx context.Context, dark bool) (session.State, error) {
	pref := "light"
	if dark {
		pref = "dark"
	}
	var out session.State
	err := c.doJSON(ctx, http.MethodPut, "/api/system", api.SetSystemRequest{Preference: pref}, &out)
	return out, err
}

func (c *Client) Config(ctx context.Context) (api.ConfigResponse, error) {
	var out api.ConfigResponse
	err := c.doJSON(ctx, http.MethodGet, "/api/config", nil, &out)
	return out, err
}

// Stream delivers the session's events to fn until ctx is done or the
// connection drops. Events with ID <= lastID are skipped by the server.
func (c *Client) Stream(ctx context.Context, lastID int64, fn func(events.Event)) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/events", nil)
	if err != nil {
		return err
	}
	if lastID > 0 {
		req.Header.Set("Last-Event-ID", strconv.FormatInt(lastID, 10))
	}

	// Streams outlive the request timeout.
	resp, err := (&http.Client{Transport: c.http.Transport}).Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := c.check(resp); err != nil {
		return err
	}

	scanner := bufio.NewScanner(resp.Body)
	var current events.Event
	for scanner.Scan() {
		line := scanner.Text()

		if line == "" {
			if current.Data != nil {
				current.Session = c.Session()
				current.At = time.Now()
				fn(current)
			}
			current = events.Event{}
			continue
		}

		switch {
		case strings.HasPrefix(line, "id: "):
			if id, err := strconv.ParseInt(line[4:], 10, 64); err == nil {
				current.ID = id
			}
		case strings.HasPrefix(line, "event: "):
			current.Type = line[7:]
		case strings.HasPrefix(line, "data: "):
			current.Data = []byte(line[6:])
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return err
	}
	return ctx.Err()
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := c.newRequest(ctx, method, path, rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := c.check(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if id := c.Session(); id != "" {
		req.Header.Set(api.SessionHeader, id)
	}
	return req, nil
}

// check records the session id and turns error statuses into StatusError.
func (c *Client) check(resp *http.Response) error {
	if id := resp.Header.Get(api.SessionHeader); id != "" {
		c.mu.Lock()
		c.session = id
		c.mu.Unlock()
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	var e api.ErrorResponse
	_ = json.NewDecoder(resp.Body).Decode(&e)
	return &StatusError{Code: resp.StatusCode, Message: e.Error}
}
