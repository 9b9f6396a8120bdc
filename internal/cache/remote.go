package cache

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

var _ Manager = (*Remote)(nil)

const msgpackContentType = "application/msgpack"

// Remote is a shared cache tier served over HTTP at <base>/api/cache/<hash>.
type Remote struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// RemoteOption configures a Remote.
type RemoteOption func(*Remote)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) RemoteOption {
	return func(c *Remote) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) RemoteOption {
	return func(c *Remote) { c.token = token }
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) RemoteOption {
	return func(c *Remote) { c.httpClient.Timeout = timeout }
}

// NewRemote creates a remote cache client.
func NewRemote(baseURL string, opts ...RemoteOption) *Remote {
	c := &Remote{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Remote) entryURL(key Key) (string, error) {
	hash, err := key.Hash()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/api/cache/%s", c.baseURL, url.PathEscape(hash)), nil
}

func (c *Remote) do(ctx context.Context, method, target string, body []byte) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, r)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", msgpackContentType)
	}
	req.Header.Set("Accept", msgpackContentType)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	return resp, nil
}

func unexpected(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}

// Get implements Manager. Entries of another schema version are misses.
func (c *Remote) Get(ctx context.Context, key Key) (*Entry, error) {
	target, err := c.entryURL(key)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrCacheMiss
	}
	if resp.StatusCode != http.StatusOK {
		return nil, unexpected(resp)
	}

	var entry Entry
	if err := msgpack.NewDecoder(resp.Body).Decode(&entry); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if entry.Schema != SchemaVersion {
		return nil, ErrCacheMiss
	}
	return &entry, nil
}

// Put implements Manager, stamping the schema version.
func (c *Remote) Put(ctx context.Context, entry *Entry) error {
	target, err := c.entryURL(entry.Key)
	if err != nil {
		return err
	}
	entry.Schema = SchemaVersion
	data, err := msgpack.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding entry: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPut, target, data)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		return unexpected(resp)
	}
	return nil
}

// Delete implements Manager. A missing entry is not an error.
func (c *Remote) Delete(ctx context.Context, key Key) error {
	target, err := c.entryURL(key)
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, http.MethodDelete, target, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	}
	return unexpected(resp)
}

// Ping checks that the server is reachable.
func (c *Remote) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return fmt.Errorf("server unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}
	return nil
}
