// Package supabase uploads files to a Supabase Storage bucket over its REST
// object API.
package supabase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const Bucket = "uploads"

type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("supabase: status %d: %s", e.StatusCode, e.Body)
}

type Config struct {
	URL        string
	ServiceKey string
	HTTPClient *http.Client
}

type Client struct {
	url        string
	serviceKey string
	hc         *http.Client
}

func NewClient(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{url: cfg.URL, serviceKey: cfg.ServiceKey, hc: hc}
}

func (c *Client) Configured() bool { return c.url != "" && c.serviceKey != "" }

// Upload stores content under the given object name and returns its public URL.
func (c *Client) Upload(ctx context.Context, name, contentType string, content []byte) (string, error) {
	u := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.url, Bucket, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	res, err := c.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("supabase upload: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(res.Body)
		return "", &Error{StatusCode: res.StatusCode, Body: string(raw)}
	}

	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.url, Bucket, name), nil
}

// Delete removes an object from the bucket.
func (c *Client) Delete(ctx context.Context, name string) error {
	u := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.url, Bucket, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)

	res, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("supabase delete: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(res.Body)
		return &Error{StatusCode: res.StatusCode, Body: string(raw)}
	}
	return nil
}
