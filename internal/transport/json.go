package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// GetJSON fetches url and decodes the JSON response into v.
func (c *Client) GetJSON(ctx context.Context, url string, header http.Header, v any) error {
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, URL: url, Header: header})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("decode response from %s: %w", url, err)
	}
	return nil
}

// PostJSON sends body as JSON to url and decodes the JSON response into v.
func (c *Client) PostJSON(ctx context.Context, url string, payload any, v any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request for %s: %w", url, err)
	}
	header := http.Header{}
	header.Set("Content-Type", "application/json")

	resp, err := c.Do(ctx, Request{Method: http.MethodPost, URL: url, Header: header, Body: data})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("decode response from %s: %w", url, err)
	}
	return nil
}
