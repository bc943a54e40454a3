// Package queue implements the boundary to the external push queue:
// the outbound publish client, delivery signature verification, and a
// local delivery emulator for development.
package queue

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client publishes messages to the push-queue provider. The provider
// delivers each message to the named callback URL with its own retry
// policy; Publish returning nil only means the message was accepted.
type Client struct {
	providerURL string
	token       string
	httpc       *http.Client
}

// NewClient creates a publish client for the provider at providerURL,
// authenticating with the given token.
func NewClient(providerURL, token string) *Client {
	return &Client{
		providerURL: providerURL,
		token:       token,
		httpc:       &http.Client{Timeout: 30 * time.Second},
	}
}

// Publish submits one message for future delivery to callbackURL.
func (c *Client) Publish(ctx context.Context, callbackURL string, body []byte) error {
	endpoint := c.providerURL + "/v2/publish/" + callbackURL
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("queue publish: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("queue publish: provider returned %d", resp.StatusCode)
	}
	return nil
}
