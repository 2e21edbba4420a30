package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/gorilla/websocket"
)

// Client maintains one staff device's realtime connection and routes
// inbound events into its feed. Reconnect and backoff are deliberately not
// here: after any disconnect the caller re-dials and re-fetches authoritative
// state over the CRUD surface, because the event stream is an accelerant,
// not the source of truth.
type Client struct {
	serverURL string
	token     string
	feed      *Feed
}

// New creates a client for the given server base URL ("http://host:port")
// and session token.
func New(serverURL, token string, feed *Feed) *Client {
	return &Client{serverURL: serverURL, token: token, feed: feed}
}

// wsURL converts the HTTP base URL into the gateway's websocket endpoint
// with the token attached.
func (c *Client) wsURL() (string, error) {
	u, err := url.Parse(c.serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = "/ws"
	u.RawQuery = url.Values{"token": {c.token}}.Encode()
	return u.String(), nil
}

// Run dials the gateway and pumps events into the feed until the context is
// cancelled or the connection drops. A drop degrades silently to "no live
// updates"; the error return lets the caller decide to re-dial.
func (c *Client) Run(ctx context.Context) error {
	target, err := c.wsURL()
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("connection lost: %w", err)
		}
		if _, err := c.feed.Apply(message); err != nil {
			// A malformed event is dropped, not fatal.
			continue
		}
	}
}
