package zapclient

import (
	"context"
	"time"
)

// Ping round-trips a ping request and returns the observed latency
// alongside the server's reported timestamp.
func (c *Client) Ping(ctx context.Context) (latency time.Duration, serverTime int64, err error) {
	start := time.Now()
	resp, err := c.request(ctx, "ping", map[string]any{})
	if err != nil {
		return 0, 0, err
	}
	latency = time.Since(start)

	var decoded struct {
		ServerTime int64 `json:"serverTime"`
	}
	if err := decodeInto(resp, &decoded); err != nil {
		return latency, 0, newConnectionError("decode ping response", err)
	}
	return latency, decoded.ServerTime, nil
}
