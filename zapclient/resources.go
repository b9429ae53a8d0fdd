package zapclient

import (
	"context"

	"github.com/jeeves-cluster-organization/zapcore/zaptypes"
)

// ListResources returns one page of resources, plus a cursor to pass
// back in to fetch the next page (nil when there is no further page).
func (c *Client) ListResources(ctx context.Context, cursor *zaptypes.HexBytes) ([]zaptypes.Resource, *zaptypes.HexBytes, error) {
	callCtx, err := toPayload(c.makeContext())
	if err != nil {
		return nil, nil, err
	}

	token := zaptypes.HexBytes{}
	if cursor != nil {
		token = *cursor
	}

	resp, err := c.request(ctx, "resources.list", map[string]any{
		"cursor": map[string]any{"token": token},
		"ctx":    callCtx,
	})
	if err != nil {
		return nil, nil, err
	}

	var decoded struct {
		Page struct {
			Resources   []zaptypes.Resource `json:"resources"`
			NextCursor  struct {
				Token zaptypes.HexBytes `json:"token"`
			} `json:"nextCursor"`
			HasMore bool `json:"hasMore"`
		} `json:"page"`
	}
	if err := decodeInto(resp, &decoded); err != nil {
		return nil, nil, newConnectionError("decode resources.list response", err)
	}

	if !decoded.Page.HasMore {
		return decoded.Page.Resources, nil, nil
	}
	next := decoded.Page.NextCursor.Token
	return decoded.Page.Resources, &next, nil
}

// ReadResource fetches the content of a single resource by URI,
// returning its MIME type and raw bytes. Either a "text" or "blob"
// field in the wire response is accepted, matching endpoints that
// serve human-readable content inline and binary content as hex.
func (c *Client) ReadResource(ctx context.Context, uri string) (string, []byte, error) {
	callCtx, err := toPayload(c.makeContext())
	if err != nil {
		return "", nil, err
	}

	resp, err := c.request(ctx, "resources.read", map[string]any{
		"uri": uri,
		"ctx": callCtx,
	})
	if err != nil {
		return "", nil, err
	}

	var decoded struct {
		Content struct {
			MimeType string            `json:"mimeType"`
			Text     *string           `json:"text,omitempty"`
			Blob     zaptypes.HexBytes `json:"blob,omitempty"`
		} `json:"content"`
	}
	if err := decodeInto(resp, &decoded); err != nil {
		return "", nil, newConnectionError("decode resources.read response", err)
	}

	mimeType := decoded.Content.MimeType
	if mimeType == "" {
		mimeType = "text/plain"
	}

	if decoded.Content.Text != nil {
		return mimeType, []byte(*decoded.Content.Text), nil
	}
	if len(decoded.Content.Blob) > 0 {
		return mimeType, []byte(decoded.Content.Blob), nil
	}
	return mimeType, nil, nil
}
