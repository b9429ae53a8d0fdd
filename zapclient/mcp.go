package zapclient

import "context"

// ListMcpTools lists tools exposed by MCP servers the endpoint's
// gateway has bridged in.
func (c *Client) ListMcpTools(ctx context.Context) ([]map[string]any, error) {
	callCtx, err := toPayload(c.makeContext())
	if err != nil {
		return nil, err
	}

	resp, err := c.request(ctx, "gateway.listMcpTools", map[string]any{"ctx": callCtx})
	if err != nil {
		return nil, err
	}

	var decoded struct {
		Tools []map[string]any `json:"tools"`
	}
	if err := decodeInto(resp, &decoded); err != nil {
		return nil, newConnectionError("decode gateway.listMcpTools response", err)
	}
	return decoded.Tools, nil
}

// CallMcpTool invokes a bridged MCP tool by name, passing its arguments
// as a raw JSON string and returning the raw JSON result string.
func (c *Client) CallMcpTool(ctx context.Context, name, jsonArgs string) (string, error) {
	callCtx, err := toPayload(c.makeContext())
	if err != nil {
		return "", err
	}

	resp, err := c.request(ctx, "gateway.callMcpTool", map[string]any{
		"name":     name,
		"jsonArgs": jsonArgs,
		"ctx":      callCtx,
	})
	if err != nil {
		return "", err
	}

	var decoded struct {
		JsonResult string `json:"jsonResult"`
	}
	if err := decodeInto(resp, &decoded); err != nil {
		return "", newConnectionError("decode gateway.callMcpTool response", err)
	}
	if decoded.JsonResult == "" {
		return "{}", nil
	}
	return decoded.JsonResult, nil
}

// RegisterMcpServer registers an MCP server with the endpoint's
// gateway, returning whether registration succeeded.
func (c *Client) RegisterMcpServer(ctx context.Context, name, endpoint string) (bool, error) {
	callCtx, err := toPayload(c.makeContext())
	if err != nil {
		return false, err
	}

	resp, err := c.request(ctx, "gateway.registerMcpServer", map[string]any{
		"name":     name,
		"endpoint": endpoint,
		"ctx":      callCtx,
	})
	if err != nil {
		return false, err
	}

	var decoded struct {
		Success bool `json:"success"`
	}
	if err := decodeInto(resp, &decoded); err != nil {
		return false, newConnectionError("decode gateway.registerMcpServer response", err)
	}
	return decoded.Success, nil
}
