package zapclient

import (
	"context"
	"time"

	"github.com/jeeves-cluster-organization/zapcore/commbus"
	"github.com/jeeves-cluster-organization/zapcore/coreengine/observability"
	"github.com/jeeves-cluster-organization/zapcore/zaptypes"
)

// ListTools returns the tools in the endpoint's catalog. certifiedOnly is
// forwarded to the endpoint as a request field; the client does not filter
// the returned list itself.
func (c *Client) ListTools(ctx context.Context, certifiedOnly bool) ([]zaptypes.Tool, error) {
	callCtx, err := toPayload(c.makeContext())
	if err != nil {
		return nil, err
	}

	resp, err := c.request(ctx, "catalog.listTools", map[string]any{
		"certifiedOnly": certifiedOnly,
		"ctx":           callCtx,
	})
	if err != nil {
		return nil, err
	}

	var decoded struct {
		Tools []zaptypes.Tool `json:"tools"`
	}
	if err := decodeInto(resp, &decoded); err != nil {
		return nil, newConnectionError("decode catalog.listTools response", err)
	}
	return decoded.Tools, nil
}

// GetTool fetches a single tool by id ("namespace/name@version",
// "namespace/name", or bare "name").
func (c *Client) GetTool(ctx context.Context, toolID string) (zaptypes.Tool, error) {
	tid := zaptypes.ParseToolId(toolID)
	callCtx, err := toPayload(c.makeContext())
	if err != nil {
		return zaptypes.Tool{}, err
	}

	resp, err := c.request(ctx, "catalog.getTool", map[string]any{
		"id":  tid,
		"ctx": callCtx,
	})
	if err != nil {
		return zaptypes.Tool{}, err
	}

	var decoded struct {
		Tool zaptypes.Tool `json:"tool"`
	}
	if err := decodeInto(resp, &decoded); err != nil {
		return zaptypes.Tool{}, newConnectionError("decode catalog.getTool response", err)
	}
	return decoded.Tool, nil
}

// SearchTools searches the catalog by free-text query.
func (c *Client) SearchTools(ctx context.Context, query string) ([]zaptypes.Tool, error) {
	callCtx, err := toPayload(c.makeContext())
	if err != nil {
		return nil, err
	}

	resp, err := c.request(ctx, "catalog.search", map[string]any{
		"query": query,
		"ctx":   callCtx,
	})
	if err != nil {
		return nil, err
	}

	var decoded struct {
		Tools []zaptypes.Tool `json:"tools"`
	}
	if err := decodeInto(resp, &decoded); err != nil {
		return nil, newConnectionError("decode catalog.search response", err)
	}
	return decoded.Tools, nil
}

// CallTool invokes name with arguments. Unlike the other catalog
// methods, CallTool never returns a *ProtocolError: endpoint-side errors
// and locally coded failures (not connected, timeout, connection closed)
// are reported inside the returned ToolResult, matching the wire
// contract's success/error envelope. Failures without an error code (a
// frame write error, ctx cancellation, an undecodable response) are
// still returned as errors.
func (c *Client) CallTool(ctx context.Context, name string, arguments map[string]any, callCtx *zaptypes.CallContext) (zaptypes.ToolResult, error) {
	tid := zaptypes.ParseToolId(name)

	resolvedCtx := c.makeContext()
	if callCtx != nil {
		resolvedCtx = *callCtx
	}
	ctxPayload, err := toPayload(resolvedCtx)
	if err != nil {
		return zaptypes.ToolResult{}, err
	}

	start := time.Now()
	resp, err := c.request(ctx, "catalog.invoke", map[string]any{
		"id":   tid,
		"args": arguments,
		"ctx":  ctxPayload,
	})
	duration := time.Since(start)

	if err != nil {
		if pe, ok := err.(*ProtocolError); ok {
			result := zaptypes.ToolResult{Success: false, Error: pe.Err, DurationNs: duration.Nanoseconds()}
			c.recordToolInvocation(ctx, tid, result)
			return result, nil
		}
		return zaptypes.ToolResult{}, err
	}

	var decoded struct {
		Result any `json:"result"`
	}
	if err := decodeInto(resp, &decoded); err != nil {
		return zaptypes.ToolResult{}, newConnectionError("decode catalog.invoke response", err)
	}

	result := zaptypes.ToolResult{Success: true, Data: decoded.Result, DurationNs: duration.Nanoseconds()}
	c.recordToolInvocation(ctx, tid, result)
	return result, nil
}

func (c *Client) recordToolInvocation(ctx context.Context, tid zaptypes.ToolId, result zaptypes.ToolResult) {
	status := "success"
	errorCode := ""
	if !result.Success {
		status = "error"
		if result.Error != nil {
			errorCode = string(result.Error.Code)
		}
	}
	observability.RecordToolInvocation(tid.String(), status, int(result.DurationNs/int64(time.Millisecond)))
	c.publish(ctx, &commbus.ToolInvoked{
		ToolID:     tid.String(),
		Success:    result.Success,
		DurationNs: result.DurationNs,
		ErrorCode:  errorCode,
	})
}
