package zapclient

import (
	"context"

	"github.com/jeeves-cluster-organization/zapcore/coreengine/typeutil"
	"github.com/jeeves-cluster-organization/zapcore/zaptypes"
)

// canonicalToolError turns a failed ToolResult into a *ProtocolError,
// substituting a generic internal error when the endpoint omitted one.
func canonicalToolError(result zaptypes.ToolResult, fallback string) error {
	if result.Error != nil {
		return &ProtocolError{Err: result.Error}
	}
	return newProtocolError(zaptypes.ErrorCodeInternalError, fallback)
}

// FsRead reads a file via the native fs.read tool.
func (c *Client) FsRead(ctx context.Context, path string, offset, limit int) (map[string]any, error) {
	if limit == 0 {
		limit = 2000
	}
	result, err := c.CallTool(ctx, "native/fs.read", map[string]any{
		"path": path, "offset": offset, "limit": limit,
	}, nil)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, canonicalToolError(result, "Read failed")
	}
	data, _ := typeutil.SafeMapStringAny(result.Data)
	return data, nil
}

// FsWrite writes content to a file via the native fs.write tool,
// returning the path the endpoint actually wrote to.
func (c *Client) FsWrite(ctx context.Context, path, content string, createDirs bool) (string, error) {
	result, err := c.CallTool(ctx, "native/fs.write", map[string]any{
		"path": path, "content": content, "createDirs": createDirs,
	}, nil)
	if err != nil {
		return "", err
	}
	if !result.Success {
		return "", canonicalToolError(result, "Write failed")
	}
	data, _ := typeutil.SafeMapStringAny(result.Data)
	return typeutil.SafeStringDefault(data["path"], path), nil
}

// FsGlob matches pattern under path via the native fs.glob tool.
func (c *Client) FsGlob(ctx context.Context, pattern, path string) ([]string, error) {
	if path == "" {
		path = "."
	}
	result, err := c.CallTool(ctx, "native/fs.glob", map[string]any{
		"pattern": pattern, "path": path,
	}, nil)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, canonicalToolError(result, "Glob failed")
	}
	data, _ := typeutil.SafeMapStringAny(result.Data)
	paths, _ := typeutil.SafeStringSlice(data["paths"])
	return paths, nil
}

// ProcRun runs command via the native proc.run tool.
func (c *Client) ProcRun(ctx context.Context, command string, args []string, cwd string, timeoutMs int) (map[string]any, error) {
	if timeoutMs == 0 {
		timeoutMs = 120_000
	}
	if args == nil {
		args = []string{}
	}
	result, err := c.CallTool(ctx, "native/proc.run", map[string]any{
		"command": command, "args": args, "cwd": cwd, "timeout": timeoutMs,
	}, nil)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, canonicalToolError(result, "Run failed")
	}
	data, _ := typeutil.SafeMapStringAny(result.Data)
	return data, nil
}

// VcsStatus fetches version-control status via the native vcs.status
// tool.
func (c *Client) VcsStatus(ctx context.Context) (map[string]any, error) {
	result, err := c.CallTool(ctx, "native/vcs.status", map[string]any{}, nil)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, canonicalToolError(result, "Status failed")
	}
	data, _ := typeutil.SafeMapStringAny(result.Data)
	return data, nil
}

// NetFetch issues an HTTP request via the native net.fetch tool.
func (c *Client) NetFetch(ctx context.Context, url, method string, headers map[string]string, body []byte) (map[string]any, error) {
	if method == "" {
		method = "GET"
	}
	headerList := make([]map[string]string, 0, len(headers))
	for name, value := range headers {
		headerList = append(headerList, map[string]string{"name": name, "value": value})
	}
	result, err := c.CallTool(ctx, "native/net.fetch", map[string]any{
		"url": url, "method": method, "headers": headerList, "body": zaptypes.HexBytes(body),
	}, nil)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, canonicalToolError(result, "Fetch failed")
	}
	data, _ := typeutil.SafeMapStringAny(result.Data)
	return data, nil
}
