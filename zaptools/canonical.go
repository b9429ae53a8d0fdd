package zaptools

import (
	"context"
	"encoding/hex"
	"encoding/json"

	"github.com/jeeves-cluster-organization/zapcore/commbus"
	"github.com/jeeves-cluster-organization/zapcore/zapclient"
)

// CanonicalAdapters builds the fixed set of Adapters for the tools
// every endpoint is expected to provide natively: fs.read, fs.write,
// fs.glob, proc.run, vcs.status, and net.fetch. Unlike WrapTool, these
// go through client's typed convenience methods rather than a generic
// CallTool, so their JSON schemas and argument defaults are pinned
// here rather than trusted to catalog metadata.
func CanonicalAdapters(client *zapclient.Client) []*Adapter {
	return []*Adapter{
		canonicalFsRead(client),
		canonicalFsWrite(client),
		canonicalFsGlob(client),
		canonicalProcRun(client),
		canonicalVcsStatus(client),
		canonicalNetFetch(client),
	}
}

// RegisterCanonicalAdapters registers every canonical adapter into reg,
// returning the ones that were newly registered.
func RegisterCanonicalAdapters(client *zapclient.Client, reg *Registry) []*Adapter {
	var registered []*Adapter
	for _, adapter := range CanonicalAdapters(client) {
		if reg.Register(adapter) {
			registered = append(registered, adapter)
		}
	}
	return registered
}

func canonicalFsRead(client *zapclient.Client) *Adapter {
	return &Adapter{
		Name:        "fs_read",
		ToolID:      "native/fs.read",
		Description: "Read a file from the filesystem. Returns content, mime type, and size.",
		RiskLevel:   commbus.RiskLevelReadOnly,
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path":   map[string]any{"type": "string", "description": "Absolute path to file"},
				"offset": map[string]any{"type": "integer", "description": "Line offset to start reading", "default": 0},
				"limit":  map[string]any{"type": "integer", "description": "Maximum lines to read", "default": 2000},
			},
			"required":             []string{"path"},
			"additionalProperties": false,
		},
		Invoke: func(ctx context.Context, rawArgs json.RawMessage) (string, error) {
			var args struct {
				Path   string `json:"path"`
				Offset int    `json:"offset"`
				Limit  int    `json:"limit"`
			}
			if err := json.Unmarshal(rawArgs, &args); err != nil {
				return errorResult("Invalid JSON input"), nil
			}
			result, err := client.FsRead(ctx, args.Path, args.Offset, args.Limit)
			if err != nil {
				return toolErrorOrPropagate(err)
			}
			data, err := json.Marshal(result)
			return string(data), err
		},
	}
}

func canonicalFsWrite(client *zapclient.Client) *Adapter {
	return &Adapter{
		Name:        "fs_write",
		ToolID:      "native/fs.write",
		Description: "Write content to a file. Creates the file if it doesn't exist.",
		RiskLevel:   commbus.RiskLevelWrite,
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path":       map[string]any{"type": "string", "description": "Absolute path to file"},
				"content":    map[string]any{"type": "string", "description": "Content to write"},
				"createDirs": map[string]any{"type": "boolean", "description": "Create parent directories", "default": false},
			},
			"required":             []string{"path", "content"},
			"additionalProperties": false,
		},
		Invoke: func(ctx context.Context, rawArgs json.RawMessage) (string, error) {
			var args struct {
				Path       string `json:"path"`
				Content    string `json:"content"`
				CreateDirs bool   `json:"createDirs"`
			}
			if err := json.Unmarshal(rawArgs, &args); err != nil {
				return errorResult("Invalid JSON input"), nil
			}
			path, err := client.FsWrite(ctx, args.Path, args.Content, args.CreateDirs)
			if err != nil {
				return toolErrorOrPropagate(err)
			}
			data, err := json.Marshal(map[string]any{"path": path, "success": true})
			return string(data), err
		},
	}
}

func canonicalFsGlob(client *zapclient.Client) *Adapter {
	return &Adapter{
		Name:        "fs_glob",
		ToolID:      "native/fs.glob",
		Description: "Find files matching a glob pattern.",
		RiskLevel:   commbus.RiskLevelReadOnly,
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"pattern": map[string]any{"type": "string", "description": "Glob pattern (e.g., '**/*.go')"},
				"path":    map[string]any{"type": "string", "description": "Base path to search", "default": "."},
			},
			"required":             []string{"pattern"},
			"additionalProperties": false,
		},
		Invoke: func(ctx context.Context, rawArgs json.RawMessage) (string, error) {
			var args struct {
				Pattern string `json:"pattern"`
				Path    string `json:"path"`
			}
			if err := json.Unmarshal(rawArgs, &args); err != nil {
				return errorResult("Invalid JSON input"), nil
			}
			paths, err := client.FsGlob(ctx, args.Pattern, args.Path)
			if err != nil {
				return toolErrorOrPropagate(err)
			}
			data, err := json.Marshal(map[string]any{"paths": paths})
			return string(data), err
		},
	}
}

func canonicalProcRun(client *zapclient.Client) *Adapter {
	return &Adapter{
		Name:        "proc_run",
		ToolID:      "native/proc.run",
		Description: "Execute a command. Returns exit code, stdout, and stderr.",
		RiskLevel:   commbus.RiskLevelDestructive,
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"command": map[string]any{"type": "string", "description": "Command to execute"},
				"args":    map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Command arguments"},
				"cwd":     map[string]any{"type": "string", "description": "Working directory"},
				"timeout": map[string]any{"type": "integer", "description": "Timeout in milliseconds", "default": 120000},
			},
			"required":             []string{"command"},
			"additionalProperties": false,
		},
		Invoke: func(ctx context.Context, rawArgs json.RawMessage) (string, error) {
			var args struct {
				Command string   `json:"command"`
				Args    []string `json:"args"`
				Cwd     string   `json:"cwd"`
				Timeout int      `json:"timeout"`
			}
			if err := json.Unmarshal(rawArgs, &args); err != nil {
				return errorResult("Invalid JSON input"), nil
			}
			result, err := client.ProcRun(ctx, args.Command, args.Args, args.Cwd, args.Timeout)
			if err != nil {
				return toolErrorOrPropagate(err)
			}
			data, err := json.Marshal(result)
			return string(data), err
		},
	}
}

func canonicalVcsStatus(client *zapclient.Client) *Adapter {
	return &Adapter{
		Name:        "vcs_status",
		ToolID:      "native/vcs.status",
		Description: "Get VCS status. Returns branch, staged/modified files, etc.",
		RiskLevel:   commbus.RiskLevelReadOnly,
		InputSchema: map[string]any{
			"type":                 "object",
			"properties":           map[string]any{},
			"required":             []string{},
			"additionalProperties": false,
		},
		Invoke: func(ctx context.Context, rawArgs json.RawMessage) (string, error) {
			result, err := client.VcsStatus(ctx)
			if err != nil {
				return toolErrorOrPropagate(err)
			}
			data, err := json.Marshal(result)
			return string(data), err
		},
	}
}

func canonicalNetFetch(client *zapclient.Client) *Adapter {
	return &Adapter{
		Name:        "net_fetch",
		ToolID:      "native/net.fetch",
		Description: "Fetch content from a URL. Returns status, headers, and body.",
		RiskLevel:   commbus.RiskLevelReadOnly,
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"url":     map[string]any{"type": "string", "description": "URL to fetch"},
				"method":  map[string]any{"type": "string", "description": "HTTP method", "default": "GET"},
				"headers": map[string]any{"type": "object", "description": "Request headers"},
				"body":    map[string]any{"type": "string", "description": "Request body (hex encoded)"},
			},
			"required":             []string{"url"},
			"additionalProperties": false,
		},
		Invoke: func(ctx context.Context, rawArgs json.RawMessage) (string, error) {
			var args struct {
				URL     string            `json:"url"`
				Method  string            `json:"method"`
				Headers map[string]string `json:"headers"`
				Body    string            `json:"body"`
			}
			if err := json.Unmarshal(rawArgs, &args); err != nil {
				return errorResult("Invalid JSON input"), nil
			}
			var body []byte
			if args.Body != "" {
				decoded, err := hex.DecodeString(args.Body)
				if err != nil {
					return errorResult("Invalid JSON input"), nil
				}
				body = decoded
			}
			result, err := client.NetFetch(ctx, args.URL, args.Method, args.Headers, body)
			if err != nil {
				return toolErrorOrPropagate(err)
			}
			data, err := json.Marshal(result)
			return string(data), err
		},
	}
}

// toolErrorOrPropagate turns an invocation error (transport failure,
// cancellation, or endpoint-reported ZapError surfaced as a plain error
// by CallTool or the FsRead/FsWrite/... convenience methods) into the
// {"error": message} envelope every adapter returns on failure. Adapter
// Invoke funcs never hand a raw error to the host runtime.
func toolErrorOrPropagate(err error) (string, error) {
	return errorResult(err.Error()), nil
}
