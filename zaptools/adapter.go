// Package zaptools adapts ZAP catalog tools into runtime-callable
// capabilities: normalized names, a JSON-argument invocation contract,
// and a registry that resolves name collisions deterministically.
package zaptools

import (
	"context"
	"encoding/json"

	"github.com/jeeves-cluster-organization/zapcore/commbus"
)

// InvokeFunc runs an adapted tool against raw (possibly malformed) JSON
// arguments and returns a raw JSON result string.
type InvokeFunc func(ctx context.Context, rawArgs json.RawMessage) (string, error)

// Adapter wraps a single invocable capability. Name is the
// runtime-facing identifier (dots replaced with underscores, e.g.
// "fs_read"); ToolID is the underlying catalog identifier it was
// discovered under (e.g. "native/fs.read@1.0.0").
type Adapter struct {
	Name        string
	ToolID      string
	Description string
	InputSchema map[string]any
	RiskLevel   commbus.RiskLevel
	Invoke      InvokeFunc
}

// invoke calls the adapter with rawArgs, substituting an empty object
// when rawArgs is empty (matching a caller that passes no arguments).
func (a *Adapter) invoke(ctx context.Context, rawArgs json.RawMessage) (string, error) {
	if len(rawArgs) == 0 {
		rawArgs = json.RawMessage("{}")
	}
	return a.Invoke(ctx, rawArgs)
}

// invalidJSONResult is returned by every adapter when its input cannot
// be parsed as JSON, matching the malformed-input contract all
// generated tools share.
const invalidJSONResult = `{"error":"Invalid JSON input"}`

func errorResult(message string) string {
	data, err := json.Marshal(map[string]string{"error": message})
	if err != nil {
		return invalidJSONResult
	}
	return string(data)
}
