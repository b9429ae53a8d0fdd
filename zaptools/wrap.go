package zaptools

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/jeeves-cluster-organization/zapcore/commbus"
	"github.com/jeeves-cluster-organization/zapcore/zapclient"
	"github.com/jeeves-cluster-organization/zapcore/zaptypes"
)

// normalizeName replaces the dots in a tool's short name with
// underscores, so it can be exposed under an identifier most runtime
// call-sites (Lua tables, shell-safe function names, ...) accept.
func normalizeName(shortName string) string {
	return strings.ReplaceAll(shortName, ".", "_")
}

// WrapTool adapts a discovered catalog Tool into an Adapter that
// invokes it on client. Tools that are not idempotent are classified
// Write; idempotent tools are classified ReadOnly, since the wire
// protocol does not report a risk level directly.
func WrapTool(client *zapclient.Client, tool zaptypes.Tool) *Adapter {
	fullName := tool.FullName()
	risk := commbus.RiskLevelReadOnly
	if !tool.Idempotent {
		risk = commbus.RiskLevelWrite
	}

	return &Adapter{
		Name:        normalizeName(tool.Name()),
		ToolID:      fullName,
		Description: tool.Description,
		InputSchema: convertSchema(tool.InputSchema),
		RiskLevel:   risk,
		Invoke: func(ctx context.Context, rawArgs json.RawMessage) (string, error) {
			var args map[string]any
			if err := json.Unmarshal(rawArgs, &args); err != nil {
				return errorResult("Invalid JSON input"), nil
			}

			result, err := client.CallTool(ctx, fullName, args, nil)
			if err != nil {
				return toolErrorOrPropagate(err)
			}
			if !result.Success {
				message := "Unknown error"
				if result.Error != nil {
					message = result.Error.Message
				}
				return errorResult(message), nil
			}

			if s, ok := result.Data.(string); ok {
				return s, nil
			}
			data, err := json.Marshal(result.Data)
			if err != nil {
				return "", err
			}
			return string(data), nil
		},
	}
}

// convertSchema fills in the JSON Schema defaults a ZAP endpoint's
// inputSchema may omit, matching the permissive shape callers expect.
func convertSchema(schema map[string]any) map[string]any {
	out := make(map[string]any, len(schema)+4)
	for k, v := range schema {
		out[k] = v
	}
	if _, ok := out["type"]; !ok {
		out["type"] = "object"
	}
	if _, ok := out["properties"]; !ok {
		out["properties"] = map[string]any{}
	}
	if _, ok := out["required"]; !ok {
		out["required"] = []string{}
	}
	if _, ok := out["additionalProperties"]; !ok {
		out["additionalProperties"] = false
	}
	return out
}

// DiscoverTools reads client's cached catalog snapshot, filters it by
// namespace (exact match), short-name prefix, and — when certifiedOnly is
// set — stability (only "stable" tools pass), wraps each surviving tool as
// an Adapter, and registers it. Adapter instances are memoized by tool id
// on reg, so a repeated DiscoverTools call over an unchanged catalog
// returns the same *Adapter it returned before rather than re-wrapping.
// The returned slice holds only the adapters newly registered this call
// (a tool whose normalized name collides with one already in reg is
// skipped, first-registered-wins).
func DiscoverTools(ctx context.Context, client *zapclient.Client, reg *Registry, namespace, prefix string, certifiedOnly bool) ([]*Adapter, error) {
	snapshot := client.CachedTools(ctx)

	toolIDs := make([]string, 0, len(snapshot))
	for id := range snapshot {
		toolIDs = append(toolIDs, id)
	}
	sort.Strings(toolIDs)

	var registered []*Adapter
	for _, id := range toolIDs {
		tool := snapshot[id]
		if namespace != "" && tool.ID.Namespace != namespace {
			continue
		}
		if prefix != "" && !strings.HasPrefix(tool.ID.Name, prefix) {
			continue
		}
		if certifiedOnly && tool.Stability != zaptypes.StabilityStable {
			continue
		}

		adapter, known := reg.adapterForToolID(id)
		if !known {
			adapter = WrapTool(client, tool)
			reg.rememberToolAdapter(id, adapter)
		}
		if reg.Register(adapter) {
			registered = append(registered, adapter)
		}
	}
	return registered, nil
}
