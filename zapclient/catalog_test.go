package zapclient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeeves-cluster-organization/zapcore/zaptypes"
	"github.com/jeeves-cluster-organization/zapcore/zapwire"
)

func sampleToolPayload(name string) map[string]any {
	tool := zaptypes.Tool{
		ID:          zaptypes.NewToolId("native", name, ""),
		Description: "a tool named " + name,
		Effect:      zaptypes.EffectDeterministic,
		Idempotent:  true,
		Provider:    "native",
		Stability:   zaptypes.StabilityStable,
	}
	payload, _ := toPayload(tool)
	return payload
}

func TestClientListTools(t *testing.T) {
	client := connectedClient(t, func(msg zapwire.Message) fakeResponse {
		switch msg.Type {
		case "initialize":
			return fakeResponse{payload: defaultWelcomePayload()}
		case "catalog.listTools":
			certifiedOnly, _ := msg.Payload["certifiedOnly"].(bool)
			assert.False(t, certifiedOnly)
			return fakeResponse{payload: map[string]any{
				"tools": []any{sampleToolPayload("fs.read"), sampleToolPayload("fs.write")},
			}}
		default:
			t.Fatalf("unexpected request %q", msg.Type)
			return fakeResponse{}
		}
	})

	tools, err := client.ListTools(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, tools, 2)
	assert.Equal(t, "fs.read", tools[0].Name())
	assert.Equal(t, "native/fs.read@1.0.0", tools[0].FullName())
}

func TestClientGetTool(t *testing.T) {
	client := connectedClient(t, func(msg zapwire.Message) fakeResponse {
		switch msg.Type {
		case "initialize":
			return fakeResponse{payload: defaultWelcomePayload()}
		case "catalog.getTool":
			idMap, _ := msg.Payload["id"].(map[string]any)
			assert.Equal(t, "fs.read", idMap["name"])
			return fakeResponse{payload: map[string]any{"tool": sampleToolPayload("fs.read")}}
		default:
			t.Fatalf("unexpected request %q", msg.Type)
			return fakeResponse{}
		}
	})

	tool, err := client.GetTool(context.Background(), "native/fs.read")
	require.NoError(t, err)
	assert.Equal(t, "fs.read", tool.Name())
}

func TestClientSearchTools(t *testing.T) {
	client := connectedClient(t, func(msg zapwire.Message) fakeResponse {
		switch msg.Type {
		case "initialize":
			return fakeResponse{payload: defaultWelcomePayload()}
		case "catalog.search":
			assert.Equal(t, "read", msg.Payload["query"])
			return fakeResponse{payload: map[string]any{
				"tools": []any{sampleToolPayload("fs.read")},
			}}
		default:
			t.Fatalf("unexpected request %q", msg.Type)
			return fakeResponse{}
		}
	})

	tools, err := client.SearchTools(context.Background(), "read")
	require.NoError(t, err)
	require.Len(t, tools, 1)
}

func TestClientCallToolSuccess(t *testing.T) {
	client := connectedClient(t, func(msg zapwire.Message) fakeResponse {
		switch msg.Type {
		case "initialize":
			return fakeResponse{payload: defaultWelcomePayload()}
		case "catalog.invoke":
			idMap, _ := msg.Payload["id"].(map[string]any)
			assert.Equal(t, "fs.read", idMap["name"])
			args, _ := msg.Payload["args"].(map[string]any)
			assert.Equal(t, "/etc/hosts", args["path"])
			return fakeResponse{payload: map[string]any{"result": map[string]any{"content": "localhost"}}}
		default:
			t.Fatalf("unexpected request %q", msg.Type)
			return fakeResponse{}
		}
	})

	result, err := client.CallTool(context.Background(), "native/fs.read", map[string]any{"path": "/etc/hosts"}, nil)
	require.NoError(t, err)
	assert.True(t, result.Success)
	data, _ := result.Data.(map[string]any)
	assert.Equal(t, "localhost", data["content"])
}

func TestClientCallToolEndpointError(t *testing.T) {
	client := connectedClient(t, func(msg zapwire.Message) fakeResponse {
		switch msg.Type {
		case "initialize":
			return fakeResponse{payload: defaultWelcomePayload()}
		case "catalog.invoke":
			return fakeResponse{errCode: zaptypes.ErrorCodeNotFound, errMsg: "no such file"}
		default:
			t.Fatalf("unexpected request %q", msg.Type)
			return fakeResponse{}
		}
	})

	result, err := client.CallTool(context.Background(), "native/fs.read", map[string]any{"path": "/missing"}, nil)
	require.NoError(t, err) // endpoint-side failures surface via ToolResult, not an error
	assert.False(t, result.Success)
	require.NotNil(t, result.Error)
	assert.Equal(t, zaptypes.ErrorCodeNotFound, result.Error.Code)
}
