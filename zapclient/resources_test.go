package zapclient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeeves-cluster-organization/zapcore/zaptypes"
	"github.com/jeeves-cluster-organization/zapcore/zapwire"
)

func TestClientListResourcesNoMore(t *testing.T) {
	client := connectedClient(t, func(msg zapwire.Message) fakeResponse {
		switch msg.Type {
		case "initialize":
			return fakeResponse{payload: defaultWelcomePayload()}
		case "resources.list":
			return fakeResponse{payload: map[string]any{
				"page": map[string]any{
					"resources": []any{map[string]any{"uri": "file:///a.txt", "name": "a.txt"}},
					"hasMore":   false,
				},
			}}
		default:
			t.Fatalf("unexpected request %q", msg.Type)
			return fakeResponse{}
		}
	})

	resources, next, err := client.ListResources(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, resources, 1)
	assert.Equal(t, "file:///a.txt", resources[0].URI)
	assert.Nil(t, next)
}

func TestClientListResourcesWithMore(t *testing.T) {
	client := connectedClient(t, func(msg zapwire.Message) fakeResponse {
		switch msg.Type {
		case "initialize":
			return fakeResponse{payload: defaultWelcomePayload()}
		case "resources.list":
			return fakeResponse{payload: map[string]any{
				"page": map[string]any{
					"resources":  []any{},
					"hasMore":    true,
					"nextCursor": map[string]any{"token": "face"},
				},
			}}
		default:
			t.Fatalf("unexpected request %q", msg.Type)
			return fakeResponse{}
		}
	})

	_, next, err := client.ListResources(context.Background(), nil)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, zaptypes.HexBytes{0xfa, 0xce}, *next)
}

func TestClientReadResourceText(t *testing.T) {
	client := connectedClient(t, func(msg zapwire.Message) fakeResponse {
		switch msg.Type {
		case "initialize":
			return fakeResponse{payload: defaultWelcomePayload()}
		case "resources.read":
			assert.Equal(t, "file:///a.txt", msg.Payload["uri"])
			return fakeResponse{payload: map[string]any{
				"content": map[string]any{"mimeType": "text/plain", "text": "hello world"},
			}}
		default:
			t.Fatalf("unexpected request %q", msg.Type)
			return fakeResponse{}
		}
	})

	mimeType, content, err := client.ReadResource(context.Background(), "file:///a.txt")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", mimeType)
	assert.Equal(t, "hello world", string(content))
}

func TestClientReadResourceBlob(t *testing.T) {
	client := connectedClient(t, func(msg zapwire.Message) fakeResponse {
		switch msg.Type {
		case "initialize":
			return fakeResponse{payload: defaultWelcomePayload()}
		case "resources.read":
			return fakeResponse{payload: map[string]any{
				"content": map[string]any{"mimeType": "application/octet-stream", "blob": "deadbeef"},
			}}
		default:
			t.Fatalf("unexpected request %q", msg.Type)
			return fakeResponse{}
		}
	})

	mimeType, content, err := client.ReadResource(context.Background(), "file:///a.bin")
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", mimeType)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, content)
}
