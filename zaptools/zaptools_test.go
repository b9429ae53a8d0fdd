package zaptools

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jeeves-cluster-organization/zapcore/zapclient"
	"github.com/jeeves-cluster-organization/zapcore/zapconfig"
	"github.com/jeeves-cluster-organization/zapcore/zaptransport"
	"github.com/jeeves-cluster-organization/zapcore/zaptypes"
	"github.com/jeeves-cluster-organization/zapcore/zapwire"
)

type fakeResponse struct {
	payload map[string]any
	errCode zaptypes.ErrorCode
	errMsg  string
}

func newTestClient(t *testing.T, handler func(msg zapwire.Message) fakeResponse) *zapclient.Client {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		zconn := zaptransport.NewConn(conn, 0)
		for {
			msg, err := zconn.ReadMessage()
			if err != nil {
				return
			}
			resp := handler(msg)
			var out zapwire.Message
			if resp.errCode != "" {
				out = zapwire.New("error", msg.ID, map[string]any{
					"code": string(resp.errCode), "message": resp.errMsg,
				})
			} else {
				out = zapwire.New(msg.Type, msg.ID, resp.payload)
			}
			if err := zconn.WriteMessage(out); err != nil {
				return
			}
		}
	}()

	endpoint := zaptransport.Endpoint{Scheme: zaptransport.SchemeTCP, Address: ln.Addr().String()}
	cfg := zapconfig.DefaultClientConfig()
	cfg.RequestTimeoutMs = 2000
	cfg.DialTimeoutMs = 2000

	client := zapclient.New(endpoint, cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err = client.Connect(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func helloWelcomeResponse(msg zapwire.Message) (fakeResponse, bool) {
	if msg.Type != "initialize" {
		return fakeResponse{}, false
	}
	welcome := zaptypes.Welcome{
		ProtocolVersion: zaptypes.ProtocolVersion,
		EndpointInfo:    zaptypes.Implementation{Name: "fake-endpoint", Version: "1.0.0"},
		Capabilities:    zaptypes.EndpointCaps{Tools: true, Catalog: true},
	}
	data, _ := json.Marshal(welcome)
	var payload map[string]any
	_ = json.Unmarshal(data, &payload)
	return fakeResponse{payload: payload}, true
}

// defaultCatalogResponse answers the catalog.listTools request Connect
// issues right after the handshake to populate the tools cache, for
// handlers that don't otherwise care about the catalog's contents.
func defaultCatalogResponse(msg zapwire.Message) (fakeResponse, bool) {
	if msg.Type != "catalog.listTools" {
		return fakeResponse{}, false
	}
	return fakeResponse{payload: map[string]any{"tools": []any{}}}, true
}
