package main

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeeves-cluster-organization/zapcore/zapclient"
	"github.com/jeeves-cluster-organization/zapcore/zaptransport"
	"github.com/jeeves-cluster-organization/zapcore/zaptypes"
	"github.com/jeeves-cluster-organization/zapcore/zapwire"
)

// fakeEndpoint is a minimal single-connection ZAP endpoint, mirroring
// zapclient's own test helper, used here to exercise runOp's dispatch
// without a real gateway.
type fakeEndpoint struct {
	listener net.Listener
	uri      string
}

func newFakeEndpoint(t *testing.T, handler func(msg zapwire.Message) (map[string]any, *zaptypes.ZapError)) *fakeEndpoint {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	fe := &fakeEndpoint{listener: ln, uri: "zap://" + ln.Addr().String()}

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

			var out zapwire.Message
			if msg.Type == "initialize" {
				welcome := zaptypes.Welcome{
					ProtocolVersion: zaptypes.ProtocolVersion,
					EndpointInfo:    zaptypes.Implementation{Name: "fake-endpoint", Version: "1.0.0"},
					Capabilities:    zaptypes.EndpointCaps{Tools: true, Catalog: true, Coordination: true},
				}
				payload, _ := toMap(welcome)
				out = zapwire.New("initialize", msg.ID, payload)
			} else {
				payload, zerr := handler(msg)
				if zerr != nil {
					out = zapwire.New("error", msg.ID, map[string]any{"code": string(zerr.Code), "message": zerr.Message})
				} else {
					out = zapwire.New(msg.Type, msg.ID, payload)
				}
			}

			if err := zconn.WriteMessage(out); err != nil {
				return
			}
		}
	}()

	t.Cleanup(func() { _ = ln.Close() })
	return fe
}

func toMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func connectToFake(t *testing.T, fe *fakeEndpoint) *zapclient.Client {
	t.Helper()
	client, err := zapclient.FromURI(fe.uri, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = client.Connect(ctx)
	require.NoError(t, err)

	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRunOpList(t *testing.T) {
	fe := newFakeEndpoint(t, func(msg zapwire.Message) (map[string]any, *zaptypes.ZapError) {
		if msg.Type != "catalog.listTools" {
			return nil, &zaptypes.ZapError{Code: zaptypes.ErrorCodeUnknownAction, Message: "unexpected"}
		}
		tools := []map[string]any{
			{"id": map[string]any{"namespace": "native", "name": "fs.read", "version": "1.0.0"}, "stability": "stable"},
		}
		return map[string]any{"tools": tools}, nil
	})
	client := connectToFake(t, fe)

	ctx := context.Background()
	result, err := runOp(ctx, client, "list", "", "", "{}", "", "", false, nil)
	require.NoError(t, err)

	tools, ok := result.([]zaptypes.Tool)
	require.True(t, ok)
	require.Len(t, tools, 1)
	assert.Equal(t, "fs.read", tools[0].ID.Name)
}

func TestRunOpCallWithInvalidArgs(t *testing.T) {
	fe := newFakeEndpoint(t, func(msg zapwire.Message) (map[string]any, *zaptypes.ZapError) {
		return map[string]any{"result": "ok"}, nil
	})
	client := connectToFake(t, fe)

	_, err := runOp(context.Background(), client, "call", "", "native/fs.read", "not json", "", "", false, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid -args JSON")
}

func TestRunOpConsensus(t *testing.T) {
	fe := newFakeEndpoint(t, func(msg zapwire.Message) (map[string]any, *zaptypes.ZapError) {
		if msg.Type != "coordination.committee" {
			return nil, &zaptypes.ZapError{Code: zaptypes.ErrorCodeUnknownAction, Message: "unexpected"}
		}
		return map[string]any{
			"answer": "use postgres",
			"certificate": map[string]any{
				"topic": "", "proposalHash": "", "round": 2, "confidence": 0.83, "attestors": []map[string]any{}, "timestamp": 0,
			},
		}, nil
	})
	client := connectToFake(t, fe)

	result, err := runOp(context.Background(), client, "consensus", "", "", "{}", "use postgres or sqlite?", "model-a,model-b", false, nil)
	require.NoError(t, err)

	out, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "use postgres", out["answer"])
}

func TestRunOpUnknown(t *testing.T) {
	fe := newFakeEndpoint(t, func(msg zapwire.Message) (map[string]any, *zaptypes.ZapError) {
		return map[string]any{}, nil
	})
	client := connectToFake(t, fe)

	_, err := runOp(context.Background(), client, "bogus", "", "", "{}", "", "", false, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown -op")
}

func TestSplitNonEmpty(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitNonEmpty("a,b,c"))
	assert.Nil(t, splitNonEmpty(""))
	assert.Equal(t, []string{"a"}, splitNonEmpty("a"))
	assert.Equal(t, []string{"a", "b"}, splitNonEmpty("a,,b"))
}
