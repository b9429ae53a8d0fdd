// Package zapclient implements a ZAP protocol client: connection
// lifecycle, the request/response multiplexer, the tool catalog façade,
// resource access, consensus delegation, and the canonical convenience
// tools (fs.read, fs.write, fs.glob, proc.run, vcs.status, net.fetch).
package zapclient

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jeeves-cluster-organization/zapcore/commbus"
	"github.com/jeeves-cluster-organization/zapcore/coreengine/observability"
	"github.com/jeeves-cluster-organization/zapcore/coreengine/typeutil"
	"github.com/jeeves-cluster-organization/zapcore/zapconfig"
	"github.com/jeeves-cluster-organization/zapcore/zaptransport"
	"github.com/jeeves-cluster-organization/zapcore/zaptypes"
	"github.com/jeeves-cluster-organization/zapcore/zapwire"
)

var tracer = otel.Tracer("zapcore/zapclient")

// ClientName/ClientVersion identify this implementation in the Hello
// handshake sent to every endpoint.
const (
	ClientName    = "zapcore"
	ClientVersion = "0.2.1"
)

// pendingResult is delivered to a blocked request() caller once the
// receive loop observes a response or error frame correlated to its id.
type pendingResult struct {
	payload map[string]any
	isError bool
	errMsg  zapwire.Message
}

// Client is a connection to a single ZAP endpoint. A Client is safe for
// concurrent use once Connect has returned successfully: multiple
// goroutines may call request methods concurrently, but only one
// goroutine should call Connect or Close at a time.
type Client struct {
	endpoint zaptransport.Endpoint
	config   *zapconfig.ClientConfig
	bus      commbus.CommBus

	mu      sync.Mutex // guards conn, welcome, cancel during Connect/Close
	conn    *zaptransport.Conn
	welcome *zaptypes.Welcome
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	connected atomic.Bool

	pendingMu sync.Mutex
	pending   map[string]chan pendingResult

	// toolsCache is the catalog façade's snapshot: populated once on a
	// successful Connect to a catalog-capable endpoint and cleared on
	// teardown. Readers observe either the pre- or post-refresh snapshot
	// atomically; it is replaced wholesale, never mutated in place.
	toolsCache atomic.Pointer[map[string]zaptypes.Tool]
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithCommBus attaches a commbus.CommBus that the client publishes
// connection lifecycle and tool invocation events to. Without one, the
// client operates silently.
func WithCommBus(bus commbus.CommBus) Option {
	return func(c *Client) { c.bus = bus }
}

// New constructs a Client for endpoint, not yet connected. A nil config
// falls back to the process-wide configuration.
func New(endpoint zaptransport.Endpoint, config *zapconfig.ClientConfig, opts ...Option) *Client {
	if config == nil {
		config = zapconfig.GetClientConfig()
	}
	c := &Client{
		endpoint: endpoint,
		config:   config,
		pending:  make(map[string]chan pendingResult),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FromURI parses uri ("zap://", "zap+tls://", or "zap+unix://") and
// constructs a Client targeting it. The client is not yet connected.
func FromURI(uri string, config *zapconfig.ClientConfig, opts ...Option) (*Client, error) {
	endpoint, err := zaptransport.ParseURI(uri)
	if err != nil {
		return nil, err
	}
	return New(endpoint, config, opts...), nil
}

// IsConnected reports whether the client currently holds a live
// connection.
func (c *Client) IsConnected() bool {
	return c.connected.Load()
}

// Welcome returns the handshake response received from the endpoint, or
// nil if the client has never connected successfully.
func (c *Client) Welcome() *zaptypes.Welcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.welcome
}

// Connect dials the endpoint, performs the hello/welcome handshake, and
// starts the background receive loop. Calling Connect while already
// connected returns the existing welcome without redialing.
func (c *Client) Connect(ctx context.Context) (*zaptypes.Welcome, error) {
	c.mu.Lock()
	if c.connected.Load() {
		welcome := c.welcome
		c.mu.Unlock()
		return welcome, nil
	}
	c.mu.Unlock()

	dialTimeout := time.Duration(c.config.DialTimeoutMs) * time.Millisecond
	conn, err := zaptransport.Dial(ctx, c.endpoint, dialTimeout, c.config.MaxFrameBytes)
	if err != nil {
		return nil, newProtocolError(zaptypes.ErrorCodeNotConnected, fmt.Sprintf("connect: %v", err))
	}

	loopCtx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	c.conn = conn
	c.cancel = cancel
	c.mu.Unlock()

	c.connected.Store(true)
	c.wg.Add(1)
	go c.receiveLoop(loopCtx)

	hello := zaptypes.NewHello(ClientName, ClientVersion)
	payload, err := toPayload(hello)
	if err != nil {
		c.teardown("handshake_failed", err)
		return nil, newConnectionError("encode hello", err)
	}

	resp, err := c.request(ctx, "initialize", payload)
	if err != nil {
		c.teardown("handshake_failed", err)
		return nil, err
	}

	var welcome zaptypes.Welcome
	if err := decodeInto(resp, &welcome); err != nil {
		c.teardown("handshake_failed", err)
		return nil, newConnectionError("decode welcome", err)
	}

	if !compatibleProtocolVersion(hello.ProtocolVersion, welcome.ProtocolVersion) {
		err := newProtocolError(zaptypes.ErrorCodeProtocolError, fmt.Sprintf(
			"protocol version mismatch: client %q, endpoint %q", hello.ProtocolVersion, welcome.ProtocolVersion))
		c.teardown("handshake_failed", err)
		return nil, err
	}

	c.mu.Lock()
	c.welcome = &welcome
	c.mu.Unlock()

	observability.RecordClientConnection("established")
	c.publish(ctx, &commbus.ConnectionEstablished{
		Endpoint:        c.endpoint.Address,
		ProtocolVersion: welcome.ProtocolVersion,
		EndpointName:    welcome.EndpointInfo.Name,
	})

	if welcome.Capabilities.Catalog {
		c.refreshToolsCache(ctx)
	}

	return &welcome, nil
}

// refreshToolsCache fetches the full catalog and atomically swaps it into
// the client's snapshot. Population is best-effort: an endpoint that
// advertises catalog support but fails to answer leaves Connect
// successful with an empty cache rather than failing the handshake.
func (c *Client) refreshToolsCache(ctx context.Context) {
	tools, err := c.ListTools(ctx, false)
	if err != nil {
		return
	}
	snapshot := make(map[string]zaptypes.Tool, len(tools))
	for _, tool := range tools {
		snapshot[tool.ID.String()] = tool
	}
	c.toolsCache.Store(&snapshot)
}

// CachedTools returns the catalog façade's current snapshot, lazily
// populating it with a live fetch if Connect never did (e.g. an endpoint
// that did not advertise catalog support at handshake time). The returned
// map is the façade's own snapshot and must not be mutated by callers.
func (c *Client) CachedTools(ctx context.Context) map[string]zaptypes.Tool {
	if snapshot := c.toolsCache.Load(); snapshot != nil {
		return *snapshot
	}
	c.refreshToolsCache(ctx)
	if snapshot := c.toolsCache.Load(); snapshot != nil {
		return *snapshot
	}
	return map[string]zaptypes.Tool{}
}

// Close ends the connection, failing any pending requests and stopping
// the receive loop. Close is idempotent.
func (c *Client) Close() error {
	return c.teardown("closed", nil)
}

func (c *Client) teardown(reason string, cause error) error {
	if !c.connected.CompareAndSwap(true, false) {
		return nil
	}

	c.mu.Lock()
	conn := c.conn
	cancel := c.cancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	var closeErr error
	if conn != nil {
		closeErr = conn.Close()
	}
	c.wg.Wait()
	c.failAllPending(newConnectionError("connection closed", cause))
	c.toolsCache.Store(nil)

	var errStr *string
	if cause != nil {
		s := cause.Error()
		errStr = &s
	}
	observability.RecordClientConnection("closed")
	c.publish(context.Background(), &commbus.ConnectionClosed{
		Endpoint: c.endpoint.Address,
		Reason:   reason,
		Error:    errStr,
	})

	return closeErr
}

func (c *Client) publish(ctx context.Context, event commbus.Message) {
	if c.bus == nil {
		return
	}
	_ = c.bus.Publish(ctx, event)
}

// receiveLoop owns all reads from the connection. It runs until the
// connection errors or ctx is cancelled, delivering each frame to the
// pending request channel keyed by its id.
func (c *Client) receiveLoop(ctx context.Context) {
	defer c.wg.Done()

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	for {
		msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.failAllPending(newConnectionError("transport read failed", err))
			// Full teardown (conn close, lifecycle event) must happen off
			// this goroutine: teardown waits for the receive loop to exit.
			go c.teardown("transport_error", err)
			return
		}

		c.pendingMu.Lock()
		ch, ok := c.pending[msg.ID]
		if ok {
			delete(c.pending, msg.ID)
		}
		c.pendingMu.Unlock()

		if !ok {
			continue
		}

		if msg.Type == "error" {
			ch <- pendingResult{isError: true, errMsg: msg}
		} else {
			ch <- pendingResult{payload: msg.Payload}
		}
	}
}

func (c *Client) failAllPending(err error) {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()

	var zerr *zaptypes.ZapError
	if pe, ok := err.(*ProtocolError); ok {
		zerr = pe.Err
	} else {
		zerr = &zaptypes.ZapError{Code: zaptypes.ErrorCodeNotConnected, Message: err.Error()}
	}

	for id, ch := range c.pending {
		ch <- pendingResult{isError: true, errMsg: zapwire.Message{
			Type:    "error",
			ID:      id,
			Payload: map[string]any{"code": string(zerr.Code), "message": zerr.Message},
		}}
		delete(c.pending, id)
	}
}

// request sends method with params as a new correlated message and
// blocks until a response arrives, ctx is cancelled, or the configured
// request timeout elapses.
func (c *Client) request(ctx context.Context, method string, params map[string]any) (map[string]any, error) {
	id := uuid.NewString()
	ctx, span := tracer.Start(ctx, "zap.request", trace.WithAttributes(
		attribute.String("zap.method", method),
		attribute.String("zap.id", id),
	))
	defer span.End()

	start := time.Now()
	payload, err := c.doRequestWithID(ctx, method, id, params)
	status := "success"
	if err != nil {
		status = "error"
		if pe, ok := err.(*ProtocolError); ok && pe.Err.Code == zaptypes.ErrorCodeTimeout {
			status = "timeout"
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "success")
	}
	observability.RecordClientRequest(method, status, int(time.Since(start).Milliseconds()))
	return payload, err
}

func (c *Client) doRequestWithID(ctx context.Context, method, id string, params map[string]any) (map[string]any, error) {
	if !c.connected.Load() {
		return nil, newProtocolError(zaptypes.ErrorCodeNotConnected, "not connected")
	}

	ch := make(chan pendingResult, 1)

	c.pendingMu.Lock()
	c.pending[id] = ch
	c.pendingMu.Unlock()

	msg := zapwire.New(method, id, params)

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
		return nil, newProtocolError(zaptypes.ErrorCodeNotConnected, "not connected")
	}

	if err := conn.WriteMessage(msg); err != nil {
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
		return nil, newConnectionError("write request", err)
	}

	timeout := time.Duration(c.config.RequestTimeoutMs) * time.Millisecond
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case result := <-ch:
		if result.isError {
			return nil, protocolErrorFromMessage(result.errMsg)
		}
		return result.payload, nil
	case <-ctx.Done():
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
		return nil, ctx.Err()
	case <-timer.C:
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
		return nil, newProtocolError(zaptypes.ErrorCodeTimeout, fmt.Sprintf("request %q timed out after %s", method, timeout))
	}
}

// compatibleProtocolVersion reports whether client and endpoint agree on
// the major protocol version component. Minor and patch differences are
// negotiable; a major mismatch means the wire contract itself may differ,
// so the handshake is rejected instead.
func compatibleProtocolVersion(clientVersion, endpointVersion string) bool {
	clientMajor, _, _ := strings.Cut(clientVersion, ".")
	endpointMajor, _, _ := strings.Cut(endpointVersion, ".")
	return clientMajor != "" && clientMajor == endpointMajor
}

func protocolErrorFromMessage(msg zapwire.Message) *ProtocolError {
	code, _ := typeutil.SafeString(msg.Payload["code"])
	message, _ := typeutil.SafeString(msg.Payload["message"])
	if code == "" {
		code = string(zaptypes.ErrorCodeInternalError)
	}
	return &ProtocolError{Err: &zaptypes.ZapError{
		Code:    zaptypes.ErrorCode(code),
		Message: message,
		Details: msg.Payload["details"],
	}}
}
