package zapclient

import (
	"github.com/google/uuid"

	"github.com/jeeves-cluster-organization/zapcore/zaptypes"
)

// makeContext builds a default CallContext carrying fresh trace/span ids
// and the client's configured request timeout.
func (c *Client) makeContext() zaptypes.CallContext {
	return zaptypes.CallContext{
		TraceID:   uuid.NewString(),
		SpanID:    uuid.NewString()[:16],
		TimeoutMs: c.config.RequestTimeoutMs,
	}
}
