package zapclient

import (
	"context"

	"github.com/jeeves-cluster-organization/zapcore/zaptypes"
)

// TaskStatus fetches the current status of an asynchronous task
// previously started by a tool invocation that returned a task id
// instead of a result (catalog entries that advertise async execution
// in their EndpointCaps).
func (c *Client) TaskStatus(ctx context.Context, taskID string) (zaptypes.TaskStatus, error) {
	callCtx, err := toPayload(c.makeContext())
	if err != nil {
		return zaptypes.TaskStatus{}, err
	}

	resp, err := c.request(ctx, "tasks.status", map[string]any{
		"taskId": taskID,
		"ctx":    callCtx,
	})
	if err != nil {
		return zaptypes.TaskStatus{}, err
	}

	var decoded struct {
		Status zaptypes.TaskStatus `json:"status"`
	}
	if err := decodeInto(resp, &decoded); err != nil {
		return zaptypes.TaskStatus{}, newConnectionError("decode tasks.status response", err)
	}
	return decoded.Status, nil
}
