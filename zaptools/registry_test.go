package zaptools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeeves-cluster-organization/zapcore/commbus"
)

type recordingLogger struct {
	warnings []string
}

func (l *recordingLogger) Debug(msg string, keysAndValues ...any) {}
func (l *recordingLogger) Info(msg string, keysAndValues ...any)  {}
func (l *recordingLogger) Error(msg string, keysAndValues ...any) {}
func (l *recordingLogger) Warn(msg string, keysAndValues ...any) {
	l.warnings = append(l.warnings, msg)
}

func echoAdapter(name string) *Adapter {
	return &Adapter{
		Name:      name,
		ToolID:    "test/" + name,
		RiskLevel: commbus.RiskLevelReadOnly,
		Invoke: func(ctx context.Context, rawArgs json.RawMessage) (string, error) {
			return string(rawArgs), nil
		},
	}
}

func TestRegistryRegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	a := echoAdapter("fs_read")

	assert.True(t, reg.Register(a))
	got, ok := reg.Get("fs_read")
	require.True(t, ok)
	assert.Same(t, a, got)
}

func TestRegistryFirstRegisteredWins(t *testing.T) {
	reg := NewRegistry()
	first := echoAdapter("fs_read")
	second := echoAdapter("fs_read")
	second.ToolID = "mcp.github/fs_read"

	assert.True(t, reg.Register(first))
	assert.False(t, reg.Register(second))

	got, ok := reg.Get("fs_read")
	require.True(t, ok)
	assert.Equal(t, first.ToolID, got.ToolID)
}

func TestRegistryFirstRegisteredWinsLogsDuplicate(t *testing.T) {
	logger := &recordingLogger{}
	reg := NewRegistryWithLogger(logger)
	first := echoAdapter("fs_read")
	second := echoAdapter("fs_read")

	assert.True(t, reg.Register(first))
	assert.False(t, reg.Register(second))
	assert.Len(t, logger.warnings, 1)
}

func TestRegistryList(t *testing.T) {
	reg := NewRegistry()
	reg.Register(echoAdapter("b_tool"))
	reg.Register(echoAdapter("a_tool"))

	names := make([]string, 0)
	for _, a := range reg.List() {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"a_tool", "b_tool"}, names)
}

func TestRegistryInvoke(t *testing.T) {
	reg := NewRegistry()
	reg.Register(echoAdapter("fs_read"))

	result, err := reg.Invoke(context.Background(), "fs_read", json.RawMessage(`{"path":"/a"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"path":"/a"}`, result)
}

func TestRegistryInvokeEmptyArgs(t *testing.T) {
	reg := NewRegistry()
	reg.Register(echoAdapter("vcs_status"))

	result, err := reg.Invoke(context.Background(), "vcs_status", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, result)
}

func TestRegistryInvokeUnknown(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Invoke(context.Background(), "missing", nil)
	require.Error(t, err)
}

func TestRegistryHas(t *testing.T) {
	reg := NewRegistry()
	assert.False(t, reg.Has("fs_read"))
	reg.Register(echoAdapter("fs_read"))
	assert.True(t, reg.Has("fs_read"))
}
