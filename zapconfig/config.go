// Package zapconfig provides configuration for ZAP clients and the
// consensus coordinator.
//
// This module contains ONLY configuration relevant to the wire client and
// coordinator: timeouts, frame limits, and consensus thresholds. Endpoint
// URIs and credentials are supplied by the caller at construction time,
// not read from environment here.
package zapconfig

import (
	"sync"

	"github.com/jeeves-cluster-organization/zapcore/coreengine/typeutil"
	"github.com/jeeves-cluster-organization/zapcore/zaptypes"
)

// ClientConfig holds tunables for a zapclient.Client.
type ClientConfig struct {
	// RequestTimeoutMs bounds how long a single request/response
	// round-trip may take before the pending entry is failed locally.
	RequestTimeoutMs int `json:"request_timeout_ms"`

	// DialTimeoutMs bounds the initial connection attempt.
	DialTimeoutMs int `json:"dial_timeout_ms"`

	// MaxFrameBytes rejects any incoming frame whose declared length
	// exceeds this ceiling, before allocating a buffer for it.
	MaxFrameBytes int `json:"max_frame_bytes"`
}

// DefaultClientConfig returns a ClientConfig with default values.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		RequestTimeoutMs: 30_000,
		DialTimeoutMs:    5_000,
		MaxFrameBytes:    16 * 1024 * 1024,
	}
}

// ClientConfigFromMap creates a ClientConfig from a map, tolerating both
// int and float64 numeric forms (as produced by decoding arbitrary JSON).
// Unknown keys are ignored.
func ClientConfigFromMap(config map[string]any) *ClientConfig {
	c := DefaultClientConfig()

	if v, ok := typeutil.SafeInt(config["request_timeout_ms"]); ok {
		c.RequestTimeoutMs = v
	}
	if v, ok := typeutil.SafeInt(config["dial_timeout_ms"]); ok {
		c.DialTimeoutMs = v
	}
	if v, ok := typeutil.SafeInt(config["max_frame_bytes"]); ok {
		c.MaxFrameBytes = v
	}

	return c
}

// ToMap converts the config to a map.
func (c *ClientConfig) ToMap() map[string]any {
	return map[string]any{
		"request_timeout_ms": c.RequestTimeoutMs,
		"dial_timeout_ms":    c.DialTimeoutMs,
		"max_frame_bytes":    c.MaxFrameBytes,
	}
}

// ConsensusConfigFromMap creates a zaptypes.ConsensusConfig from a map,
// tolerating both int and float64 numeric forms. Unknown keys are
// ignored; absent keys keep their defaults. The result is not validated
// here — the coordinator checks constraints at decision time.
func ConsensusConfigFromMap(config map[string]any) *zaptypes.ConsensusConfig {
	c := zaptypes.DefaultConsensusConfig()

	if v, ok := typeutil.SafeInt(config["rounds"]); ok {
		c.Rounds = v
	}
	if v, ok := typeutil.SafeInt(config["k"]); ok {
		c.K = v
	}
	if v, ok := typeutil.SafeFloat64(config["alpha"]); ok {
		c.Alpha = v
	}
	if v, ok := typeutil.SafeFloat64(config["beta1"]); ok {
		c.Beta1 = v
	}
	if v, ok := typeutil.SafeFloat64(config["beta2"]); ok {
		c.Beta2 = v
	}
	if v, ok := typeutil.SafeInt(config["timeoutMs"]); ok {
		c.TimeoutMs = v
	}

	return &c
}

// =============================================================================
// GLOBAL CLIENT CONFIG (optional convenience for single-client processes)
// =============================================================================

var (
	globalClientConfig *ClientConfig
	configMu           sync.RWMutex
)

// GetClientConfig returns the process-wide client configuration, or
// defaults if none has been set.
func GetClientConfig() *ClientConfig {
	configMu.RLock()
	defer configMu.RUnlock()

	if globalClientConfig == nil {
		return DefaultClientConfig()
	}
	return globalClientConfig
}

// SetClientConfig installs a process-wide client configuration.
func SetClientConfig(config *ClientConfig) {
	configMu.Lock()
	defer configMu.Unlock()

	globalClientConfig = config
}

// ResetClientConfig clears the process-wide client configuration so that
// GetClientConfig again returns defaults. Useful in tests.
func ResetClientConfig() {
	configMu.Lock()
	defer configMu.Unlock()

	globalClientConfig = nil
}
