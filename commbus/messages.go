// Package commbus provides CommBus message definitions for the ZAP client
// runtime. Messages are organized by domain.
//
// Categories:
//   - EVENT: Fire-and-forget, fan-out to subscribers
//   - QUERY: Request-response, single handler
//   - COMMAND: Fire-and-forget, single handler
package commbus

// =============================================================================
// MESSAGE CATEGORIES
// =============================================================================

// MessageCategory represents message routing categories.
type MessageCategory string

const (
	// MessageCategoryEvent represents fire-and-forget, fan-out to all subscribers.
	MessageCategoryEvent MessageCategory = "event"
	// MessageCategoryQuery represents request-response, single handler.
	MessageCategoryQuery MessageCategory = "query"
	// MessageCategoryCommand represents fire-and-forget, single handler.
	MessageCategoryCommand MessageCategory = "command"
)

// HealthStatus represents canonical health status values.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
	HealthStatusUnknown   HealthStatus = "unknown"
)

// =============================================================================
// CONNECTION LIFECYCLE EVENTS
// =============================================================================

// ConnectionEstablished is emitted once a client completes the handshake
// with an endpoint and holds a Welcome.
// Subscribers: telemetry, reconnect supervisors.
type ConnectionEstablished struct {
	Endpoint        string `json:"endpoint"`
	ProtocolVersion string `json:"protocol_version"`
	EndpointName    string `json:"endpoint_name"`
}

// Category implements the Message interface.
func (m *ConnectionEstablished) Category() string { return string(MessageCategoryEvent) }

// ConnectionClosed is emitted when a client connection ends, whether by an
// explicit Close or a transport failure.
type ConnectionClosed struct {
	Endpoint string  `json:"endpoint"`
	Reason   string  `json:"reason"` // "closed", "transport_error", "handshake_failed"
	Error    *string `json:"error,omitempty"`
}

// Category implements the Message interface.
func (m *ConnectionClosed) Category() string { return string(MessageCategoryEvent) }

// =============================================================================
// TOOL INVOCATION EVENTS
// =============================================================================

// ToolInvoked is emitted after a catalog.invoke round trip completes,
// successfully or not.
// Subscribers: telemetry, governance, audit logging.
type ToolInvoked struct {
	ToolID     string `json:"tool_id"`
	Success    bool   `json:"success"`
	DurationNs int64  `json:"duration_ns"`
	ErrorCode  string `json:"error_code,omitempty"`
}

// Category implements the Message interface.
func (m *ToolInvoked) Category() string { return string(MessageCategoryEvent) }

// =============================================================================
// CONSENSUS EVENTS
// =============================================================================

// ConsensusDecided is emitted once a coordinator reaches a decision, win or
// exhaust-rounds.
type ConsensusDecided struct {
	Question   string  `json:"question"`
	Round      int     `json:"round"`
	Confidence float64 `json:"confidence"`
	Mode       string  `json:"mode"` // "gateway" or "local"
}

// Category implements the Message interface.
func (m *ConsensusDecided) Category() string { return string(MessageCategoryEvent) }

// =============================================================================
// CONFIG QUERIES
// =============================================================================

// GetSettings queries application settings.
type GetSettings struct {
	Key *string `json:"key,omitempty"` // nil = get all settings
}

// Category implements the Message interface.
func (m *GetSettings) Category() string { return string(MessageCategoryQuery) }

// IsQuery implements the Query interface.
func (m *GetSettings) IsQuery() {}

// SettingsResponse is the response for GetSettings query.
type SettingsResponse struct {
	Values map[string]any `json:"values"`
}

// =============================================================================
// HEALTH CHECK EVENTS
// =============================================================================

// HealthCheckRequest requests health check from a component.
type HealthCheckRequest struct {
	Component string `json:"component"` // "gateway_conn", "coordinator"
}

// Category implements the Message interface.
func (m *HealthCheckRequest) Category() string { return string(MessageCategoryQuery) }

// IsQuery implements the Query interface.
func (m *HealthCheckRequest) IsQuery() {}

// HealthCheckResponse is the response for HealthCheckRequest.
type HealthCheckResponse struct {
	Component string         `json:"component"`
	Status    string         `json:"status"` // "healthy", "degraded", "unhealthy"
	Details   map[string]any `json:"details,omitempty"`
	LatencyMS *int           `json:"latency_ms,omitempty"`
}

// =============================================================================
// CACHE COMMANDS
// =============================================================================

// InvalidateCache is a command to invalidate cache entries. No handler
// for it is registered in this module.
type InvalidateCache struct {
	CacheName string  `json:"cache_name"`
	Key       *string `json:"key,omitempty"` // nil = invalidate all
}

// Category implements the Message interface.
func (m *InvalidateCache) Category() string { return string(MessageCategoryCommand) }

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// TypedMessage is an optional interface for messages that can provide their
// own type name.
type TypedMessage interface {
	Message
	MessageType() string
}

// GetMessageType returns the type name of a message for routing.
func GetMessageType(msg Message) string {
	if typed, ok := msg.(TypedMessage); ok {
		return typed.MessageType()
	}

	switch msg.(type) {
	case *ConnectionEstablished:
		return "ConnectionEstablished"
	case *ConnectionClosed:
		return "ConnectionClosed"
	case *ToolInvoked:
		return "ToolInvoked"
	case *ConsensusDecided:
		return "ConsensusDecided"
	case *GetSettings:
		return "GetSettings"
	case *HealthCheckRequest:
		return "HealthCheckRequest"
	case *InvalidateCache:
		return "InvalidateCache"
	default:
		return "Unknown"
	}
}
