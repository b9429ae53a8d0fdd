package zaptypes

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ToolId uniquely identifies a ZAP tool within an endpoint's catalog.
type ToolId struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
	Version   string `json:"version"`
}

// NewToolId builds a ToolId, defaulting Version to "1.0.0" when empty.
func NewToolId(namespace, name, version string) ToolId {
	if version == "" {
		version = "1.0.0"
	}
	return ToolId{Namespace: namespace, Name: name, Version: version}
}

// String renders the canonical "namespace/name@version" form.
func (t ToolId) String() string {
	return fmt.Sprintf("%s/%s@%s", t.Namespace, t.Name, t.Version)
}

// ParseToolId parses "namespace/name@version" or "namespace/name", defaulting
// namespace to "native" and version to "1.0.0" when omitted.
func ParseToolId(s string) ToolId {
	nsName, version := s, "1.0.0"
	if idx := strings.LastIndex(s, "@"); idx >= 0 {
		nsName, version = s[:idx], s[idx+1:]
	}
	namespace, name := "native", nsName
	if idx := strings.Index(nsName, "/"); idx >= 0 {
		namespace, name = nsName[:idx], nsName[idx+1:]
	}
	return ToolId{Namespace: namespace, Name: name, Version: version}
}

// Tool describes a single invocable capability advertised by an endpoint.
type Tool struct {
	ID           ToolId         `json:"id"`
	Description  string         `json:"description"`
	Effect       Effect         `json:"effect"`
	Idempotent   bool           `json:"idempotent"`
	InputSchema  map[string]any `json:"inputSchema"`
	OutputSchema map[string]any `json:"outputSchema"`
	Provider     string         `json:"provider"`
	Stability    Stability      `json:"stability"`
}

// Name returns the tool's short name (without namespace/version).
func (t Tool) Name() string {
	return t.ID.Name
}

// FullName returns the canonical "namespace/name@version" identifier.
func (t Tool) FullName() string {
	return t.ID.String()
}

// Resource describes a readable, URI-addressed piece of endpoint state.
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MimeType    string `json:"mimeType"`
	Size        int64  `json:"size"`
}

// ZapError is the structured error an endpoint returns for a failed call.
type ZapError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
}

func (e *ZapError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ToolResult is the outcome of invoking a tool.
type ToolResult struct {
	Success    bool      `json:"success"`
	Data       any       `json:"data,omitempty"`
	Error      *ZapError `json:"error,omitempty"`
	DurationNs int64     `json:"durationNs"`
}

// DeterminismContext pins a call to a reproducible execution environment.
type DeterminismContext struct {
	Timestamp   int64    `json:"timestamp"`
	RandomSeed  HexBytes `json:"randomSeed,omitempty"`
	ChainHeight int64    `json:"chainHeight"`
}

// CallContext carries tracing and determinism metadata alongside a tool
// invocation.
type CallContext struct {
	TraceID     string              `json:"traceId"`
	SpanID      string              `json:"spanId"`
	TimeoutMs   int                 `json:"timeout"`
	Determinism *DeterminismContext `json:"determinism,omitempty"`
}

// Progress reports incremental advancement of a long-running task.
type Progress struct {
	Done    int64  `json:"done"`
	Total   int64  `json:"total"`
	Message string `json:"message"`
}

// TaskStatus is the full status of an asynchronous task.
type TaskStatus struct {
	State     TaskState `json:"state"`
	Progress  Progress  `json:"progress"`
	StartedAt int64     `json:"startedAt"`
	UpdatedAt int64     `json:"updatedAt"`
}

// Implementation names a protocol participant and its version.
type Implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ClientCaps declares what a connecting client supports.
type ClientCaps struct {
	Roots        bool     `json:"roots"`
	Sampling     bool     `json:"sampling"`
	Elicitation  bool     `json:"elicitation"`
	Experimental []string `json:"experimental"`
}

// DefaultClientCaps returns the capability set a client advertises unless
// the caller overrides it.
func DefaultClientCaps() ClientCaps {
	return ClientCaps{Roots: true, Sampling: true, Elicitation: false}
}

// EndpointCaps declares what an endpoint supports. Core capabilities
// (tools, resources, catalog, coordination) are assumed granted unless
// the endpoint declares otherwise; optional surfaces (repl, notebook,
// browser, ...) must be advertised explicitly.
type EndpointCaps struct {
	Tools        bool     `json:"tools"`
	Resources    bool     `json:"resources"`
	Prompts      bool     `json:"prompts"`
	Tasks        bool     `json:"tasks"`
	Logging      bool     `json:"logging"`
	Repl         bool     `json:"repl"`
	Notebook     bool     `json:"notebook"`
	Browser      bool     `json:"browser"`
	Catalog      bool     `json:"catalog"`
	Coordination bool     `json:"coordination"`
	Experimental []string `json:"experimental"`
}

// UnmarshalJSON fills in the absent-flag defaults: core capability flags
// decode as true when the wire object omits them, optional ones as false.
func (c *EndpointCaps) UnmarshalJSON(data []byte) error {
	type plain EndpointCaps
	caps := plain{Tools: true, Resources: true, Catalog: true, Coordination: true}
	if err := json.Unmarshal(data, &caps); err != nil {
		return err
	}
	*c = EndpointCaps(caps)
	return nil
}

// ProtocolVersion is the version advertised in the current implementation's
// Hello/Welcome handshake.
const ProtocolVersion = "0.2.1"

// Hello is the client's handshake message.
type Hello struct {
	ProtocolVersion string         `json:"protocolVersion"`
	ClientInfo      Implementation `json:"clientInfo"`
	Capabilities    ClientCaps     `json:"capabilities"`
	SchemaHash      HexBytes       `json:"schemaHash,omitempty"`
}

// NewHello builds a Hello with the default protocol version and client
// capabilities, identifying the caller as clientName/clientVersion.
func NewHello(clientName, clientVersion string) Hello {
	return Hello{
		ProtocolVersion: ProtocolVersion,
		ClientInfo:      Implementation{Name: clientName, Version: clientVersion},
		Capabilities:    DefaultClientCaps(),
	}
}

// Welcome is the endpoint's handshake response.
type Welcome struct {
	ProtocolVersion string         `json:"protocolVersion"`
	EndpointInfo    Implementation `json:"endpointInfo"`
	Capabilities    EndpointCaps   `json:"capabilities"`
	Instructions    string         `json:"instructions"`
	SchemaHash      HexBytes       `json:"schemaHash,omitempty"`
}

// ConsensusConfig parameterizes a Snowball-style consensus round.
type ConsensusConfig struct {
	Rounds    int     `json:"rounds"`
	K         int     `json:"k"`
	Alpha     float64 `json:"alpha"`
	Beta1     float64 `json:"beta1"`
	Beta2     float64 `json:"beta2"`
	TimeoutMs int     `json:"timeoutMs"`
}

// DefaultConsensusConfig mirrors the thresholds used when a caller supplies
// no explicit ConsensusConfig.
func DefaultConsensusConfig() ConsensusConfig {
	return ConsensusConfig{Rounds: 3, K: 5, Alpha: 0.6, Beta1: 0.8, Beta2: 0.9, TimeoutMs: 10000}
}

// Validate checks the structural constraints on the config: rounds and k
// must be at least 1, and the thresholds must satisfy
// 0 < alpha <= beta1 <= beta2 <= 1.
func (c ConsensusConfig) Validate() error {
	if c.Rounds < 1 {
		return &ZapError{Code: ErrorCodeInvalidParams, Message: fmt.Sprintf("consensus rounds must be >= 1, got %d", c.Rounds)}
	}
	if c.K < 1 {
		return &ZapError{Code: ErrorCodeInvalidParams, Message: fmt.Sprintf("consensus sample size k must be >= 1, got %d", c.K)}
	}
	if !(c.Alpha > 0 && c.Alpha <= c.Beta1 && c.Beta1 <= c.Beta2 && c.Beta2 <= 1) {
		return &ZapError{
			Code:    ErrorCodeInvalidParams,
			Message: fmt.Sprintf("consensus thresholds must satisfy 0 < alpha <= beta1 <= beta2 <= 1, got alpha=%v beta1=%v beta2=%v", c.Alpha, c.Beta1, c.Beta2),
		}
	}
	return nil
}

// ConsensusVote is one participant's contribution to a consensus round.
type ConsensusVote struct {
	Round      int      `json:"round"`
	PeerID     string   `json:"peerId"`
	Vote       HexBytes `json:"vote"`
	Confidence float64  `json:"confidence"`
	Luminance  float64  `json:"luminance"`
	Signature  HexBytes `json:"signature,omitempty"`
	Timestamp  int64    `json:"timestamp"`
}

// Certificate attests that a consensus decision was reached.
type Certificate struct {
	Topic        HexBytes         `json:"topic"`
	ProposalHash HexBytes         `json:"proposalHash"`
	Round        int              `json:"round"`
	Confidence   float64          `json:"confidence"`
	Attestors    []map[string]any `json:"attestors"`
	Timestamp    int64            `json:"timestamp"`
}

// ConsensusResult is the outcome of a consensus decision.
type ConsensusResult struct {
	Winner      HexBytes        `json:"winner"`
	Synthesis   string          `json:"synthesis"`
	Confidence  float64         `json:"confidence"`
	Round       int             `json:"round"`
	Votes       []ConsensusVote `json:"votes"`
	Certificate *Certificate    `json:"certificate,omitempty"`
	DurationNs  int64           `json:"durationNs"`
}
