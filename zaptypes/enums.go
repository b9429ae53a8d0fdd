// Package zaptypes defines the ZAP wire data model: tool and resource
// descriptors, call context, results and errors, handshake messages, and
// the consensus primitives shared by zapclient and zapconsensus.
package zaptypes

// =============================================================================
// CANONICAL ENUMS
// =============================================================================

// Effect classifies the side effects a tool invocation may have.
type Effect string

const (
	EffectPure             Effect = "pure"
	EffectDeterministic    Effect = "deterministic"
	EffectNondeterministic Effect = "nondeterministic"
)

// Scope describes the level at which a tool operation applies. Endpoints
// report it on Tool definitions; nothing in this module currently branches
// on it, it is carried through verbatim for callers that filter tools by
// scope.
type Scope string

const (
	ScopeSpan      Scope = "span"
	ScopeFile      Scope = "file"
	ScopeRepo      Scope = "repo"
	ScopeWorkspace Scope = "workspace"
	ScopeNode      Scope = "node"
	ScopeChain     Scope = "chain"
	ScopeGlobal    Scope = "global"
)

// Stability reports how likely a tool's contract is to change.
type Stability string

const (
	StabilityExperimental Stability = "experimental"
	StabilityBeta         Stability = "beta"
	StabilityStable       Stability = "stable"
	StabilityDeprecated   Stability = "deprecated"
)

// TaskState is the execution state of an asynchronous task.
type TaskState string

const (
	TaskStatePending   TaskState = "pending"
	TaskStateRunning   TaskState = "running"
	TaskStateCompleted TaskState = "completed"
	TaskStateFailed    TaskState = "failed"
	TaskStateCancelled TaskState = "cancelled"
)

// IsTerminal reports whether the task will never transition further.
func (s TaskState) IsTerminal() bool {
	switch s {
	case TaskStateCompleted, TaskStateFailed, TaskStateCancelled:
		return true
	default:
		return false
	}
}

// ErrorCode enumerates the error codes an endpoint may return.
type ErrorCode string

const (
	ErrorCodeUnknownAction    ErrorCode = "unknownAction"
	ErrorCodeInvalidParams    ErrorCode = "invalidParams"
	ErrorCodeNotFound         ErrorCode = "notFound"
	ErrorCodeConflict         ErrorCode = "conflict"
	ErrorCodePermissionDenied ErrorCode = "permissionDenied"
	ErrorCodeTimeout          ErrorCode = "timeout"
	ErrorCodeInternalError    ErrorCode = "internalError"
	ErrorCodeRateLimited      ErrorCode = "rateLimited"
	ErrorCodeNotConnected     ErrorCode = "notConnected"
	ErrorCodeProtocolError    ErrorCode = "protocolError"
)
