// Package zapconsensus implements Snowball-style multi-participant
// consensus: either delegated to a ZAP gateway's coordination endpoint,
// or run locally across a pool of participants supplied by the embedding
// agent runtime.
package zapconsensus

import (
	"context"

	"github.com/jeeves-cluster-organization/zapcore/zaptypes"
)

// ParticipantResponse is one participant's contribution to a local
// consensus round.
type ParticipantResponse struct {
	ParticipantID string
	Response      string
	Confidence    float64
	LatencyMs     int
	Metadata      map[string]any
}

// Decision is the outcome of a consensus call, gateway or local.
type Decision struct {
	Question    string
	Answer      string
	Confidence  float64
	Round       int
	Votes       []ParticipantResponse
	Certificate *zaptypes.Certificate
	Synthesis   string
	DurationMs  int
}

// ParticipantRunner asks a single participant to respond to prompt. The
// coordinator treats a non-nil error the same as a zero-confidence
// response: it never aborts the round because one participant failed.
type ParticipantRunner interface {
	Run(ctx context.Context, participantID, prompt string) (ParticipantResponse, error)
}

// Synthesizer composes a final answer from the full set of participant
// responses and the bucket-vote winner. When a Coordinator has no
// Synthesizer, Decision.Synthesis equals the winner verbatim.
type Synthesizer interface {
	Synthesize(ctx context.Context, question string, responses []ParticipantResponse, winner string) (string, error)
}
