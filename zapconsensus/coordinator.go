package zapconsensus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jeeves-cluster-organization/zapcore/commbus"
	"github.com/jeeves-cluster-organization/zapcore/coreengine/observability"
	"github.com/jeeves-cluster-organization/zapcore/zapclient"
	"github.com/jeeves-cluster-organization/zapcore/zaptypes"
)

var tracer = otel.Tracer("zapcore/zapconsensus")

// Coordinator drives a consensus decision, either by delegating to a ZAP
// gateway's coordination endpoint or by running Snowball-style voting
// rounds across a locally supplied participant pool. A Coordinator built
// with FromGateway always operates in gateway mode; one built with
// FromPool always operates in local mode. The two are mutually
// exclusive.
type Coordinator struct {
	client      *zapclient.Client
	pool        []ParticipantRunner
	synthesizer Synthesizer
	config      zaptypes.ConsensusConfig
	bus         commbus.CommBus
}

// FromGateway builds a Coordinator that delegates every decision to the
// endpoint client is connected to via coordination.committee.
func FromGateway(client *zapclient.Client, config *zaptypes.ConsensusConfig, opts ...Option) *Coordinator {
	c := &Coordinator{client: client, config: resolveConfig(config)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FromPool builds a Coordinator that runs consensus rounds across pool
// locally, never contacting a gateway.
func FromPool(pool []ParticipantRunner, config *zaptypes.ConsensusConfig, opts ...Option) *Coordinator {
	c := &Coordinator{pool: pool, config: resolveConfig(config)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func resolveConfig(config *zaptypes.ConsensusConfig) zaptypes.ConsensusConfig {
	if config == nil {
		return zaptypes.DefaultConsensusConfig()
	}
	return *config
}

// Decide reaches a consensus decision on question. In gateway mode,
// participants names the committee and localContext is ignored. In local
// mode, participants is ignored (the pool's own participant identity is
// used) and localContext, when non-empty, is folded into the prompt.
func (c *Coordinator) Decide(ctx context.Context, question string, participants []string, localContext map[string]any) (Decision, error) {
	if err := c.config.Validate(); err != nil {
		return Decision{}, err
	}

	mode := "local"
	if c.client != nil {
		mode = "gateway"
	}

	ctx, span := tracer.Start(ctx, "zap.consensus.decide", trace.WithAttributes(
		attribute.String("zap.consensus.mode", mode),
		attribute.Int("zap.consensus.participants", len(participants)+len(c.pool)),
	))
	defer span.End()

	start := time.Now()

	var (
		decision Decision
		err      error
	)
	if c.client != nil {
		decision, err = c.decideGateway(ctx, question, participants)
	} else {
		decision, err = c.decideLocal(ctx, question, localContext)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Decision{}, err
	}

	decision.DurationMs = int(time.Since(start).Milliseconds())
	span.SetAttributes(
		attribute.Int("zap.consensus.round", decision.Round),
		attribute.Float64("zap.consensus.confidence", decision.Confidence),
	)
	span.SetStatus(codes.Ok, "success")
	return decision, nil
}

func (c *Coordinator) decideGateway(ctx context.Context, question string, participants []string) (Decision, error) {
	answer, certificate, err := c.client.CommitteeQuery(ctx, question, participants, &c.config)
	if err != nil {
		return Decision{}, err
	}

	// client.CommitteeQuery already records metrics and publishes
	// ConsensusDecided for gateway mode; the coordinator does not
	// duplicate that bookkeeping here.
	return Decision{
		Question:    question,
		Answer:      answer,
		Confidence:  certificate.Confidence,
		Round:       certificate.Round,
		Certificate: &certificate,
		Synthesis:   answer,
	}, nil
}

func (c *Coordinator) decideLocal(ctx context.Context, question string, localContext map[string]any) (Decision, error) {
	if len(c.pool) == 0 {
		return Decision{}, &zaptypes.ZapError{
			Code:    zaptypes.ErrorCodeInvalidParams,
			Message: "zapconsensus: no participants configured",
		}
	}

	prompt := buildPrompt(question, localContext)

	winner, confidence, round, responses := c.runConsensusRounds(ctx, prompt)

	synthesis, err := c.synthesize(ctx, question, responses, winner)
	if err != nil {
		return Decision{}, err
	}

	certificate := buildCertificate(question, winner, confidence, round, responses)

	c.recordDecision(question, round, confidence)

	return Decision{
		Question:    question,
		Answer:      winner,
		Confidence:  confidence,
		Round:       round,
		Votes:       responses,
		Certificate: &certificate,
		Synthesis:   synthesis,
	}, nil
}

func (c *Coordinator) synthesize(ctx context.Context, question string, responses []ParticipantResponse, winner string) (string, error) {
	if c.synthesizer == nil {
		return winner, nil
	}
	return c.synthesizer.Synthesize(ctx, question, responses, winner)
}

func (c *Coordinator) recordDecision(question string, round int, confidence float64) {
	observability.RecordConsensusRound("local")
	observability.RecordConsensusDecision("local", confidence, 0)
	if c.bus == nil {
		return
	}
	_ = c.bus.Publish(context.Background(), &commbus.ConsensusDecided{
		Question:   question,
		Round:      round,
		Confidence: confidence,
		Mode:       "local",
	})
}

// SynthesisPrompt renders the prompt a Synthesizer is expected to
// answer: the question, each non-failed response bulleted, and the
// bucket-vote winner. Synthesizer implementations backed by a language
// model can feed this to their provider directly.
func SynthesisPrompt(question string, responses []ParticipantResponse, winner string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\nResponses:\n", question)
	for _, r := range responses {
		if _, failed := r.Metadata["error"]; failed {
			continue
		}
		fmt.Fprintf(&b, "- %s\n", r.Response)
	}
	fmt.Fprintf(&b, "\nMajority answer: %s\n\nSynthesize a single, final answer.", winner)
	return b.String()
}

func buildPrompt(question string, localContext map[string]any) string {
	if len(localContext) == 0 {
		return question
	}
	encoded, err := json.Marshal(localContext)
	if err != nil {
		return question
	}
	return fmt.Sprintf("Context: %s\n\nQuestion: %s", encoded, question)
}
