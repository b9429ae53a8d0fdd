package zapconsensus

import (
	"context"
	"crypto/sha256"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeeves-cluster-organization/zapcore/zaptypes"
)

func TestDecideLocalUnanimousConvergesInOneRound(t *testing.T) {
	c := FromPool([]ParticipantRunner{
		stubRunner{response: "use postgres"},
		stubRunner{response: "use postgres"},
		stubRunner{response: "use postgres"},
	}, nil)

	decision, err := c.Decide(context.Background(), "which database?", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "use postgres", decision.Answer)
	assert.Equal(t, 1.0, decision.Confidence)
	assert.Equal(t, 1, decision.Round)
	assert.NotNil(t, decision.Certificate)
	assert.Len(t, decision.Votes, 3)
	assert.GreaterOrEqual(t, decision.DurationMs, 0)
}

func TestDecideLocalNoParticipantsErrors(t *testing.T) {
	c := FromPool(nil, nil)
	_, err := c.Decide(context.Background(), "q", nil, nil)
	require.Error(t, err)
	var zerr *zaptypes.ZapError
	require.ErrorAs(t, err, &zerr)
	assert.Equal(t, zaptypes.ErrorCodeInvalidParams, zerr.Code)
}

func TestDecideRejectsInvalidConfig(t *testing.T) {
	cfg := zaptypes.ConsensusConfig{Rounds: 0, K: 5, Alpha: 0.6, Beta1: 0.8, Beta2: 0.9}
	c := FromPool([]ParticipantRunner{stubRunner{response: "a"}}, &cfg)

	_, err := c.Decide(context.Background(), "q", nil, nil)
	require.Error(t, err)
	var zerr *zaptypes.ZapError
	require.ErrorAs(t, err, &zerr)
	assert.Equal(t, zaptypes.ErrorCodeInvalidParams, zerr.Code)
}

func TestDecideLocalMajoritySplit(t *testing.T) {
	c := FromPool([]ParticipantRunner{
		stubRunner{response: "A"},
		stubRunner{response: "A"},
		stubRunner{response: "B"},
	}, nil)

	decision, err := c.Decide(context.Background(), "pick one", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "A", decision.Answer)
	assert.InDelta(t, 2.0/3.0, decision.Confidence, 1e-9)
	require.NotNil(t, decision.Certificate)
	assert.Len(t, decision.Certificate.Attestors, 2)

	proposal := sha256.Sum256([]byte("A"))
	topic := sha256.Sum256([]byte("pick one"))
	assert.Equal(t, zaptypes.HexBytes(proposal[:]), decision.Certificate.ProposalHash)
	assert.Equal(t, zaptypes.HexBytes(topic[:]), decision.Certificate.Topic)
}

// escalatingRunner simulates a participant pool whose agreement improves
// round over round: calls below the threshold vote split, calls at or
// past it vote unanimous. This exercises the real re-query loop rather
// than the single-shot shortcut.
type escalatingRunner struct {
	calls        *int32
	roundsToWin  int32
	splitAnswer  string
	finalAnswer  string
}

func (r escalatingRunner) Run(ctx context.Context, participantID, prompt string) (ParticipantResponse, error) {
	n := atomic.AddInt32(r.calls, 1)
	// Every participant in the pool shares the same counter granularity
	// via round number passed indirectly: use call count bucketed by
	// pool size 1 here (single-runner pool keeps this deterministic).
	if n >= r.roundsToWin {
		return ParticipantResponse{Response: r.finalAnswer, Confidence: 1}, nil
	}
	return ParticipantResponse{Response: r.splitAnswer, Confidence: 1}, nil
}

func TestRunConsensusRoundsReQueriesUntilBeta2OrRoundsExhausted(t *testing.T) {
	calls := int32(0)
	pool := []ParticipantRunner{
		escalatingRunner{calls: &calls, roundsToWin: 3, splitAnswer: "maybe", finalAnswer: "yes"},
	}
	cfg := zaptypes.ConsensusConfig{Rounds: 3, K: 1, Alpha: 0.6, Beta1: 0.8, Beta2: 0.95, TimeoutMs: 1000}
	c := FromPool(pool, &cfg)

	winner, confidence, round, responses := c.runConsensusRounds(context.Background(), "q")

	assert.Equal(t, "yes", winner)
	assert.Equal(t, 1.0, confidence)
	assert.Equal(t, 3, round)
	require.Len(t, responses, 1)
	assert.Equal(t, "yes", responses[0].Response)
}

type recordingSynthesizer struct {
	question  string
	responses []ParticipantResponse
	winner    string
}

func (s *recordingSynthesizer) Synthesize(ctx context.Context, question string, responses []ParticipantResponse, winner string) (string, error) {
	s.question = question
	s.responses = responses
	s.winner = winner
	return "synthesized: " + winner, nil
}

func TestDecideLocalUsesSynthesizerWhenConfigured(t *testing.T) {
	synth := &recordingSynthesizer{}
	c := FromPool([]ParticipantRunner{
		stubRunner{response: "a"},
		stubRunner{response: "a"},
	}, nil, WithSynthesizer(synth))

	decision, err := c.Decide(context.Background(), "q", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "synthesized: a", decision.Synthesis)
	assert.Equal(t, "q", synth.question)
}

func TestSynthesisPromptSkipsFailedResponses(t *testing.T) {
	responses := []ParticipantResponse{
		{ParticipantID: "p0", Response: "postgres"},
		{ParticipantID: "p1", Response: "Error: down", Metadata: map[string]any{"error": "down"}},
		{ParticipantID: "p2", Response: "sqlite"},
	}

	prompt := SynthesisPrompt("which db?", responses, "postgres")

	assert.Contains(t, prompt, "Question: which db?")
	assert.Contains(t, prompt, "- postgres")
	assert.Contains(t, prompt, "- sqlite")
	assert.NotContains(t, prompt, "Error: down")
	assert.Contains(t, prompt, "Majority answer: postgres")
}

func TestDecideLocalWithContextBuildsPrompt(t *testing.T) {
	var seenPrompt string
	runner := promptCapturingRunner{seen: &seenPrompt, response: "ok"}
	c := FromPool([]ParticipantRunner{runner}, nil)

	_, err := c.Decide(context.Background(), "question?", nil, map[string]any{"k": "v"})
	require.NoError(t, err)
	assert.Contains(t, seenPrompt, "Context:")
	assert.Contains(t, seenPrompt, "question?")
}

type promptCapturingRunner struct {
	seen     *string
	response string
}

func (r promptCapturingRunner) Run(ctx context.Context, participantID, prompt string) (ParticipantResponse, error) {
	*r.seen = prompt
	return ParticipantResponse{Response: r.response, Confidence: 1}, nil
}
