package zapclient

import (
	"context"

	"github.com/jeeves-cluster-organization/zapcore/commbus"
	"github.com/jeeves-cluster-organization/zapcore/coreengine/observability"
	"github.com/jeeves-cluster-organization/zapcore/zaptypes"
)

// ProposeConsensus delegates a consensus decision to the endpoint's
// coordinator rather than running rounds locally (see zapconsensus for
// the local-pool equivalent). config defaults to
// zaptypes.DefaultConsensusConfig when nil.
func (c *Client) ProposeConsensus(ctx context.Context, topic, proposal zaptypes.HexBytes, config *zaptypes.ConsensusConfig) (zaptypes.ConsensusResult, error) {
	cfg := zaptypes.DefaultConsensusConfig()
	if config != nil {
		cfg = *config
	}
	if err := cfg.Validate(); err != nil {
		return zaptypes.ConsensusResult{}, newProtocolError(zaptypes.ErrorCodeInvalidParams, err.Error())
	}
	cfgPayload, err := toPayload(cfg)
	if err != nil {
		return zaptypes.ConsensusResult{}, err
	}
	callCtx, err := toPayload(c.makeContext())
	if err != nil {
		return zaptypes.ConsensusResult{}, err
	}

	resp, err := c.request(ctx, "coordination.propose", map[string]any{
		"topic":    topic,
		"proposal": proposal,
		"config":   cfgPayload,
		"ctx":      callCtx,
	})
	if err != nil {
		return zaptypes.ConsensusResult{}, err
	}

	var decoded struct {
		Result zaptypes.ConsensusResult `json:"result"`
	}
	if err := decodeInto(resp, &decoded); err != nil {
		return zaptypes.ConsensusResult{}, newConnectionError("decode coordination.propose response", err)
	}

	c.recordConsensusDecision("gateway", decoded.Result)
	return decoded.Result, nil
}

// CommitteeQuery asks a committee of participants (model/agent ids) to
// converge on an answer to question, returning the synthesized answer
// and the certificate attesting to the decision.
func (c *Client) CommitteeQuery(ctx context.Context, question string, participants []string, config *zaptypes.ConsensusConfig) (string, zaptypes.Certificate, error) {
	cfg := zaptypes.DefaultConsensusConfig()
	if config != nil {
		cfg = *config
	}
	if err := cfg.Validate(); err != nil {
		return "", zaptypes.Certificate{}, newProtocolError(zaptypes.ErrorCodeInvalidParams, err.Error())
	}
	cfgPayload, err := toPayload(cfg)
	if err != nil {
		return "", zaptypes.Certificate{}, err
	}
	callCtx, err := toPayload(c.makeContext())
	if err != nil {
		return "", zaptypes.Certificate{}, err
	}

	resp, err := c.request(ctx, "coordination.committee", map[string]any{
		"question":     question,
		"participants": participants,
		"config":       cfgPayload,
		"ctx":          callCtx,
	})
	if err != nil {
		return "", zaptypes.Certificate{}, err
	}

	var decoded struct {
		Answer      string               `json:"answer"`
		Certificate zaptypes.Certificate `json:"certificate"`
	}
	if err := decodeInto(resp, &decoded); err != nil {
		return "", zaptypes.Certificate{}, newConnectionError("decode coordination.committee response", err)
	}

	c.publish(ctx, &commbus.ConsensusDecided{
		Question:   question,
		Round:      decoded.Certificate.Round,
		Confidence: decoded.Certificate.Confidence,
		Mode:       "gateway",
	})
	observability.RecordConsensusRound("gateway")
	observability.RecordConsensusDecision("gateway", decoded.Certificate.Confidence, 0)

	return decoded.Answer, decoded.Certificate, nil
}

func (c *Client) recordConsensusDecision(mode string, result zaptypes.ConsensusResult) {
	observability.RecordConsensusRound(mode)
	observability.RecordConsensusDecision(mode, result.Confidence, int(result.DurationNs/1_000_000))
	c.publish(context.Background(), &commbus.ConsensusDecided{
		Round:      result.Round,
		Confidence: result.Confidence,
		Mode:       mode,
	})
}
