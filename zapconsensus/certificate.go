package zapconsensus

import (
	"crypto/sha256"
	"time"

	"github.com/jeeves-cluster-organization/zapcore/zaptypes"
)

// buildCertificate attests a local-pool consensus decision. It does not
// verify or fabricate participant signatures (none exist locally); every
// attestor's Signature/PublicKey is left empty.
func buildCertificate(question, winner string, confidence float64, round int, responses []ParticipantResponse) zaptypes.Certificate {
	topic := sha256.Sum256([]byte(question))
	proposalHash := sha256.Sum256([]byte(winner))

	winnerKey := normalizeResponse(winner)
	var attestors []map[string]any
	for _, resp := range responses {
		if normalizeResponse(resp.Response) != winnerKey {
			continue
		}
		attestors = append(attestors, map[string]any{
			"nodeId":    resp.ParticipantID,
			"signature": "",
			"publicKey": "",
		})
	}

	return zaptypes.Certificate{
		Topic:        topic[:],
		ProposalHash: proposalHash[:],
		Round:        round,
		Confidence:   confidence,
		Attestors:    attestors,
		Timestamp:    time.Now().UnixMilli(),
	}
}
