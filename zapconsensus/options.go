package zapconsensus

import "github.com/jeeves-cluster-organization/zapcore/commbus"

// Option configures a Coordinator at construction time.
type Option func(*Coordinator)

// WithCommBus attaches a commbus.CommBus the coordinator publishes
// ConsensusDecided events to. Without one, the coordinator stays silent.
func WithCommBus(bus commbus.CommBus) Option {
	return func(c *Coordinator) { c.bus = bus }
}

// WithSynthesizer attaches the Synthesizer used to compose the final
// answer in local-pool mode. Without one, Decision.Synthesis equals the
// bucket-vote winner verbatim.
func WithSynthesizer(s Synthesizer) Option {
	return func(c *Coordinator) { c.synthesizer = s }
}
