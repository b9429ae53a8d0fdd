package zapclient

import "encoding/json"

// toPayload round-trips v through JSON to produce a map[string]any payload
// suitable for a zapwire.Message. Used to turn typed request structs
// (Hello, CallContext, ConsensusConfig, ...) into wire payload fragments.
func toPayload(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// decodeInto round-trips a decoded wire payload (map[string]any, or any
// JSON-ish value) back through JSON into a typed struct.
func decodeInto(src any, dst any) error {
	data, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
