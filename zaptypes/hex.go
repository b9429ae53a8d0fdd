package zaptypes

import (
	"encoding/hex"
	"encoding/json"
)

// HexBytes is a byte slice that marshals to and from JSON as a lowercase
// hex string, matching the wire encoding used for vote payloads,
// signatures, and content hashes. An empty slice encodes as "".
type HexBytes []byte

// MarshalJSON implements json.Marshaler.
func (h HexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(h))
}

// UnmarshalJSON implements json.Unmarshaler.
func (h *HexBytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*h = nil
		return nil
	}
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	*h = decoded
	return nil
}

// String returns the lowercase hex encoding.
func (h HexBytes) String() string {
	return hex.EncodeToString(h)
}
