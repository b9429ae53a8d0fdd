// Package zapwire implements the ZAP wire envelope: a 4-byte big-endian
// length prefix followed by a UTF-8 JSON body of the form
// {"type": ..., "id": ..., "payload": ...}.
package zapwire

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/jeeves-cluster-organization/zapcore/zaptypes"
)

// LengthPrefixSize is the size, in bytes, of the frame's length prefix.
const LengthPrefixSize = 4

// Message is a single envelope exchanged between client and endpoint.
// Type identifies the operation ("catalog.listTools", "catalog.invoke", "initialize", an
// id-correlated response, ...); Id correlates a response to its request;
// Payload carries the operation-specific body.
type Message struct {
	Type    string         `json:"type"`
	ID      string         `json:"id"`
	Payload map[string]any `json:"payload"`
}

// New builds a Message with a non-nil payload map.
func New(msgType, id string, payload map[string]any) Message {
	if payload == nil {
		payload = map[string]any{}
	}
	return Message{Type: msgType, ID: id, Payload: payload}
}

// Encode renders the message as a length-prefixed JSON frame ready to
// write to a transport.
func (m Message) Encode() ([]byte, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("zapwire: encode payload: %w", err)
	}

	frame := make([]byte, LengthPrefixSize+len(body))
	binary.BigEndian.PutUint32(frame[:LengthPrefixSize], uint32(len(body)))
	copy(frame[LengthPrefixSize:], body)
	return frame, nil
}

// Decode parses a message body (without its length prefix). Use
// DecodeLength to read the prefix off a transport first. Per the wire
// contract, a body that does not decode to a JSON object with a string
// "type", a string "id", and an object "payload" (or no payload at all,
// which defaults to an empty object) is rejected as a protocolError
// rather than propagated as a generic decode error.
func Decode(body []byte) (Message, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return Message{}, protocolDecodeError(fmt.Sprintf("malformed frame body: %v", err))
	}

	msgType, err := decodeStringField(raw, "type")
	if err != nil {
		return Message{}, err
	}
	id, err := decodeStringField(raw, "id")
	if err != nil {
		return Message{}, err
	}

	payload := map[string]any{}
	if rawPayload, ok := raw["payload"]; ok {
		if err := json.Unmarshal(rawPayload, &payload); err != nil {
			return Message{}, protocolDecodeError(`field "payload" must be a JSON object`)
		}
	}
	if payload == nil {
		payload = map[string]any{}
	}

	return Message{Type: msgType, ID: id, Payload: payload}, nil
}

func decodeStringField(raw map[string]json.RawMessage, field string) (string, error) {
	rawValue, ok := raw[field]
	if !ok {
		return "", protocolDecodeError(fmt.Sprintf("missing required field %q", field))
	}
	var value string
	if err := json.Unmarshal(rawValue, &value); err != nil {
		return "", protocolDecodeError(fmt.Sprintf("field %q must be a string", field))
	}
	if value == "" {
		return "", protocolDecodeError(fmt.Sprintf("field %q must not be empty", field))
	}
	return value, nil
}

func protocolDecodeError(message string) error {
	return &zaptypes.ZapError{Code: zaptypes.ErrorCodeProtocolError, Message: message}
}

// DecodeLength parses the 4-byte big-endian length prefix of a frame.
func DecodeLength(prefix []byte) (uint32, error) {
	if len(prefix) != LengthPrefixSize {
		return 0, fmt.Errorf("zapwire: length prefix must be %d bytes, got %d", LengthPrefixSize, len(prefix))
	}
	return binary.BigEndian.Uint32(prefix), nil
}
