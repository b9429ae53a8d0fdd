package zapwire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	msg := New("tools.list", "req-1", map[string]any{"namespace": "fs"})

	frame, err := msg.Encode()
	require.NoError(t, err)
	require.Greater(t, len(frame), LengthPrefixSize)

	length, err := DecodeLength(frame[:LengthPrefixSize])
	require.NoError(t, err)
	assert.Equal(t, uint32(len(frame)-LengthPrefixSize), length)

	decoded, err := Decode(frame[LengthPrefixSize:])
	require.NoError(t, err)
	assert.Equal(t, msg.Type, decoded.Type)
	assert.Equal(t, msg.ID, decoded.ID)
	assert.Equal(t, "fs", decoded.Payload["namespace"])
}

func TestNewNilPayloadBecomesEmptyMap(t *testing.T) {
	msg := New("ping", "req-2", nil)
	assert.NotNil(t, msg.Payload)
	assert.Empty(t, msg.Payload)
}

func TestDecodeNilPayloadBecomesEmptyMap(t *testing.T) {
	decoded, err := Decode([]byte(`{"type":"ping","id":"1"}`))
	require.NoError(t, err)
	assert.NotNil(t, decoded.Payload)
}

func TestDecodeLengthRejectsWrongSize(t *testing.T) {
	_, err := DecodeLength([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestDecodeRejectsInvalidJSON(t *testing.T) {
	_, err := Decode([]byte("not json"))
	assert.Error(t, err)
}

func TestDecodeRejectsMissingType(t *testing.T) {
	_, err := Decode([]byte(`{"id":"1","payload":{}}`))
	assert.Error(t, err)
}

func TestDecodeRejectsNonStringID(t *testing.T) {
	_, err := Decode([]byte(`{"type":"ping","id":1,"payload":{}}`))
	assert.Error(t, err)
}

func TestDecodeRejectsNonObjectPayload(t *testing.T) {
	_, err := Decode([]byte(`{"type":"ping","id":"1","payload":"oops"}`))
	assert.Error(t, err)
}
