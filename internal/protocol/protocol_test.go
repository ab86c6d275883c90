package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayloadAfterWire(t *testing.T) {
	data, err := json.Marshal(Message{
		Type:    TypeStatus,
		Payload: StatusPayload{State: "running", Done: 3, Total: 10},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"status","payload":{"state":"running","done":3,"total":10}}`, string(data))

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))

	var status StatusPayload
	require.NoError(t, DecodePayload(msg, &status))
	assert.Equal(t, StatusPayload{State: "running", Done: 3, Total: 10}, status)
}

func TestDecodePayloadMismatch(t *testing.T) {
	var ctl ControlPayload
	err := DecodePayload(Message{Type: TypeControl, Payload: "stop"}, &ctl)
	assert.Error(t, err)
}

func TestValidAction(t *testing.T) {
	assert.True(t, ValidAction(ActionStop))
	assert.False(t, ValidAction("restart"))
}
