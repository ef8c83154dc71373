package kafka

import (
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediaid/platform/pkg/common/models"
)

func TestEncodeEventSetsKeyAndHeaders(t *testing.T) {
	event := NewEvent(models.EventTypeSymptomsDetected, "symptom-service", map[string]interface{}{"count": 2})
	require.NotEmpty(t, event.ID)

	msg, err := EncodeEvent(event)
	require.NoError(t, err)
	assert.Equal(t, event.ID, string(msg.Key))
	assert.Equal(t, []kafka.Header{
		{Key: "event-type", Value: []byte(models.EventTypeSymptomsDetected)},
		{Key: "source", Value: []byte("symptom-service")},
	}, msg.Headers)

	decoded, err := DecodeEvent(msg)
	require.NoError(t, err)
	assert.Equal(t, event.ID, decoded.ID)
	assert.Equal(t, float64(2), decoded.Data["count"])
}

func TestDecodeEventRejectsGarbage(t *testing.T) {
	_, err := DecodeEvent(kafka.Message{Value: []byte("{not json")})
	assert.Error(t, err)
}
