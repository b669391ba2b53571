package event

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestType_IsValid(t *testing.T) {
	tests := []struct {
		name      string
		eventType Type
		want      bool
	}{
		{name: "task created", eventType: TypeTaskCreated, want: true},
		{name: "admin approval", eventType: TypeTaskApprovedByAdmin, want: true},
		{name: "stage changed", eventType: TypeTaskStageChanged, want: true},
		{name: "follow up", eventType: TypeTaskFollowUp, want: true},
		{name: "deleted", eventType: TypeTaskDeleted, want: true},
		{name: "unknown type", eventType: Type("instance.created"), want: false},
		{name: "empty string", eventType: Type(""), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.eventType.IsValid())
		})
	}
}

func TestNewEvent(t *testing.T) {
	evt := NewEvent(TypeTaskCreated, 7, map[string]interface{}{KeyTaskCode: "TSK-2026-007"})

	_, err := uuid.Parse(evt.ID)
	require.NoError(t, err)
	_, err = uuid.Parse(evt.CorrelationID)
	require.NoError(t, err)

	assert.Equal(t, TypeTaskCreated, evt.Type)
	assert.Equal(t, int64(7), evt.TaskID)
	assert.Equal(t, "TSK-2026-007", evt.GetPayloadString(KeyTaskCode))
	assert.False(t, evt.Timestamp.IsZero())
	assert.NotEqual(t, evt.ID, NewEvent(TypeTaskCreated, 7, nil).ID)
}

func TestNewEvent_NilPayload(t *testing.T) {
	evt := NewEvent(TypeTaskDeleted, 1, nil)
	require.NotNil(t, evt.Payload)
	assert.Empty(t, evt.GetPayloadString("anything"))
}

func TestNewEventWithCorrelation(t *testing.T) {
	evt := NewEventWithCorrelation(TypeTaskStageChanged, 3, nil, "corr-1")
	assert.Equal(t, "corr-1", evt.CorrelationID)
}

func TestEvent_WithPayload(t *testing.T) {
	original := NewEvent(TypeTaskUpdated, 1, map[string]interface{}{KeyActorID: int64(2)})
	updated := original.WithPayload(KeyStatus, "completed")

	assert.Equal(t, original.ID, updated.ID)
	assert.Equal(t, "completed", updated.GetPayloadString(KeyStatus))
	assert.Empty(t, original.GetPayloadString(KeyStatus), "original payload must stay untouched")
	assert.Equal(t, int64(2), updated.GetPayloadInt(KeyActorID))
}

func TestEvent_PayloadAccessors(t *testing.T) {
	evt := NewEvent(TypeTaskStageChanged, 1, map[string]interface{}{
		"int64":   int64(100),
		"int":     50,
		"float64": 75.5,
		"string":  "text",
		"bool":    true,
	})

	assert.Equal(t, int64(100), evt.GetPayloadInt("int64"))
	assert.Equal(t, int64(50), evt.GetPayloadInt("int"))
	assert.Equal(t, int64(75), evt.GetPayloadInt("float64"))
	assert.Equal(t, int64(0), evt.GetPayloadInt("string"))
	assert.Equal(t, "text", evt.GetPayloadString("string"))
	assert.Equal(t, "", evt.GetPayloadString("int"))
	assert.True(t, evt.GetPayloadBool("bool"))
	assert.False(t, evt.GetPayloadBool("missing"))
}
