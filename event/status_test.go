package event_test

import (
	"testing"

	"github.com/marcelsud/webhookhub/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusString(t *testing.T) {
	assert.Equal(t, "PENDING", event.Pending.String())
	assert.Equal(t, "RETRYING", event.Retrying.String())
	assert.Equal(t, "SUCCESS", event.Success.String())
	assert.Equal(t, "FAILED", event.Failed.String())
	assert.Equal(t, "UNKNOWN", event.Status(999).String())
}

func TestNewStatus(t *testing.T) {
	assert.Equal(t, event.Pending, event.NewStatus("PENDING"))
	assert.Equal(t, event.Retrying, event.NewStatus("RETRYING"))
	assert.Equal(t, event.Success, event.NewStatus("SUCCESS"))
	assert.Equal(t, event.Failed, event.NewStatus("FAILED"))

	t.Run("unknown strings default to pending", func(t *testing.T) {
		assert.Equal(t, event.Pending, event.NewStatus("garbage"))
	})
}

func TestStatusValidate(t *testing.T) {
	for _, status := range []event.Status{event.Pending, event.Retrying, event.Success, event.Failed} {
		require.NoError(t, status.Validate())
	}

	require.Error(t, event.Status(0).Validate())
	require.Error(t, event.Status(999).Validate())
}

func TestStatusIsTerminal(t *testing.T) {
	assert.False(t, event.Pending.IsTerminal())
	assert.False(t, event.Retrying.IsTerminal())
	assert.True(t, event.Success.IsTerminal())
	assert.True(t, event.Failed.IsTerminal())
}
