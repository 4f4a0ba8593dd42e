package typing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowFirstCallThenDedup(t *testing.T) {
	d := New()
	assert.True(t, d.Allow("room-1", "nanook"))
	assert.False(t, d.Allow("room-1", "nanook"))
}

func TestAllowIndependentPerRoomSender(t *testing.T) {
	d := New()
	assert.True(t, d.Allow("room-1", "nanook"))
	assert.True(t, d.Allow("room-1", "forge"))
	assert.True(t, d.Allow("room-2", "nanook"))
}
