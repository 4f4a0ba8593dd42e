package presence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinLeaveRefCounting(t *testing.T) {
	tr := New()

	assert.True(t, tr.Join("room-1", "nanook", nil))
	assert.False(t, tr.Join("room-1", "nanook", nil))
	assert.False(t, tr.Join("room-1", "nanook", nil))

	assert.False(t, tr.Leave("room-1", "nanook"))
	assert.False(t, tr.Leave("room-1", "nanook"))
	assert.True(t, tr.Leave("room-1", "nanook"))

	assert.Empty(t, tr.GetRoom("room-1"))
}

func TestJoinNMinusOneLeavesStillPresent(t *testing.T) {
	tr := New()
	for i := 0; i < 3; i++ {
		tr.Join("room-1", "forge", nil)
	}
	for i := 0; i < 2; i++ {
		tr.Leave("room-1", "forge")
	}
	assert.Len(t, tr.GetRoom("room-1"), 1)
}

func TestGetAllAcrossRooms(t *testing.T) {
	tr := New()
	tr.Join("room-1", "alice", nil)
	tr.Join("room-2", "bob", nil)

	all := tr.GetAll()
	assert.Len(t, all, 2)
	assert.Len(t, all["room-1"], 1)
	assert.Len(t, all["room-2"], 1)
}
