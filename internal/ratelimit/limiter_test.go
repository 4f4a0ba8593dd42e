package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
)

func TestCheckAllowsUpToMax(t *testing.T) {
	l := New()
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Check("send:127.0.0.1", 3, time.Minute))
	}
	err := l.Check("send:127.0.0.1", 3, time.Minute)
	require.Error(t, err)
	ce, ok := chatcore.As(err)
	require.True(t, ok)
	assert.Equal(t, chatcore.KindRateLimited, ce.Kind)
	assert.Greater(t, ce.RetryAfterSecs, 0)
}

func TestCheckIndependentPerKey(t *testing.T) {
	l := New()
	require.NoError(t, l.Check("send:alice", 1, time.Minute))
	require.NoError(t, l.Check("send:bob", 1, time.Minute))
}

func TestCheckWindowExpires(t *testing.T) {
	l := New()
	require.NoError(t, l.Check("send:alice", 1, 10*time.Millisecond))
	require.Error(t, l.Check("send:alice", 1, 10*time.Millisecond))

	time.Sleep(15 * time.Millisecond)
	require.NoError(t, l.Check("send:alice", 1, 10*time.Millisecond))
}
