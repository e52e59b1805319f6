package mqtt

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingBufferPushDrain(t *testing.T) {
	r := newRingBuffer(4)
	assert.Equal(t, 0, r.len())

	r.push(queuedMsg{topic: "a"})
	r.push(queuedMsg{topic: "b"})
	r.push(queuedMsg{topic: "c"})
	assert.Equal(t, 3, r.len())

	msgs, dropped := r.drainAll()
	require.Len(t, msgs, 3)
	assert.Equal(t, 0, dropped)
	assert.Equal(t, "a", msgs[0].topic)
	assert.Equal(t, "b", msgs[1].topic)
	assert.Equal(t, "c", msgs[2].topic)
	assert.Equal(t, 0, r.len())
}

func TestRingBufferDrainEmpty(t *testing.T) {
	r := newRingBuffer(4)
	msgs, dropped := r.drainAll()
	assert.Nil(t, msgs)
	assert.Equal(t, 0, dropped)
}

func TestRingBufferOverwritesOldest(t *testing.T) {
	r := newRingBuffer(3)
	for i := 0; i < 5; i++ {
		r.push(queuedMsg{topic: fmt.Sprintf("msg-%d", i)})
	}
	assert.Equal(t, 3, r.len())

	msgs, dropped := r.drainAll()
	require.Len(t, msgs, 3)
	assert.Equal(t, 2, dropped)
	assert.Equal(t, "msg-2", msgs[0].topic)
	assert.Equal(t, "msg-3", msgs[1].topic)
	assert.Equal(t, "msg-4", msgs[2].topic)
}

func TestRingBufferReusableAfterDrain(t *testing.T) {
	r := newRingBuffer(2)
	r.push(queuedMsg{topic: "x"})
	r.push(queuedMsg{topic: "y"})
	r.push(queuedMsg{topic: "z"})
	r.drainAll()

	r.push(queuedMsg{topic: "w"})
	msgs, dropped := r.drainAll()
	require.Len(t, msgs, 1)
	assert.Equal(t, 0, dropped, "drop counter must reset on drain")
	assert.Equal(t, "w", msgs[0].topic)
}

func TestRingBufferPreservesMessageFields(t *testing.T) {
	r := newRingBuffer(2)
	r.push(queuedMsg{topic: "t", payload: []byte("p"), qos: 1, retained: true})

	msgs, _ := r.drainAll()
	require.Len(t, msgs, 1)
	assert.Equal(t, []byte("p"), msgs[0].payload)
	assert.Equal(t, byte(1), msgs[0].qos)
	assert.True(t, msgs[0].retained)
}
