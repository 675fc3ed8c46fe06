package rtp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequenceLess(t *testing.T) {
	assert.True(t, SequenceLess(1, 2))
	assert.False(t, SequenceLess(2, 1))
	assert.False(t, SequenceLess(5, 5))

	// Wraparound: 0xFFFF precedes 0x0000.
	assert.True(t, SequenceLess(0xFFFF, 0x0000))
	assert.False(t, SequenceLess(0x0000, 0xFFFF))
}

func TestSequenceDelta(t *testing.T) {
	assert.Equal(t, int32(1), SequenceDelta(1, 2))
	assert.Equal(t, int32(-1), SequenceDelta(2, 1))
	assert.Equal(t, int32(1), SequenceDelta(0xFFFF, 0x0000))
}

func TestNextSequence(t *testing.T) {
	assert.True(t, NextSequence(1, 2))
	assert.False(t, NextSequence(1, 3))
	assert.True(t, NextSequence(0xFFFF, 0x0000))
}
