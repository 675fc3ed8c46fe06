package vp8

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepacketizeSinglePacketFrame(t *testing.T) {
	d := NewDepacketizer(1024)
	// S=1 (start of partition), no extended fields.
	payload := append([]byte{0x10}, []byte("frame-data")...)

	out, err := d.Depacketize([][]byte{payload})
	require.NoError(t, err)
	assert.Equal(t, []byte("frame-data"), out)
}

func TestDepacketizeMultiPacketFrame(t *testing.T) {
	d := NewDepacketizer(1024)
	first := append([]byte{0x10}, []byte("AAA")...)
	second := append([]byte{0x00}, []byte("BBB")...)

	out, err := d.Depacketize([][]byte{first, second})
	require.NoError(t, err)
	assert.Equal(t, []byte("AAABBB"), out)
}

func TestDepacketizeDiscardsPacketsBeforeStart(t *testing.T) {
	d := NewDepacketizer(1024)
	before := append([]byte{0x00}, []byte("lost-start")...)
	start := append([]byte{0x10}, []byte("real")...)

	out, err := d.Depacketize([][]byte{before, start})
	require.NoError(t, err)
	assert.Equal(t, []byte("real"), out)
}

func TestDepacketizeExtendedPictureID(t *testing.T) {
	d := NewDepacketizer(1024)
	// X=1, S=1; extended byte: PictureID present (0x80), 15-bit form.
	payload := []byte{0x90, 0x80, 0x81, 0x23, 'd', 'a', 't', 'a'}
	out, err := d.Depacketize([][]byte{payload})
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), out)
}

func TestDepacketizeOversizeFrame(t *testing.T) {
	d := NewDepacketizer(4)
	payload := append([]byte{0x10}, []byte("waytoobig")...)
	out, err := d.Depacketize([][]byte{payload})
	assert.Nil(t, out)
	assert.Equal(t, ErrOversizeFrame, err)
}

func TestDepacketizeEmptyInput(t *testing.T) {
	d := NewDepacketizer(1024)
	out, err := d.Depacketize(nil)
	assert.NoError(t, err)
	assert.Nil(t, out)
}
