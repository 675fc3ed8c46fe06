package rtp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeaderMinimal(t *testing.T) {
	buf := []byte{
		0x80, 96, 0x00, 0x01, // V=2,P=0,X=0,CC=0, M=0,PT=96, seq=1
		0x00, 0x00, 0x00, 0x64, // timestamp
		0x01, 0x02, 0x03, 0x04, // SSRC
		'h', 'i',
	}
	h, err := ParseHeader(buf)
	require.NoError(t, err)
	assert.False(t, h.Padding)
	assert.False(t, h.Extension)
	assert.False(t, h.Marker)
	assert.Equal(t, byte(96), h.PayloadType)
	assert.Equal(t, uint16(1), h.Sequence)
	assert.Equal(t, uint32(0x64), h.Timestamp)
	assert.Equal(t, uint32(0x01020304), h.SSRC)
	assert.Empty(t, h.CSRC)
	assert.Equal(t, []byte("hi"), h.Payload())
	assert.Equal(t, 12, h.Len())
}

func TestParseHeaderWithCSRCAndMarker(t *testing.T) {
	buf := []byte{
		0x82, 0xe0, 0x00, 0x02, // V=2,CC=2, M=1,PT=96
		0x00, 0x00, 0x00, 0x01,
		0xaa, 0xbb, 0xcc, 0xdd,
		0x00, 0x00, 0x00, 0x11, // CSRC 1
		0x00, 0x00, 0x00, 0x22, // CSRC 2
		'p', 'a', 'y', 'l', 'o', 'a', 'd',
	}
	h, err := ParseHeader(buf)
	require.NoError(t, err)
	assert.True(t, h.Marker)
	assert.Equal(t, byte(96), h.PayloadType)
	assert.Equal(t, []uint32{0x11, 0x22}, h.CSRC)
	assert.Equal(t, []byte("payload"), h.Payload())
	assert.Equal(t, 12+8, h.Len())
}

func TestParseHeaderWithExtension(t *testing.T) {
	buf := []byte{
		0x90, 96, 0x00, 0x01, // X=1
		0x00, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x01,
		0xbe, 0xef, 0x00, 0x01, // profile=0xbeef, length=1 word
		0x11, 0x22, 0x33, 0x44, // extension word
		'x',
	}
	h, err := ParseHeader(buf)
	require.NoError(t, err)
	assert.True(t, h.Extension)
	assert.Equal(t, uint16(0xbeef), h.ExtensionProfile)
	assert.Equal(t, []byte{0x11, 0x22, 0x33, 0x44}, h.ExtensionData)
	assert.Equal(t, []byte("x"), h.Payload())
	assert.Equal(t, 12+4+4, h.Len())
}

func TestParseHeaderTrimsPadding(t *testing.T) {
	buf := []byte{
		0xa0, 96, 0x00, 0x01, // P=1
		0x00, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x01,
		'd', 'a', 't', 'a', 0x00, 0x00, 0x03, // last byte: pad length 3
	}
	h, err := ParseHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), h.Payload())
}

func TestParseHeaderRejectsShortDatagram(t *testing.T) {
	_, err := ParseHeader([]byte{0x80, 96, 0, 1})
	assert.True(t, errors.Is(err, ErrMalformedHeader))
}

func TestParseHeaderRejectsBadVersion(t *testing.T) {
	buf := make([]byte, 12)
	buf[0] = 0x40 // version 1
	_, err := ParseHeader(buf)
	assert.True(t, errors.Is(err, ErrMalformedHeader))
}

func TestParseHeaderRejectsShortCSRCList(t *testing.T) {
	buf := []byte{
		0x81, 96, 0x00, 0x01, // CC=1, but no room for the CSRC word
		0x00, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x01,
	}
	_, err := ParseHeader(buf)
	assert.True(t, errors.Is(err, ErrShortBuffer))
}
