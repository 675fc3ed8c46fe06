package router

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rtpPacket builds a minimal RTP datagram: fixed 12-byte header (no CSRC,
// no extension) followed by payload.
func rtpPacket(payloadType byte, marker bool, seq uint16, timestamp, ssrc uint32, payload []byte) []byte {
	buf := make([]byte, 12+len(payload))
	buf[0] = 0x80 // V=2
	buf[1] = payloadType
	if marker {
		buf[1] |= 0x80
	}
	buf[2] = byte(seq >> 8)
	buf[3] = byte(seq)
	buf[4] = byte(timestamp >> 24)
	buf[5] = byte(timestamp >> 16)
	buf[6] = byte(timestamp >> 8)
	buf[7] = byte(timestamp)
	buf[8] = byte(ssrc >> 24)
	buf[9] = byte(ssrc >> 16)
	buf[10] = byte(ssrc >> 8)
	buf[11] = byte(ssrc)
	copy(buf[12:], payload)
	return buf
}

func udpAddr(s string) *net.UDPAddr {
	addr, err := net.ResolveUDPAddr("udp", s)
	if err != nil {
		panic(err)
	}
	return addr
}

func TestRouterReassemblesSingleNALUFrame(t *testing.T) {
	r := NewRouter(Config{})
	var got *Frame
	r.SetFrameHandler(func(f Frame) {
		got = &f
	})

	remote := udpAddr("203.0.113.1:5004")
	sps := append([]byte{7}, []byte("sps")...)
	r.OnDatagram(5004, remote, rtpPacket(96, true, 1, 1000, 0xCAFE, sps))

	require.NotNil(t, got)
	assert.Equal(t, uint32(0xCAFE), got.StreamSSRC)
	assert.Equal(t, CodecH264, got.Codec)
	assert.True(t, got.KeyFrame)
}

func TestRouterReordersBeforeClosingFrame(t *testing.T) {
	build := func(order []int) *Frame {
		r := NewRouter(Config{})
		var got *Frame
		r.SetFrameHandler(func(f Frame) { got = &f })
		remote := udpAddr("203.0.113.1:5004")

		nalus := [][]byte{
			append([]byte{1}, []byte("first")...),
			append([]byte{1}, []byte("second")...),
			append([]byte{1}, []byte("third")...),
		}
		packets := make([][]byte, 3)
		for i, n := range nalus {
			packets[i] = rtpPacket(96, i == 2, uint16(100+i), 5000, 0xBEEF, n)
		}
		for _, idx := range order {
			r.OnDatagram(5004, remote, packets[idx])
		}
		return got
	}

	// The marker-bearing packet (index 2) is always delivered last in both
	// permutations: it is the signal that closes the frame, so only the
	// relative order of the non-marker packets preceding it varies.
	inOrder := build([]int{0, 1, 2})
	reordered := build([]int{1, 0, 2})

	require.NotNil(t, inOrder)
	require.NotNil(t, reordered)
	assert.Equal(t, inOrder.Data, reordered.Data)
}

func TestRouterDropsUnknownPayloadType(t *testing.T) {
	r := NewRouter(Config{})
	called := false
	r.SetFrameHandler(func(f Frame) { called = true })

	remote := udpAddr("203.0.113.1:5004")
	r.OnDatagram(5004, remote, rtpPacket(5, true, 1, 1000, 1, []byte{1, 2, 3}))

	assert.False(t, called)
	assert.Equal(t, uint64(1), r.Stats().UnknownPayloadType)
}

func TestRouterNATRebind(t *testing.T) {
	r := NewRouter(Config{})
	var gotAddr *net.UDPAddr
	r.SetFrameHandler(func(f Frame) { gotAddr = f.RemoteAddr })

	privateAddr := udpAddr("192.168.1.10:5004")
	publicAddr := udpAddr("203.0.113.5:6000")

	nalu := append([]byte{1}, []byte("a")...)
	r.OnDatagram(5004, privateAddr, rtpPacket(96, true, 1, 1000, 0x1234, nalu))
	require.NotNil(t, gotAddr)
	assert.Equal(t, privateAddr.String(), gotAddr.String())

	r.OnDatagram(5004, publicAddr, rtpPacket(96, true, 2, 2000, 0x1234, nalu))
	assert.Equal(t, publicAddr.String(), gotAddr.String())
	assert.Equal(t, uint64(0), r.Stats().EndpointMismatch)
}

func TestRouterRejectsUnexpectedEndpointWithoutRebindCondition(t *testing.T) {
	r := NewRouter(Config{})
	callCount := 0
	r.SetFrameHandler(func(f Frame) { callCount++ })

	publicA := udpAddr("203.0.113.5:6000")
	publicB := udpAddr("203.0.113.9:7000")

	nalu := append([]byte{1}, []byte("a")...)
	r.OnDatagram(5004, publicA, rtpPacket(96, true, 1, 1000, 0x1234, nalu))
	r.OnDatagram(5004, publicB, rtpPacket(96, true, 2, 2000, 0x1234, nalu))

	assert.Equal(t, 1, callCount)
	assert.Equal(t, uint64(1), r.Stats().EndpointMismatch)
}

func TestRouterByeHandlerAndStreamRemoval(t *testing.T) {
	r := NewRouter(Config{})
	var byeSSRC uint32
	var byeReason string
	r.SetByeHandler(func(ssrc uint32, reason string) {
		byeSSRC = ssrc
		byeReason = reason
	})

	remote := udpAddr("203.0.113.1:5004")
	nalu := append([]byte{1}, []byte("a")...)
	r.OnDatagram(5004, remote, rtpPacket(96, true, 1, 1000, 0x55, nalu))

	bye := rtcpByePacket(0x55, "bye")
	r.OnDatagram(5004, remote, bye)

	assert.Equal(t, uint32(0x55), byeSSRC)
	assert.Equal(t, "bye", byeReason)
}

func rtcpByePacket(ssrc uint32, reason string) []byte {
	body := []byte{byte(ssrc >> 24), byte(ssrc >> 16), byte(ssrc >> 8), byte(ssrc)}
	body = append(body, byte(len(reason)))
	body = append(body, []byte(reason)...)
	for len(body)%4 != 0 {
		body = append(body, 0)
	}
	buf := []byte{0x81, 203, byte((len(body) / 4) >> 8), byte(len(body) / 4)}
	return append(buf, body...)
}

func TestRouterClosedDropsDatagrams(t *testing.T) {
	r := NewRouter(Config{})
	called := false
	r.SetFrameHandler(func(f Frame) { called = true })
	r.Close("test")

	remote := udpAddr("203.0.113.1:5004")
	nalu := append([]byte{1}, []byte("a")...)
	r.OnDatagram(5004, remote, rtpPacket(96, true, 1, 1000, 1, nalu))

	assert.False(t, called)
}
