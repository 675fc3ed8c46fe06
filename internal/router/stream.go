package router

import (
	"net"

	"github.com/buldo/rtp-receiver/internal/h264"
	"github.com/buldo/rtp-receiver/internal/vp8"
)

// bufferedPacket is one RTP payload awaiting reassembly, held until the
// marker-bit packet of its timestamp arrives. The payload is copied out of
// the caller's datagram buffer at buffer time (see Router.OnDatagram).
type bufferedPacket struct {
	sequence uint16
	payload  []byte
}

// stream holds all per-SSRC state: the inferred codec, the bound remote
// endpoint, sequence tracking, and the in-progress reassembly buffer.
type stream struct {
	ssrc  uint32
	codec Codec

	remoteAddr *net.UDPAddr

	haveLastSeq bool
	lastSeq     uint16

	havePendingTimestamp bool
	pendingTimestamp     uint32
	pending              []bufferedPacket

	h264Dep *h264.Depacketizer
	vp8Dep  *vp8.Depacketizer
}

func newStream(ssrc uint32, codec Codec, remoteAddr *net.UDPAddr, maxFrameSize int) *stream {
	s := &stream{
		ssrc:       ssrc,
		codec:      codec,
		remoteAddr: remoteAddr,
	}
	switch codec {
	case CodecH264:
		s.h264Dep = h264.NewDepacketizer(maxFrameSize)
	case CodecVP8:
		s.vp8Dep = vp8.NewDepacketizer(maxFrameSize)
	}
	return s
}

// resetPending discards the in-progress reassembly buffer, e.g. because a
// new timestamp arrived before the previous one's marker packet, or because
// reassembly overflowed the maximum frame size.
func (s *stream) resetPending() {
	s.pending = s.pending[:0]
	s.havePendingTimestamp = false
	s.pendingTimestamp = 0
}
