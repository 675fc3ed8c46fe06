package router

import "net"

// Frame is a fully reassembled coded video frame, handed to the embedder's
// frame handler.
type Frame struct {
	// StreamSSRC identifies which RTP stream produced this frame.
	StreamSSRC uint32

	// RemoteAddr is the endpoint the owning stream's packets are currently
	// bound to.
	RemoteAddr *net.UDPAddr

	// Timestamp is the RTP timestamp shared by every packet that
	// contributed to this frame.
	Timestamp uint32

	// Codec identifies the payload format the frame was reassembled from.
	Codec Codec

	// Data is the reassembled frame: an Annex-B byte stream for H.264, or
	// the raw VP8 frame payload with descriptors stripped. It is owned by
	// the caller; the router will not reuse or mutate it after returning it.
	Data []byte

	// KeyFrame is true when the frame is independently decodable (H.264:
	// an SPS/PPS was observed; VP8 frames are not classified and this is
	// always false).
	KeyFrame bool
}

// FrameHandler is invoked once per reassembled frame, synchronously, from
// within the OnDatagram call that completed it.
type FrameHandler func(Frame)

// ByeHandler is invoked when an RTCP BYE is received for a known stream. It
// is optional diagnostic information; the stream is cleared regardless of
// whether a handler is registered.
type ByeHandler func(ssrc uint32, reason string)
