// Package rtpreceiver implements the core of an RTP video receiver: it
// classifies incoming UDP datagrams as RTP or RTCP, routes RTP packets to
// per-stream H.264 or VP8 depacketizers, and emits reassembled frames to the
// embedding application.
//
// The UDP socket itself, SDP negotiation, and outbound RTCP statistics are
// the embedder's responsibility; see cmd/rtpvideod for a reference adapter
// that binds a socket and feeds datagrams to a Receiver.
package rtpreceiver

import (
	"net"

	"github.com/buldo/rtp-receiver/internal/router"
)

// Config controls the receiver's tunables.
type Config = router.Config

// Codec identifies the video codec a stream's payload type maps to.
type Codec = router.Codec

const (
	CodecUnknown = router.CodecUnknown
	CodecH264    = router.CodecH264
	CodecVP8     = router.CodecVP8
)

// DefaultPayloadTypes is the static RTP payload-type-to-codec mapping used
// when Config.PayloadTypes is nil.
var DefaultPayloadTypes = router.DefaultPayloadTypes

// DefaultMaxReconstructedFrameSize bounds a single emitted frame when
// Config.MaxReconstructedFrameSize is zero.
const DefaultMaxReconstructedFrameSize = router.DefaultMaxReconstructedFrameSize

// Frame is one fully reassembled coded video frame.
type Frame = router.Frame

// FrameHandler is invoked once per reassembled frame, synchronously, from
// the goroutine that called Receiver.OnDatagram.
type FrameHandler = router.FrameHandler

// ByeHandler is invoked when an RTCP BYE arrives for a known stream.
type ByeHandler = router.ByeHandler

// Stats is a snapshot of the receiver's diagnostic counters.
type Stats = router.Stats

// Receiver is the embedding application's entry point: feed it datagrams
// via OnDatagram, register a FrameHandler to receive reassembled frames,
// and Close it when the session ends.
//
// A Receiver is single-threaded cooperative: all state mutation happens on
// the goroutine that calls OnDatagram. If the socket layer reads on its own
// goroutine, it must either call OnDatagram directly from that goroutine (no
// concurrent OnDatagram calls from elsewhere) or serialize calls itself.
type Receiver struct {
	router *router.Router
}

// NewReceiver constructs a Receiver with the given configuration.
func NewReceiver(config Config) *Receiver {
	return &Receiver{router: router.NewRouter(config)}
}

// SetFrameHandler registers the callback invoked once per reassembled
// frame. Only one handler is supported; a later call replaces the former.
func (rv *Receiver) SetFrameHandler(h FrameHandler) {
	rv.router.SetFrameHandler(h)
}

// SetByeHandler registers an optional callback invoked on RTCP BYE for a
// known stream.
func (rv *Receiver) SetByeHandler(h ByeHandler) {
	rv.router.SetByeHandler(h)
}

// OnDatagram is the synchronous entry point for one received UDP datagram.
// buf is owned by the caller and must not be retained past this call.
func (rv *Receiver) OnDatagram(localPort int, remoteAddr *net.UDPAddr, buf []byte) {
	rv.router.OnDatagram(localPort, remoteAddr, buf)
}

// Stats returns a snapshot of the receiver's diagnostic counters.
func (rv *Receiver) Stats() Stats {
	return rv.router.Stats()
}

// Close idempotently shuts the receiver down: in-progress reassembly
// buffers are freed and subsequent datagrams are dropped.
func (rv *Receiver) Close(reason string) {
	rv.router.Close(reason)
}
