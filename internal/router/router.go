// Package router implements the stream router (component E): it owns
// per-SSRC state, dispatches each RTP packet to the correct depacketizer,
// raises frame-ready events, and tracks sequence-jump and NAT-rebind
// diagnostics.
package router

import (
	"net"
	"sort"
	"sync"

	"github.com/buldo/rtp-receiver/internal/logging"
	"github.com/buldo/rtp-receiver/internal/rtp"
)

var log = logging.DefaultLogger.WithTag("router")

// Router is the single entry point for a session's worth of incoming RTP
// and RTCP traffic. Every exported method takes r.mu, so calls from several
// goroutines are serialized; the frame and BYE handlers run with r.mu held,
// from inside the OnDatagram call that triggered them.
type Router struct {
	config Config

	mu      sync.Mutex
	streams map[uint32]*stream

	// warnedUnknownPayloadType tracks which SSRCs we've already logged an
	// UnknownPayloadType warning for, so it's logged once per SSRC even
	// though no stream object is created for them.
	warnedUnknownPayloadType map[uint32]bool

	frameHandler FrameHandler
	byeHandler   ByeHandler

	closed bool

	counters counters
}

// NewRouter constructs a Router with the given configuration.
func NewRouter(config Config) *Router {
	return &Router{
		config:                   config,
		streams:                  make(map[uint32]*stream),
		warnedUnknownPayloadType: make(map[uint32]bool),
	}
}

// SetFrameHandler registers the callback invoked once per reassembled
// frame. Only one handler is supported; a later call replaces the former.
func (r *Router) SetFrameHandler(h FrameHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frameHandler = h
}

// SetByeHandler registers an optional callback invoked when an RTCP BYE
// arrives for a known stream.
func (r *Router) SetByeHandler(h ByeHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byeHandler = h
}

// Stats returns a snapshot of the router's diagnostic counters.
func (r *Router) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counters.snapshot()
}

// Close idempotently shuts the router down: all streams are discarded and
// subsequent datagrams are dropped. reason is for logging only.
func (r *Router) Close(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	log.Info("router closing: %s", reason)
	r.streams = make(map[uint32]*stream)
	r.frameHandler = nil
	r.byeHandler = nil
}

// OnDatagram is the synchronous entry point for one received UDP datagram.
// localPort identifies which local socket it arrived on (informational,
// for multi-socket embedders); remoteAddr is the sender's endpoint. buf is
// owned by the caller and must not be retained past this call: OnDatagram
// copies whatever it needs to keep.
func (r *Router) OnDatagram(localPort int, remoteAddr *net.UDPAddr, buf []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}

	kind, err := rtp.Classify(buf)
	if err != nil {
		r.counters.malformedHeader++
		return
	}

	switch kind {
	case rtp.KindRTCP:
		r.handleRTCP(buf)
	case rtp.KindRTP:
		r.handleRTP(remoteAddr, buf)
	}
}

func (r *Router) handleRTCP(buf []byte) {
	cp, err := rtp.ParseRTCP(buf)
	if err != nil {
		r.counters.malformedHeader++
		return
	}

	for _, bye := range cp.Goodbyes {
		for _, ssrc := range bye.Sources {
			if _, ok := r.streams[ssrc]; ok {
				delete(r.streams, ssrc)
				log.Debug("stream %08x closed by RTCP BYE: %s", ssrc, bye.Reason)
				if r.byeHandler != nil {
					r.byeHandler(ssrc, bye.Reason)
				}
			}
		}
	}
}

func (r *Router) handleRTP(remoteAddr *net.UDPAddr, buf []byte) {
	hdr, err := rtp.ParseHeader(buf)
	if err != nil {
		r.counters.malformedHeader++
		return
	}

	s, ok := r.streams[hdr.SSRC]
	if !ok {
		codec, known := r.config.payloadTypes()[hdr.PayloadType]
		if !known {
			r.counters.unknownPayloadType++
			if !r.warnedUnknownPayloadType[hdr.SSRC] {
				log.Warn("unknown payload type %d for SSRC %08x; dropping", hdr.PayloadType, hdr.SSRC)
				r.warnedUnknownPayloadType[hdr.SSRC] = true
			}
			return
		}
		s = newStream(hdr.SSRC, codec, remoteAddr, r.config.maxFrameSize())
		r.streams[hdr.SSRC] = s
		log.Debug("new stream %08x: codec=%s remote=%s", hdr.SSRC, codec, remoteAddr)
	} else {
		if !sameEndpoint(s.remoteAddr, remoteAddr) {
			if acceptRebind(s.remoteAddr, remoteAddr, r.config.AcceptRTPFromAny) {
				log.Info("stream %08x rebinding endpoint %s -> %s", s.ssrc, s.remoteAddr, remoteAddr)
				s.remoteAddr = remoteAddr
			} else {
				r.counters.endpointMismatch++
				log.Warn("stream %08x: packet from unexpected endpoint %s (expected %s), dropping", s.ssrc, remoteAddr, s.remoteAddr)
				return
			}
		}
	}

	r.checkSequence(s, hdr.Sequence)

	if s.havePendingTimestamp && hdr.Timestamp != s.pendingTimestamp {
		log.Debug("stream %08x: new timestamp %d arrived before marker of %d; discarding in-progress frame",
			s.ssrc, hdr.Timestamp, s.pendingTimestamp)
		s.resetPending()
	}
	s.havePendingTimestamp = true
	s.pendingTimestamp = hdr.Timestamp

	payload := hdr.Payload()
	payloadCopy := make([]byte, len(payload))
	copy(payloadCopy, payload)
	s.pending = append(s.pending, bufferedPacket{sequence: hdr.Sequence, payload: payloadCopy})

	if hdr.Marker {
		r.closeFrame(s, remoteAddr)
	}
}

func (r *Router) checkSequence(s *stream, seq uint16) {
	if s.haveLastSeq && !rtp.NextSequence(s.lastSeq, seq) {
		r.counters.sequenceJump++
		log.Warn("stream %08x: sequence jump %d -> %d", s.ssrc, s.lastSeq, seq)
	}
	s.lastSeq = seq
	s.haveLastSeq = true
}

// closeFrame reorders the buffered packets of the in-progress timestamp by
// sequence number (wraparound-aware), hands them to the stream's
// depacketizer, and emits the resulting frame.
func (r *Router) closeFrame(s *stream, remoteAddr *net.UDPAddr) {
	defer s.resetPending()

	sort.Slice(s.pending, func(i, j int) bool {
		return rtp.SequenceLess(s.pending[i].sequence, s.pending[j].sequence)
	})

	payloads := make([][]byte, len(s.pending))
	for i, p := range s.pending {
		payloads[i] = p.payload
	}

	timestamp := s.pendingTimestamp

	var (
		data     []byte
		keyFrame bool
		err      error
	)
	switch s.codec {
	case CodecH264:
		data, keyFrame, err = s.h264Dep.Depacketize(payloads)
		r.counters.fragmentOutOfOrder += uint64(s.h264Dep.DroppedFragments())
	case CodecVP8:
		data, err = s.vp8Dep.Depacketize(payloads)
	}

	if err != nil {
		r.counters.oversizeFrame++
		log.Warn("stream %08x: %v; dropping frame", s.ssrc, err)
		return
	}
	if data == nil {
		return
	}

	if r.frameHandler != nil {
		r.frameHandler(Frame{
			StreamSSRC: s.ssrc,
			RemoteAddr: remoteAddr,
			Timestamp:  timestamp,
			Codec:      s.codec,
			Data:       data,
			KeyFrame:   keyFrame,
		})
	}
}

