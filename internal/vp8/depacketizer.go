// Package vp8 reassembles RTP-packetized VP8 (RFC 7741) video frames.
package vp8

import (
	"github.com/pkg/errors"

	"github.com/buldo/rtp-receiver/internal/logging"
	"github.com/buldo/rtp-receiver/internal/packet"
)

var log = logging.DefaultLogger.WithTag("vp8")

// ErrNotStartOfFrame describes a packet that arrives into an empty
// reassembly buffer without its payload descriptor's S (start of partition)
// bit set. Depacketize does not return it: such a packet is logged and
// skipped, and reassembly goes on with the next payload.
var ErrNotStartOfFrame = errors.New("vp8: packet without S bit discarded at start of frame")

// ErrOversizeFrame indicates the reassembled frame would exceed the
// depacketizer's configured maximum size.
var ErrOversizeFrame = errors.New("vp8: reconstructed frame exceeds maximum size")

// Depacketizer reassembles a VP8 frame from the RTP payloads belonging to a
// single RTP timestamp, already ordered into sequence-number order by the
// caller.
type Depacketizer struct {
	maxFrameSize int
	buf          *packet.FrameBuffer
	started      bool
}

// NewDepacketizer returns a Depacketizer bounded to maxFrameSize bytes.
func NewDepacketizer(maxFrameSize int) *Depacketizer {
	return &Depacketizer{
		maxFrameSize: maxFrameSize,
		buf:          packet.NewFrameBuffer(maxFrameSize),
	}
}

// Depacketize consumes the ordered RTP payloads of a single frame and
// returns the reassembled frame payload with all per-packet descriptors
// stripped, in packet order.
func (d *Depacketizer) Depacketize(payloads [][]byte) ([]byte, error) {
	d.buf.Reset()
	d.started = false

	for _, payload := range payloads {
		desc, err := parseDescriptor(payload)
		if err != nil {
			log.Warn("vp8: %v", err)
			continue
		}

		if !d.started {
			if !desc.startOfPartition {
				log.Warn("vp8: discarding packet without S bit before start of frame")
				continue
			}
			d.started = true
		}

		if err := d.buf.Write(payload[desc.length:]); err != nil {
			d.buf.Reset()
			d.started = false
			return nil, ErrOversizeFrame
		}
	}

	if !d.started || d.buf.Len() == 0 {
		return nil, nil
	}

	out := make([]byte, d.buf.Len())
	copy(out, d.buf.Bytes())
	return out, nil
}

// descriptor is the decoded VP8 payload descriptor.
// See https://tools.ietf.org/html/rfc7741#section-4.2
//    0 1 2 3 4 5 6 7
//   +-+-+-+-+-+-+-+-+
//   |X|R|N|S|R| PID  |
//   +-+-+-+-+-+-+-+-+
type descriptor struct {
	extended         bool
	nonReference     bool
	startOfPartition bool
	partitionID      byte

	// length is the total number of bytes occupied by the descriptor
	// (including any extended fields), i.e. the offset of the frame data.
	length int
}

// parseDescriptor decodes the payload descriptor at the start of payload,
// skipping the optional extended fields (PictureID, TL0PICIDX, TID/KEYIDX)
// as indicated by their presence bits, without interpreting their values.
func parseDescriptor(payload []byte) (descriptor, error) {
	if len(payload) < 1 {
		return descriptor{}, errors.New("vp8: empty payload")
	}

	b0 := payload[0]
	d := descriptor{
		extended:         b0&0x80 != 0,
		nonReference:     b0&0x20 != 0,
		startOfPartition: b0&0x10 != 0,
		partitionID:      b0 & 0x07,
		length:           1,
	}

	if !d.extended {
		return d, nil
	}

	if len(payload) < 2 {
		return descriptor{}, errors.New("vp8: truncated extended descriptor")
	}
	x := payload[1]
	hasPictureID := x&0x80 != 0
	hasTL0PICIDX := x&0x40 != 0
	hasTIDOrKeyIdx := x&0x20 != 0 || x&0x10 != 0
	d.length = 2

	if hasPictureID {
		if len(payload) < d.length+1 {
			return descriptor{}, errors.New("vp8: truncated PictureID")
		}
		if payload[d.length]&0x80 != 0 {
			// 15-bit PictureID, encoded in two bytes.
			d.length += 2
		} else {
			d.length++
		}
	}

	if hasTL0PICIDX {
		d.length++
	}

	if hasTIDOrKeyIdx {
		d.length++
	}

	if len(payload) < d.length {
		return descriptor{}, errors.New("vp8: truncated descriptor extensions")
	}

	return d, nil
}
