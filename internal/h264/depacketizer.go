// Package h264 reassembles RTP-packetized H.264 (RFC 6184) video frames
// into Annex-B byte streams.
package h264

import (
	"github.com/pkg/errors"

	"github.com/buldo/rtp-receiver/internal/logging"
	"github.com/buldo/rtp-receiver/internal/packet"
)

var log = logging.DefaultLogger.WithTag("h264")

// NAL unit types of interest. See https://tools.ietf.org/html/rfc6184#section-5.2
const (
	naluTypeNonIDRSlice = 1
	naluTypeIDRSlice    = 5
	naluTypeSEI         = 6
	naluTypeSPS         = 7
	naluTypePPS         = 8
	naluTypeSTAPA       = 24
	naluTypeSTAPB       = 25
	naluTypeMTAP16      = 26
	naluTypeMTAP24      = 27
	naluTypeFUA         = 28
	naluTypeFUB         = 29
)

// annexBStartCode is the Annex-B byte-stream start code prefixed to every
// output NAL unit.
var annexBStartCode = [4]byte{0, 0, 0, 1}

// ErrFragmentOutOfOrder indicates an FU-A continuation or end packet arrived
// without (or after losing) its start packet. The caller drops the
// in-progress NAL; it does not abort the whole frame.
var ErrFragmentOutOfOrder = errors.New("h264: FU-A fragment out of order")

// ErrOversizeFrame indicates that reassembling the ordered payload list
// would exceed the depacketizer's configured maximum frame size.
var ErrOversizeFrame = errors.New("h264: reconstructed frame exceeds maximum size")

// Depacketizer reassembles a single coded video frame from the RTP payloads
// of one RTP timestamp, already sorted into sequence-number order by the
// caller (see internal/router).
type Depacketizer struct {
	maxFrameSize int

	out *packet.FrameBuffer

	// Fragment accumulator for an in-progress FU-A NAL unit.
	fragment    *packet.FrameBuffer
	fragmenting bool

	// droppedFragments counts FU-A continuation/end packets dropped by the
	// most recent Depacketize call due to a missing start fragment.
	droppedFragments int
}

// DroppedFragments returns the number of FU-A fragments discarded as
// out-of-order by the most recent call to Depacketize.
func (d *Depacketizer) DroppedFragments() int {
	return d.droppedFragments
}

// NewDepacketizer returns a Depacketizer bounded to maxFrameSize bytes of
// reconstructed output.
func NewDepacketizer(maxFrameSize int) *Depacketizer {
	return &Depacketizer{
		maxFrameSize: maxFrameSize,
		out:          packet.NewFrameBuffer(maxFrameSize),
		fragment:     packet.NewFrameBuffer(maxFrameSize),
	}
}

// Depacketize consumes the ordered RTP payloads of a single frame and
// returns the Annex-B framed NAL unit stream, plus whether the frame
// contains a key frame indicator (SPS or PPS).
//
// A frame whose total size would exceed the configured maximum is dropped
// (ErrOversizeFrame); fragment-ordering problems (ErrFragmentOutOfOrder) are
// logged and drop only the affected NAL unit, not the whole frame.
func (d *Depacketizer) Depacketize(payloads [][]byte) (frame []byte, isKeyFrame bool, err error) {
	d.out.Reset()
	d.fragmenting = false
	d.fragment.Reset()
	d.droppedFragments = 0

	for _, payload := range payloads {
		if len(payload) == 0 {
			continue
		}

		naluType := payload[0] & 0x1f
		switch {
		case naluType >= 1 && naluType <= 23:
			if err := d.emitNALU(payload); err != nil {
				return nil, false, err
			}
			isKeyFrame = isKeyFrame || decisiveKeyFrame(naluType)

		case naluType == naluTypeSTAPA:
			nalus, err := splitSTAPA(payload)
			if err != nil {
				log.Warn("h264: truncated STAP-A: %v", err)
			}
			for _, nalu := range nalus {
				if len(nalu) == 0 {
					continue
				}
				if err := d.emitNALU(nalu); err != nil {
					return nil, false, err
				}
				isKeyFrame = isKeyFrame || decisiveKeyFrame(nalu[0]&0x1f)
			}

		case naluType == naluTypeFUA:
			nalu, complete, ferr := d.consumeFUA(payload)
			if ferr != nil {
				if errors.Cause(ferr) == ErrOversizeFrame {
					return nil, false, ErrOversizeFrame
				}
				log.Warn("%v", ferr)
				d.fragmenting = false
				d.fragment.Reset()
				d.droppedFragments++
				continue
			}
			if !complete {
				continue
			}
			if err := d.emitNALU(nalu); err != nil {
				return nil, false, err
			}
			isKeyFrame = isKeyFrame || decisiveKeyFrame(nalu[0]&0x1f)

		case naluType == naluTypeSTAPB || naluType == naluTypeMTAP16 ||
			naluType == naluTypeMTAP24 || naluType == naluTypeFUB:
			log.Debug("h264: dropping unimplemented packetization type %d", naluType)

		default:
			log.Debug("h264: dropping NAL unit of unknown type %d", naluType)
		}
	}

	if d.out.Len() == 0 {
		return nil, false, nil
	}
	// Copy out of the reusable buffer so the caller can hold onto it past
	// the next Depacketize call.
	out := make([]byte, d.out.Len())
	copy(out, d.out.Bytes())
	return out, isKeyFrame, nil
}

// decisiveKeyFrame reports whether naluType is a key-frame indicator.
// SPS/PPS sets the sticky key-frame flag for the whole frame; once set, a
// later non-IDR/IDR slice in the same frame does not clear it (see spec
// scenario: SPS followed by a type-5 slice is still a key frame).
func decisiveKeyFrame(naluType byte) bool {
	return naluType == naluTypeSPS || naluType == naluTypePPS
}

// emitNALU appends one Annex-B framed NAL unit to the output buffer.
func (d *Depacketizer) emitNALU(nalu []byte) error {
	if len(nalu) == 0 {
		return nil
	}
	if err := d.out.Write(annexBStartCode[:]); err != nil {
		return ErrOversizeFrame
	}
	if err := d.out.Write(nalu); err != nil {
		return ErrOversizeFrame
	}
	return nil
}

// consumeFUA processes one FU-A packet, returning the reassembled NAL unit
// once the end fragment has been consumed.
// See https://tools.ietf.org/html/rfc6184#section-5.8
func (d *Depacketizer) consumeFUA(payload []byte) (nalu []byte, complete bool, err error) {
	if len(payload) < 2 {
		return nil, false, errors.Wrap(ErrFragmentOutOfOrder, "FU-A payload too short")
	}

	indicator := payload[0]
	header := payload[1]
	start := header&0x80 != 0
	end := header&0x40 != 0
	originalType := header & 0x1f

	if start {
		d.fragment.Reset()
		d.fragmenting = true
		reconstructedHeader := (indicator & 0xe0) | originalType
		if err := d.fragment.WriteByte(reconstructedHeader); err != nil {
			d.fragmenting = false
			return nil, false, errors.Wrap(ErrOversizeFrame, "FU-A start")
		}
	} else if !d.fragmenting {
		return nil, false, errors.Wrap(ErrFragmentOutOfOrder, "FU-A continuation without start")
	}

	if err := d.fragment.Write(payload[2:]); err != nil {
		d.fragmenting = false
		return nil, false, errors.Wrap(ErrOversizeFrame, "FU-A accumulation")
	}

	if !end {
		return nil, false, nil
	}

	d.fragmenting = false
	out := make([]byte, d.fragment.Len())
	copy(out, d.fragment.Bytes())
	return out, true, nil
}

// splitSTAPA splits a STAP-A packet into its constituent NAL units.
// See https://tools.ietf.org/html/rfc6184#section-5.7.1
func splitSTAPA(payload []byte) ([][]byte, error) {
	var nalus [][]byte
	r := packet.NewReader(payload)
	r.Skip(1) // STAP-A indicator byte
	for r.Remaining() > 0 {
		if err := r.CheckRemaining(2); err != nil {
			// Malformed truncation terminates the packet without error.
			return nalus, nil
		}
		n := int(r.ReadUint16())
		if err := r.CheckRemaining(n); err != nil {
			// Malformed truncation terminates the packet without error.
			return nalus, nil
		}
		nalus = append(nalus, r.ReadSlice(n))
	}
	return nalus, nil
}
