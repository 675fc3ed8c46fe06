package rtp

// RTP Data Transfer Protocol, as defined in RFC 3550 Section 5.
//
// An RTP packet consists of a fixed 12-byte header, zero or more 32-bit CSRC
// identifiers, an optional extension block, and the payload.
// See https://tools.ietf.org/html/rfc3550#section-5.1
//    0                   1                   2                   3
//    0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
//   +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//   |V=2|P|X|  CC   |M|     PT      |       sequence number         |
//   +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//   |                           timestamp                           |
//   +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//   |           synchronization source (SSRC) identifier            |
//   +=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+
//   |            contributing source (CSRC) identifiers             |
//   |                             ....                              |
//   +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+

import (
	errors "golang.org/x/xerrors"

	"github.com/buldo/rtp-receiver/internal/packet"
)

const rtpHeaderSize = 12

// Header is a fully decoded RTP fixed header, plus the CSRC list and
// extension block if present.
type Header struct {
	Padding     bool
	Extension   bool
	Marker      bool
	PayloadType byte
	Sequence    uint16
	Timestamp   uint32
	SSRC        uint32
	CSRC        []uint32

	// ExtensionProfile and ExtensionData are populated only when Extension
	// is true. ExtensionData is the raw extension words, not interpreted.
	ExtensionProfile uint16
	ExtensionData    []byte

	// payload is the slice of the original datagram holding the RTP
	// payload, with any trailing padding already trimmed. It aliases the
	// caller's buffer; it is never copied here.
	payload []byte
}

// Payload returns the RTP payload, aliasing the buffer passed to
// ParseHeader. Callers that retain it beyond the current call must copy it.
func (h *Header) Payload() []byte {
	return h.payload
}

// ParseHeader decodes an RTP header from buf, a single UDP datagram. The
// returned Header's Payload() aliases buf; ParseHeader never copies.
func ParseHeader(buf []byte) (*Header, error) {
	if len(buf) < rtpHeaderSize {
		return nil, errors.Errorf("datagram too short: %d bytes: %w", len(buf), ErrMalformedHeader)
	}

	r := packet.NewReader(buf)

	var h Header
	version, padding, extension, csrcCount := splitByte2114(r.ReadByte())
	if version != rtpVersion {
		return nil, errors.Errorf("%v: %w", errBadVersion(version), ErrMalformedHeader)
	}
	h.Padding = padding
	h.Extension = extension

	if err := r.CheckRemaining(11 + 4*int(csrcCount)); err != nil {
		return nil, errors.Errorf("CSRC list: %v: %w", err, ErrShortBuffer)
	}
	h.Marker, h.PayloadType = splitByte17(r.ReadByte())
	h.Sequence = r.ReadUint16()
	h.Timestamp = r.ReadUint32()
	h.SSRC = r.ReadUint32()
	for i := 0; i < int(csrcCount); i++ {
		h.CSRC = append(h.CSRC, r.ReadUint32())
	}

	if h.Extension {
		if err := r.CheckRemaining(4); err != nil {
			return nil, errors.Errorf("extension header: %v: %w", err, ErrShortBuffer)
		}
		h.ExtensionProfile = r.ReadUint16()
		length := int(r.ReadUint16()) // length of extension, in 32-bit words
		if err := r.CheckRemaining(4 * length); err != nil {
			return nil, errors.Errorf("extension data: %v: %w", err, ErrShortBuffer)
		}
		h.ExtensionData = r.ReadSlice(4 * length)
	}

	rest := r.ReadRemaining()
	if h.Padding {
		if len(rest) == 0 {
			return nil, errors.Errorf("padding bit set but no payload bytes: %w", ErrMalformedHeader)
		}
		padLen := int(rest[len(rest)-1])
		if padLen == 0 || padLen > len(rest) {
			return nil, errors.Errorf("invalid padding length: %w", ErrMalformedHeader)
		}
		rest = rest[:len(rest)-padLen]
	}
	h.payload = rest

	return &h, nil
}

// Len returns the total size of the header, including the CSRC list and
// extension block (but not the payload or padding).
func (h *Header) Len() int {
	n := rtpHeaderSize + 4*len(h.CSRC)
	if h.Extension {
		n += 4 + len(h.ExtensionData)
	}
	return n
}
