package rtp

// RTP Control Protocol (RTCP), as defined in RFC 3550 Section 6.
//
// Only parsing is implemented (for BYE surfacing and basic receiver
// diagnostics); outbound RTCP generation is out of scope for this library.
//
//    0                   1                   2                   3
//    0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
//   +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//   |V=2|P|  count  |  packet type  |             length            |
//   +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+

import (
	errors "golang.org/x/xerrors"

	"github.com/buldo/rtp-receiver/internal/packet"
)

const (
	rtcpHeaderSize = 4
	rtcpReportSize = 6 * 4

	// RFC 3550 Section 6.
	TypeSenderReport      = 200
	TypeReceiverReport    = 201
	TypeSourceDescription = 202
	TypeGoodbye           = 203

	// RFC 4585.
	TypeTransportFeedback = 205
	TypePayloadFeedback   = 206
)

// RTCPHeader is the 4-byte prefix shared by every RTCP packet in a compound
// packet.
type RTCPHeader struct {
	Padding    bool
	Count      int // or feedback-message subtype, for 205/206
	PacketType byte
	Length     int // length of the packet, in 32-bit words, minus one
}

func (h *RTCPHeader) readFrom(r *packet.Reader) error {
	var version, count byte
	version, h.Padding, count = splitByte215(r.ReadByte())
	if version != rtpVersion {
		return errBadVersion(version)
	}
	h.Count = int(count)
	h.PacketType = r.ReadByte()
	h.Length = int(r.ReadUint16())
	return nil
}

// ReceptionReport is a single report block, as carried in both Sender and
// Receiver Report packets.
// See https://tools.ietf.org/html/rfc3550#section-6.4.1
type ReceptionReport struct {
	Source                    uint32
	FractionLost              float32
	TotalLost                 int
	LastSequence              uint32
	Jitter                    uint32
	LastSenderReportTimestamp uint32
	LastSenderReportDelay     uint32
}

// readFrom decodes one 24-byte reception report block. Both
// LastSenderReportTimestamp (offset 16) and LastSenderReportDelay (offset
// 20) are read explicitly and unconditionally; there is no endian-dependent
// branch here to accidentally skip the second field.
func (rep *ReceptionReport) readFrom(r *packet.Reader) {
	rep.Source = r.ReadUint32()
	rep.FractionLost = float32(r.ReadByte()) / 256
	rep.TotalLost = int(r.ReadUint24())
	rep.LastSequence = r.ReadUint32()
	rep.Jitter = r.ReadUint32()
	rep.LastSenderReportTimestamp = r.ReadUint32()
	rep.LastSenderReportDelay = r.ReadUint32()
}

// SenderReport is an RTCP SR packet (type 200).
type SenderReport struct {
	Sender       uint32
	NTPTimestamp uint64
	RTPTimestamp uint32
	PacketCount  uint32
	OctetCount   uint32
	Reports      []ReceptionReport
}

func (p *SenderReport) readFrom(r *packet.Reader, h *RTCPHeader) error {
	if 4*h.Length != 24+h.Count*rtcpReportSize {
		return errors.Errorf("invalid sender report: length=%d count=%d", h.Length, h.Count)
	}
	p.Sender = r.ReadUint32()
	p.NTPTimestamp = r.ReadUint64()
	p.RTPTimestamp = r.ReadUint32()
	p.PacketCount = r.ReadUint32()
	p.OctetCount = r.ReadUint32()
	for i := 0; i < h.Count; i++ {
		var rep ReceptionReport
		rep.readFrom(r)
		p.Reports = append(p.Reports, rep)
	}
	return nil
}

// ReceiverReport is an RTCP RR packet (type 201).
type ReceiverReport struct {
	Receiver uint32
	Reports  []ReceptionReport
}

func (p *ReceiverReport) readFrom(r *packet.Reader, h *RTCPHeader) error {
	if 4*h.Length != 4+h.Count*rtcpReportSize {
		return errors.Errorf("invalid receiver report: length=%d count=%d", h.Length, h.Count)
	}
	p.Receiver = r.ReadUint32()
	for i := 0; i < h.Count; i++ {
		var rep ReceptionReport
		rep.readFrom(r)
		p.Reports = append(p.Reports, rep)
	}
	return nil
}

const (
	sdesItemEnd   = 0
	sdesItemCNAME = 1
)

// SourceDescription is an RTCP SDES packet (type 202). Only the CNAME item
// is surfaced; other item types are skipped.
type SourceDescription struct {
	SSRC  uint32
	CNAME string
}

func (sdes *SourceDescription) readFrom(r *packet.Reader, h *RTCPHeader) error {
	if h.Count < 1 || h.Length < 1 {
		return errors.Errorf("invalid SDES packet header: %+v", h)
	}
	sdes.SSRC = r.ReadUint32()

	for r.Remaining() > 0 {
		what := r.ReadByte()
		if what == sdesItemEnd {
			r.Align(4)
			return nil
		}
		length := int(r.ReadByte())
		if err := r.CheckRemaining(length); err != nil {
			return errors.Errorf("SDES item: %v: %w", err, ErrShortBuffer)
		}
		text := r.ReadString(length)
		if what == sdesItemCNAME {
			sdes.CNAME = text
		}
	}
	return nil
}

// Goodbye is an RTCP BYE packet (type 203), signaling that the sender(s) are
// leaving the session.
type Goodbye struct {
	Sources []uint32
	Reason  string
}

func (bye *Goodbye) readFrom(r *packet.Reader, h *RTCPHeader) error {
	if err := r.CheckRemaining(4 * h.Count); err != nil {
		return errors.Errorf("goodbye: %w", err)
	}
	for i := 0; i < h.Count; i++ {
		bye.Sources = append(bye.Sources, r.ReadUint32())
	}
	if r.Remaining() > 0 {
		length := int(r.ReadByte())
		if err := r.CheckRemaining(length); err == nil {
			bye.Reason = r.ReadString(length)
		}
	}
	return nil
}

// CompoundPacket is the result of parsing one RTCP compound datagram: zero
// or more individual RTCP packets, in wire order.
type CompoundPacket struct {
	SenderReports      []*SenderReport
	ReceiverReports    []*ReceiverReport
	SourceDescriptions []*SourceDescription
	Goodbyes           []*Goodbye
}

// ParseRTCP decodes a compound RTCP datagram. Unrecognized or unimplemented
// packet types (APP, transport/payload feedback) are skipped using their
// declared length, not treated as errors.
func ParseRTCP(buf []byte) (*CompoundPacket, error) {
	r := packet.NewReader(buf)
	cp := new(CompoundPacket)

	for r.Remaining() > 0 {
		if err := r.CheckRemaining(rtcpHeaderSize); err != nil {
			return nil, errors.Errorf("short RTCP header: %w", ErrMalformedHeader)
		}

		var h RTCPHeader
		if err := h.readFrom(r); err != nil {
			return nil, errors.Errorf("%v: %w", err, ErrMalformedHeader)
		}

		if err := r.CheckRemaining(4 * h.Length); err != nil {
			return nil, errors.Errorf("RTCP packet body: %w", ErrShortBuffer)
		}
		body := packet.NewReader(r.ReadSlice(4 * h.Length))

		switch h.PacketType {
		case TypeSenderReport:
			p := new(SenderReport)
			if err := p.readFrom(body, &h); err != nil {
				return nil, err
			}
			cp.SenderReports = append(cp.SenderReports, p)
		case TypeReceiverReport:
			p := new(ReceiverReport)
			if err := p.readFrom(body, &h); err != nil {
				return nil, err
			}
			cp.ReceiverReports = append(cp.ReceiverReports, p)
		case TypeSourceDescription:
			p := new(SourceDescription)
			if err := p.readFrom(body, &h); err != nil {
				return nil, err
			}
			cp.SourceDescriptions = append(cp.SourceDescriptions, p)
		case TypeGoodbye:
			p := new(Goodbye)
			if err := p.readFrom(body, &h); err != nil {
				return nil, err
			}
			cp.Goodbyes = append(cp.Goodbyes, p)
		default:
			// APP, transport/payload-specific feedback, etc: acknowledged
			// but not decoded.
		}
	}

	return cp, nil
}
