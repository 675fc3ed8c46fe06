package rtp

import errors "golang.org/x/xerrors"

// Kind identifies the protocol a classified datagram belongs to.
type Kind int

const (
	// KindUnknown is returned (with an error) for datagrams that fail the
	// minimum-length or version checks and must be dropped silently.
	KindUnknown Kind = iota
	KindRTP
	KindRTCP
)

// ErrDatagramTooShort is returned by Classify for any datagram under 12
// bytes, or whose top two bits of the first byte are not version 2.
var ErrDatagramTooShort = errors.New("rtp: datagram too short or wrong version to classify")

// rtcpPacketTypes lists the packet-type byte values Classify recognizes as
// RTCP (SR, RR, SDES, BYE, RTPFB, PSFB). Other values in [128,223] are
// reserved/unassigned and are treated as RTP, per the demultiplexing
// heuristic in RFC 5761 Section 4.
var rtcpPacketTypes = map[byte]bool{
	200: true, // SR
	201: true, // RR
	202: true, // SDES
	203: true, // BYE
	205: true, // RTPFB
	206: true, // PSFB
}

// Classify decides whether buf is an RTP packet, an RTCP packet, or neither.
// It inspects only the first two bytes and never allocates.
func Classify(buf []byte) (Kind, error) {
	if len(buf) < minHeaderSize {
		return KindUnknown, ErrDatagramTooShort
	}

	version := buf[0] >> 6
	if version != rtpVersion {
		return KindUnknown, ErrDatagramTooShort
	}

	if rtcpPacketTypes[buf[1]] {
		return KindRTCP, nil
	}
	return KindRTP, nil
}
