package rtp

// common.go holds logic shared between RTP and RTCP: the wire version
// number, the bad-version error, and bit-packing helpers. The RTP/RTCP
// demultiplexing heuristic is in classify.go.

import "fmt"

const (
	// rtpVersion is the only version defined by RFC 3550.
	rtpVersion = 2

	// minHeaderSize is the smallest possible RTP or RTCP header.
	minHeaderSize = 12
)

type errBadVersion byte

func (e errBadVersion) Error() string {
	return fmt.Sprintf("invalid RTP version: %d", byte(e))
}

//   0 1 2 3 4 5 6 7
//   a a b c d d d d
func splitByte2114(v byte) (a2 byte, b1 bool, c1 bool, d4 byte) {
	a2 = v >> 6
	b1 = ((v >> 5) & 0x01) == 1
	c1 = ((v >> 4) & 0x01) == 1
	d4 = v & 0x0f
	return
}

// Split a byte into the first 2 bits, the next bit, and the remaining 5 bits.
func splitByte215(v byte) (a2 byte, b1 bool, c5 byte) {
	a2 = v >> 6
	b1 = ((v >> 5) & 0x01) == 1
	c5 = v & 0x1f
	return
}

// Split a byte into the first bit and the remaining 7 bits, e.g. the second
// byte of the RTP header (marker bit + 7-bit payload type).
func splitByte17(v byte) (a1 bool, b7 byte) {
	a1 = (v >> 7) == 1
	b7 = v & 0x7f
	return
}
