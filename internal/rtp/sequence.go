package rtp

// SequenceLess reports whether a precedes b in the cyclic 16-bit sequence
// number space, per the wraparound-aware comparator: a < b iff
// (b - a) mod 2^16 < 2^15. For two distinct values exactly one of
// SequenceLess(a, b) and SequenceLess(b, a) holds, except when they are
// exactly 2^15 apart, where neither does. The relation is not transitive
// across the whole space (as with any cyclic ordering), which is expected:
// it is only ever applied to sequence numbers belonging to a single
// in-progress frame.
func SequenceLess(a, b uint16) bool {
	return uint16(b-a) < 0x8000 && a != b
}

// SequenceDelta returns the signed distance from a to b, accounting for
// 16-bit wraparound: positive when b follows a, negative when b precedes a.
func SequenceDelta(a, b uint16) int32 {
	return int32(int16(b - a))
}

// NextSequence reports whether seq is the immediate successor of last,
// modulo 2^16 (i.e. seq == last+1, including the 0xFFFF -> 0x0000 wrap).
func NextSequence(last, seq uint16) bool {
	return seq == last+1
}
