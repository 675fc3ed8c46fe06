package router

// Codec identifies which depacketizer a stream's RTP payload type maps to.
type Codec int

const (
	CodecUnknown Codec = iota
	CodecH264
	CodecVP8
)

func (c Codec) String() string {
	switch c {
	case CodecH264:
		return "H264"
	case CodecVP8:
		return "VP8"
	default:
		return "unknown"
	}
}

// DefaultPayloadTypes is the static payload-type-to-codec mapping used when
// a Config doesn't override it: H.264 on the two payload types commonly
// negotiated dynamically for it (96, 97), VP8 on 98.
var DefaultPayloadTypes = map[byte]Codec{
	96: CodecH264,
	97: CodecH264,
	98: CodecVP8,
}
