package router

// Stats is a point-in-time snapshot of the router's diagnostic counters, per
// the error kinds in the error-handling design.
type Stats struct {
	MalformedHeader    uint64
	UnknownPayloadType uint64
	SequenceJump       uint64
	FragmentOutOfOrder uint64
	OversizeFrame      uint64
	EndpointMismatch   uint64
}

// counters is plain (non-atomic) state. It is only ever touched while
// Router.mu is held, including by Router.Stats; see router.go.
type counters struct {
	malformedHeader    uint64
	unknownPayloadType uint64
	sequenceJump       uint64
	fragmentOutOfOrder uint64
	oversizeFrame      uint64
	endpointMismatch   uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		MalformedHeader:    c.malformedHeader,
		UnknownPayloadType: c.unknownPayloadType,
		SequenceJump:       c.sequenceJump,
		FragmentOutOfOrder: c.fragmentOutOfOrder,
		OversizeFrame:      c.oversizeFrame,
		EndpointMismatch:   c.endpointMismatch,
	}
}
