package router

import "net"

// isPrivate reports whether addr's IP is a private-use, loopback, or
// link-local address — the kind of *expected* endpoint that acceptRebind
// lets a stream move away from. A stream's expected endpoint is the one its
// first RTP packet came from.
func isPrivate(addr *net.UDPAddr) bool {
	if addr == nil || addr.IP == nil {
		return false
	}
	ip := addr.IP
	return ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast()
}

// isPublic is the complement of isPrivate for a concrete, non-nil address.
func isPublic(addr *net.UDPAddr) bool {
	if addr == nil || addr.IP == nil {
		return false
	}
	return !isPrivate(addr)
}

func sameEndpoint(a, b *net.UDPAddr) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.IP.Equal(b.IP) && a.Port == b.Port
}

// acceptRebind decides whether a packet observed from `observed`, for a
// stream currently bound to `expected`, should be accepted (and the stream
// rebound to `observed`), per the NAT-traversal heuristic: accept
// unconditionally when acceptAny is set, or when the expected endpoint is
// private and the observed one is public.
func acceptRebind(expected, observed *net.UDPAddr, acceptAny bool) bool {
	if sameEndpoint(expected, observed) {
		return true
	}
	if acceptAny {
		return true
	}
	return isPrivate(expected) && isPublic(observed)
}
