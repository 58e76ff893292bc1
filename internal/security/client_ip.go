package security

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// IPResolver determines the client address of a request. Forwarding
// headers are honoured only when the direct peer is a trusted proxy, so
// clients cannot choose their own address.
type IPResolver struct {
	trusted []*net.IPNet
}

// NewIPResolver parses trusted proxy addresses given as IPs or CIDRs
func NewIPResolver(trustedProxies []string) (*IPResolver, error) {
	r := &IPResolver{}
	for _, entry := range trustedProxies {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		if !strings.Contains(entry, "/") {
			ip := net.ParseIP(entry)
			if ip == nil {
				return nil, fmt.Errorf("invalid trusted proxy: %s", entry)
			}
			bits := 128
			if ip.To4() != nil {
				bits = 32
			}
			entry = fmt.Sprintf("%s/%d", entry, bits)
		}

		_, network, err := net.ParseCIDR(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
		}
		r.trusted = append(r.trusted, network)
	}
	return r, nil
}

// ClientIP returns the client address. Behind a trusted proxy it is the
// right-most untrusted X-Forwarded-For hop, or X-Real-IP; otherwise the
// peer address. A nil resolver trusts no proxy.
func (r *IPResolver) ClientIP(req *http.Request) string {
	remote := RemoteIP(req)
	if r == nil || !r.isTrusted(remote) {
		return remote
	}

	if xff := req.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop != "" && !r.isTrusted(hop) {
				return hop
			}
		}
	}

	if xri := strings.TrimSpace(req.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return remote
}

func (r *IPResolver) isTrusted(addr string) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	for _, network := range r.trusted {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// RemoteIP returns the host part of the request's peer address
func RemoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.Trim(r.RemoteAddr, "[]")
	}
	return host
}
