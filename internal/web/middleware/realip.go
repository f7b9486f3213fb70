package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/JonMunkholm/userdash/internal/core"
)

// TrustedRealIP resolves the client IP. X-Real-IP and X-Forwarded-For are
// honoured only when the connection comes from a trusted proxy CIDR;
// otherwise the connection address is used.
//
// The resolved IP replaces r.RemoteAddr and is stored with
// core.ContextWithIPAddress. The rate limiter reads it from the context,
// never from request headers.
func TrustedRealIP(trustedCIDRs []string) func(http.Handler) http.Handler {
	trusted := parseTrusted(trustedCIDRs)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := extractIP(r.RemoteAddr)

			if isTrusted(ip, trusted) {
				if fwd := forwardedIP(r); fwd != nil {
					ip = fwd
				}
			}

			client := r.RemoteAddr
			if ip != nil {
				client = ip.String()
				r.RemoteAddr = client
			}

			ctx := core.ContextWithIPAddress(r.Context(), client)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientIP returns the IP stored by TrustedRealIP, or the connection address
// when the middleware did not run.
func ClientIP(r *http.Request) string {
	if ip := core.GetIPAddressFromContext(r.Context()); ip != "" {
		return ip
	}
	if ip := extractIP(r.RemoteAddr); ip != nil {
		return ip.String()
	}
	return r.RemoteAddr
}

// parseTrusted parses CIDRs and bare IPs. Invalid entries are logged and skipped.
func parseTrusted(cidrs []string) []*net.IPNet {
	var nets []*net.IPNet
	for _, cidr := range cidrs {
		cidr = strings.TrimSpace(cidr)
		if cidr == "" {
			continue
		}

		_, network, err := net.ParseCIDR(cidr)
		if err == nil {
			nets = append(nets, network)
			continue
		}

		// Single IP, e.g. "127.0.0.1" instead of "127.0.0.1/32"
		ip := net.ParseIP(cidr)
		if ip == nil {
			slog.Warn("realip: invalid trusted proxy CIDR, skipping",
				"cidr", cidr,
				"error", err,
			)
			continue
		}
		bits := 128
		if ip.To4() != nil {
			bits = 32
		}
		nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
	}
	return nets
}

// forwardedIP reads X-Real-IP, then the first X-Forwarded-For hop.
// Values that are not IPs are ignored.
func forwardedIP(r *http.Request) net.IP {
	if rip := r.Header.Get("X-Real-IP"); rip != "" {
		return net.ParseIP(strings.TrimSpace(rip))
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return net.ParseIP(strings.TrimSpace(first))
	}
	return nil
}

// extractIP parses an IP address from a host:port string or plain IP.
func extractIP(addr string) net.IP {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return net.ParseIP(host)
	}
	return net.ParseIP(addr)
}

// isTrusted checks if an IP is within any of the trusted networks.
func isTrusted(ip net.IP, trusted []*net.IPNet) bool {
	if ip == nil {
		return false
	}
	for _, network := range trusted {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
