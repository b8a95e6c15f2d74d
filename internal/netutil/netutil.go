// Package netutil sanitizes the client-supplied audit context attached to
// push authentication requests before it reaches storage.
package netutil

import (
	"net/netip"
	"strings"
	"unicode/utf8"
)

const (
	MaxUserAgentLength = 512
	MaxLocationLength  = 256
)

// NormalizeIP accepts a bare IP or a host:port pair (including bracketed
// IPv6 such as "[2001:db8::1]:443") and returns the canonical IP without a
// zone identifier. The second return value reports whether the input parsed
// as an IP at all; callers store the raw string when it does not.
func NormalizeIP(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if addrPort, err := netip.ParseAddrPort(raw); err == nil {
		return addrPort.Addr().WithZone("").String(), true
	}
	if addr, err := netip.ParseAddr(raw); err == nil {
		return addr.WithZone("").String(), true
	}
	// Bracketed IPv6 whose port part did not parse numerically.
	if strings.HasPrefix(raw, "[") {
		if end := strings.LastIndex(raw, "]"); end > 0 {
			if addr, err := netip.ParseAddr(raw[1:end]); err == nil {
				return addr.WithZone("").String(), true
			}
		}
	}
	// host:junk where host alone is a valid IPv4.
	if idx := strings.LastIndex(raw, ":"); idx > 0 {
		if addr, err := netip.ParseAddr(raw[:idx]); err == nil {
			return addr.WithZone("").String(), true
		}
	}
	return raw, false
}

// TruncateUserAgent caps a user agent at MaxUserAgentLength runes.
func TruncateUserAgent(ua string) string { return truncateRunes(ua, MaxUserAgentLength) }

// TruncateLocation caps a location label at MaxLocationLength runes.
func TruncateLocation(loc string) string { return truncateRunes(loc, MaxLocationLength) }

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	n := 0
	for _, r := range s {
		b.WriteRune(r)
		n++
		if n >= max {
			break
		}
	}
	return b.String()
}
