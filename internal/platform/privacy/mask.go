// Package privacy masks connection addresses before they reach request logs.
package privacy

import "net/netip"

const (
	v4Bits = 24
	v6Bits = 48
)

// MaskAddress keeps the network prefix of addr: /24 for IPv4 (including
// IPv4-mapped IPv6) and /48 for IPv6. Trust decisions always use the full
// address; only log lines are masked.
func MaskAddress(addr string) string {
	if addr == "" {
		return "unknown"
	}
	ip, err := netip.ParseAddr(addr)
	if err != nil {
		return "invalid"
	}
	ip = ip.Unmap().WithZone("")

	bits := v6Bits
	if ip.Is4() {
		bits = v4Bits
	}
	prefix, err := ip.Prefix(bits)
	if err != nil {
		return "invalid"
	}
	return prefix.Addr().String()
}
