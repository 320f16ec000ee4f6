package main

import (
	"encoding/binary"
	"fmt"
	"net/netip"
)

// Addr is an IPv4 address in host byte order.
type Addr uint32

// ParseAddr parses a dotted-decimal IPv4 address. Anything that is not a
// well-formed IPv4 address is an error; it never degrades to 0.0.0.0.
func ParseAddr(s string) (Addr, error) {
	ip, err := netip.ParseAddr(s)
	if err != nil {
		return 0, fmt.Errorf("invalid IPv4 address %q: %w", s, err)
	}
	ip = ip.Unmap()
	if !ip.Is4() {
		return 0, fmt.Errorf("invalid IPv4 address %q: not an IPv4 address", s)
	}
	return AddrFrom4(ip.As4()), nil
}

func AddrFrom4(b [4]byte) Addr {
	return Addr(binary.BigEndian.Uint32(b[:]))
}

func (a Addr) As4() (b [4]byte) {
	binary.BigEndian.PutUint32(b[:], uint32(a))
	return b
}

func (a Addr) Netip() netip.Addr {
	return netip.AddrFrom4(a.As4())
}

func (a Addr) String() string {
	return a.Netip().String()
}

// Range is an inclusive span of host addresses.
type Range struct {
	First Addr
	Last  Addr
}

func prefixMask(prefix int) uint32 {
	return ^uint32(0) << (32 - prefix)
}

// HostRange returns the hosts of the subnet base/prefix: everything after
// the network address up to and including the broadcast address. prefix
// must be in [1,32]. A /32 yields the single address itself.
func HostRange(base Addr, prefix int) Range {
	mask := prefixMask(prefix)
	network := uint32(base) & mask
	last := network | ^mask
	if network == last {
		return Range{First: Addr(network), Last: Addr(last)}
	}
	return Range{First: Addr(network + 1), Last: Addr(last)}
}

// Len is the number of addresses in r.
func (r Range) Len() uint64 {
	return uint64(r.Last) - uint64(r.First) + 1
}

// Each calls fn for every address from First to Last in order.
func (r Range) Each(fn func(Addr)) {
	for a := r.First; ; a++ {
		fn(a)
		if a == r.Last {
			return
		}
	}
}

func (r Range) String() string {
	return r.First.String() + "-" + r.Last.String()
}
