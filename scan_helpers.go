package main

import "net"

// Endpoint is the local side of a sweep.
type Endpoint struct {
	IP  Addr
	MAC HardwareAddr
}

func newHost(ip Addr, mac HardwareAddr) Host {
	hw := make(net.HardwareAddr, len(mac))
	copy(hw, mac[:])
	return Host{
		IP:     ip.Netip(),
		MAC:    hw,
		MACStr: hw.String(),
	}
}
