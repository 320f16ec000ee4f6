package main

import (
	"encoding/binary"
	"fmt"
	"net"

	"github.com/mdlayher/arp"
	"github.com/mdlayher/ethernet"
)

// HardwareAddr is an Ethernet MAC address.
type HardwareAddr [6]byte

func hardwareAddrFrom(b net.HardwareAddr) (HardwareAddr, error) {
	var h HardwareAddr
	if len(b) != len(h) {
		return h, fmt.Errorf("unexpected hardware address length %d", len(b))
	}
	copy(h[:], b)
	return h, nil
}

func (h HardwareAddr) String() string {
	return net.HardwareAddr(h[:]).String()
}

// On-wire layout of an Ethernet II frame carrying an IPv4-over-Ethernet
// ARP packet.
const (
	offDst       = 0
	offSrc       = 6
	offEtherType = 12
	offHType     = 14
	offPType     = 16
	offHLen      = 18
	offPLen      = 19
	offOp        = 20
	offSHA       = 22
	offSPA       = 28
	offTHA       = 32
	offTPA       = 38

	frameLen = 42
)

// The header must end exactly at frameLen.
var (
	_ [frameLen - (offTPA + net.IPv4len)]struct{}
	_ [(offTPA + net.IPv4len) - frameLen]struct{}
)

const (
	htypeEthernet = 1
	etherTypeARP  = uint16(ethernet.EtherTypeARP)
	etherTypeIPv4 = uint16(ethernet.EtherTypeIPv4)
	opRequest     = arp.OperationRequest
	opReply       = arp.OperationReply
)

type requestFrame [frameLen]byte

// encodeRequest builds a broadcast "who-has target" request sent from
// (srcIP, srcMAC).
func encodeRequest(srcIP Addr, srcMAC HardwareAddr, target Addr) requestFrame {
	var f requestFrame

	copy(f[offDst:offSrc], ethernet.Broadcast)
	copy(f[offSrc:offEtherType], srcMAC[:])
	binary.BigEndian.PutUint16(f[offEtherType:], etherTypeARP)

	binary.BigEndian.PutUint16(f[offHType:], htypeEthernet)
	binary.BigEndian.PutUint16(f[offPType:], etherTypeIPv4)
	f[offHLen] = byte(len(srcMAC))
	f[offPLen] = net.IPv4len
	binary.BigEndian.PutUint16(f[offOp:], uint16(opRequest))

	spa, tpa := srcIP.As4(), target.As4()
	copy(f[offSHA:offSPA], srcMAC[:])
	copy(f[offSPA:offTHA], spa[:])
	// THA stays zero.
	copy(f[offTPA:], tpa[:])

	return f
}

// decodeReply extracts the sender of an ARP reply. Frames that are too
// short or carry any other opcode are rejected; nothing else is checked.
func decodeReply(b []byte) (Addr, HardwareAddr, bool) {
	var mac HardwareAddr
	if len(b) < frameLen {
		return 0, mac, false
	}
	if opcode(b) != opReply {
		return 0, mac, false
	}
	copy(mac[:], b[offSHA:offSPA])
	return AddrFrom4([4]byte(b[offSPA:offTHA])), mac, true
}

func opcode(b []byte) arp.Operation {
	return arp.Operation(binary.BigEndian.Uint16(b[offOp:]))
}
