package main

import (
	"bytes"
	"encoding/binary"
	"net"
	"net/netip"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/mdlayher/arp"
	"github.com/mdlayher/ethernet"
)

var (
	testMAC  = HardwareAddr{0x02, 0x42, 0xac, 0x11, 0x00, 0x02}
	peerMAC  = HardwareAddr{0x3c, 0x22, 0xfb, 0x01, 0x02, 0x03}
	testSelf = Endpoint{IP: mustAddr("192.168.1.10"), MAC: testMAC}
)

// testReply builds the reply sender would give to testSelf.
func testReply(sender Addr, mac HardwareAddr) []byte {
	f := encodeRequest(sender, mac, testSelf.IP)
	binary.BigEndian.PutUint16(f[offOp:], uint16(opReply))
	copy(f[offTHA:offTPA], testSelf.MAC[:])
	return f[:]
}

func TestEncodeRequestDecodesWithGopacket(t *testing.T) {
	target := mustAddr("192.168.1.77")
	f := encodeRequest(testSelf.IP, testSelf.MAC, target)

	pkt := gopacket.NewPacket(f[:], layers.LayerTypeEthernet, gopacket.Default)
	if errLayer := pkt.ErrorLayer(); errLayer != nil {
		t.Fatalf("decode: %v", errLayer.Error())
	}

	eth, ok := pkt.Layer(layers.LayerTypeEthernet).(*layers.Ethernet)
	if !ok {
		t.Fatal("no ethernet layer")
	}
	if eth.DstMAC.String() != "ff:ff:ff:ff:ff:ff" {
		t.Errorf("DstMAC = %s", eth.DstMAC)
	}
	if !bytes.Equal(eth.SrcMAC, testMAC[:]) {
		t.Errorf("SrcMAC = %s", eth.SrcMAC)
	}
	if eth.EthernetType != layers.EthernetTypeARP {
		t.Errorf("EthernetType = %v", eth.EthernetType)
	}

	a, ok := pkt.Layer(layers.LayerTypeARP).(*layers.ARP)
	if !ok {
		t.Fatal("no ARP layer")
	}
	if a.AddrType != layers.LinkTypeEthernet || a.Protocol != layers.EthernetTypeIPv4 {
		t.Errorf("AddrType/Protocol = %v/%v", a.AddrType, a.Protocol)
	}
	if a.HwAddressSize != 6 || a.ProtAddressSize != 4 {
		t.Errorf("sizes = %d/%d", a.HwAddressSize, a.ProtAddressSize)
	}
	if a.Operation != layers.ARPRequest {
		t.Errorf("Operation = %d", a.Operation)
	}
	if !bytes.Equal(a.SourceHwAddress, testMAC[:]) {
		t.Errorf("SourceHwAddress = %x", a.SourceHwAddress)
	}
	if net.IP(a.SourceProtAddress).String() != "192.168.1.10" {
		t.Errorf("SourceProtAddress = %s", net.IP(a.SourceProtAddress))
	}
	if !bytes.Equal(a.DstHwAddress, make([]byte, 6)) {
		t.Errorf("DstHwAddress = %x", a.DstHwAddress)
	}
	if net.IP(a.DstProtAddress).String() != "192.168.1.77" {
		t.Errorf("DstProtAddress = %s", net.IP(a.DstProtAddress))
	}
}

func TestEncodeRequestDecodesWithMdlayher(t *testing.T) {
	f := encodeRequest(testSelf.IP, testSelf.MAC, mustAddr("10.0.0.1"))

	var frame ethernet.Frame
	if err := frame.UnmarshalBinary(f[:]); err != nil {
		t.Fatalf("ethernet: %v", err)
	}
	if !bytes.Equal(frame.Destination, ethernet.Broadcast) {
		t.Errorf("Destination = %s", frame.Destination)
	}
	if frame.EtherType != ethernet.EtherTypeARP {
		t.Errorf("EtherType = %v", frame.EtherType)
	}

	var p arp.Packet
	if err := p.UnmarshalBinary(frame.Payload); err != nil {
		t.Fatalf("arp: %v", err)
	}
	if p.Operation != arp.OperationRequest {
		t.Errorf("Operation = %v", p.Operation)
	}
	if p.SenderIP != netip.MustParseAddr("192.168.1.10") {
		t.Errorf("SenderIP = %s", p.SenderIP)
	}
	if p.TargetIP != netip.MustParseAddr("10.0.0.1") {
		t.Errorf("TargetIP = %s", p.TargetIP)
	}
	if p.SenderHardwareAddr.String() != testMAC.String() {
		t.Errorf("SenderHardwareAddr = %s", p.SenderHardwareAddr)
	}
}

func TestEncodeRequestIsDeterministic(t *testing.T) {
	a := encodeRequest(testSelf.IP, testSelf.MAC, mustAddr("192.168.1.2"))
	b := encodeRequest(testSelf.IP, testSelf.MAC, mustAddr("192.168.1.2"))
	if a != b {
		t.Error("same inputs produced different frames")
	}
	if len(a) != 42 {
		t.Errorf("frame is %d bytes, want 42", len(a))
	}
}

func TestDecodeReplyRoundTrip(t *testing.T) {
	for _, s := range []string{"192.168.1.1", "10.255.0.7", "0.0.0.1"} {
		sender := mustAddr(s)
		ip, mac, ok := decodeReply(testReply(sender, peerMAC))
		if !ok {
			t.Fatalf("%s: reply rejected", s)
		}
		if ip != sender || mac != peerMAC {
			t.Errorf("%s: decoded (%s, %s), want (%s, %s)", s, ip, mac, sender, peerMAC)
		}
	}
}

func TestDecodeReplyFromGopacket(t *testing.T) {
	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr(peerMAC[:]),
		DstMAC:       net.HardwareAddr(testMAC[:]),
		EthernetType: layers.EthernetTypeARP,
	}
	reply := &layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         layers.ARPReply,
		SourceHwAddress:   peerMAC[:],
		SourceProtAddress: []byte{192, 168, 1, 1},
		DstHwAddress:      testMAC[:],
		DstProtAddress:    []byte{192, 168, 1, 10},
	}

	buf := gopacket.NewSerializeBuffer()
	if err := gopacket.SerializeLayers(buf, gopacket.SerializeOptions{FixLengths: true}, eth, reply); err != nil {
		t.Fatalf("serialize: %v", err)
	}

	// padded to the Ethernet minimum, which decoding must tolerate
	ip, mac, ok := decodeReply(buf.Bytes())
	if !ok {
		t.Fatalf("reply of %d bytes rejected", len(buf.Bytes()))
	}
	if ip.String() != "192.168.1.1" || mac != peerMAC {
		t.Errorf("decoded (%s, %s)", ip, mac)
	}
}

func TestDecodeReplyRejects(t *testing.T) {
	good := testReply(mustAddr("192.168.1.1"), peerMAC)

	withOp := func(op uint16) []byte {
		b := append([]byte(nil), good...)
		binary.BigEndian.PutUint16(b[offOp:], op)
		return b
	}

	tests := []struct {
		name  string
		frame []byte
	}{
		{name: "empty", frame: nil},
		{name: "ethernet header only", frame: good[:offHType]},
		{name: "one byte short", frame: good[:frameLen-1]},
		{name: "request opcode", frame: withOp(uint16(opRequest))},
		{name: "zero opcode", frame: withOp(0)},
		{name: "rarp reply opcode", frame: withOp(4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if ip, mac, ok := decodeReply(tt.frame); ok {
				t.Errorf("decoded (%s, %s), want no result", ip, mac)
			}
		})
	}
}

func TestDecodeReplyTrustsOffsets(t *testing.T) {
	b := testReply(mustAddr("192.168.1.5"), peerMAC)
	// other header fields are not checked once the opcode matches
	binary.BigEndian.PutUint16(b[offEtherType:], 0x0800)
	b[offPLen] = 16

	ip, _, ok := decodeReply(b)
	if !ok || ip != mustAddr("192.168.1.5") {
		t.Errorf("decodeReply = (%s, %v)", ip, ok)
	}
}

func TestHardwareAddrFrom(t *testing.T) {
	if _, err := hardwareAddrFrom(net.HardwareAddr{1, 2, 3}); err == nil {
		t.Error("short address accepted")
	}
	h, err := hardwareAddrFrom(net.HardwareAddr(peerMAC[:]))
	if err != nil {
		t.Fatal(err)
	}
	if h.String() != "3c:22:fb:01:02:03" {
		t.Errorf("String() = %s", h)
	}
}

func TestOpcode(t *testing.T) {
	req := encodeRequest(testSelf.IP, testSelf.MAC, mustAddr("192.168.1.1"))
	if op := opcode(req[:]); op != arp.OperationRequest {
		t.Errorf("request opcode = %v", op)
	}
	if op := opcode(testReply(mustAddr("192.168.1.1"), peerMAC)); op != arp.OperationReply {
		t.Errorf("reply opcode = %v", op)
	}
}
