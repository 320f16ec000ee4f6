package main

import (
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
	"github.com/projectdiscovery/gologger"
)

var mdnsGroup = &net.UDPAddr{IP: net.IPv4(224, 0, 0, 251), Port: 5353}

func mergeMDNS(hosts []Host, iface *net.Interface, timeout time.Duration) {
	applyNames(hosts, mdnsNameByIP(iface, timeout))
}

func applyNames(hosts []Host, nameByIP map[string]string) {
	if len(nameByIP) == 0 {
		return
	}

	for i := range hosts {
		if hosts[i].Hostname != "" {
			continue
		}
		if n, ok := nameByIP[hosts[i].IP.String()]; ok {
			hosts[i].Hostname = n
		}
	}
}

func mdnsNameByIP(iface *net.Interface, timeout time.Duration) map[string]string {
	out := map[string]string{}

	conn, err := net.ListenMulticastUDP("udp4", iface, mdnsGroup)
	if err != nil {
		gologger.Warning().Msgf("mDNS unavailable on %s: %s\n", iface.Name, err)
		return out
	}
	defer conn.Close()

	_ = conn.SetReadBuffer(1 << 20)

	// Service enumeration makes responders announce their A/AAAA records.
	q := new(dns.Msg)
	q.SetQuestion(dns.Fqdn("_services._dns-sd._udp.local"), dns.TypePTR)

	b, err := q.Pack()
	if err != nil {
		gologger.Debug().Msgf("Could not pack mDNS query: %s\n", err)
		return out
	}

	_, _ = conn.WriteToUDP(b, mdnsGroup)
	time.Sleep(50 * time.Millisecond)
	_, _ = conn.WriteToUDP(b, mdnsGroup)

	deadline := time.Now().Add(timeout)
	buf := make([]byte, 65536)

	for time.Now().Before(deadline) {
		_ = conn.SetReadDeadline(time.Now().Add(150 * time.Millisecond))
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			continue
		}

		m := new(dns.Msg)
		if err := m.Unpack(buf[:n]); err != nil {
			continue
		}
		namesFromMsg(m, out)
	}

	gologger.Verbose().Msgf("mDNS resolved %d names\n", len(out))
	return out
}

// namesFromMsg records the owner name of every address record in m.
func namesFromMsg(m *dns.Msg, out map[string]string) {
	for _, rr := range append(m.Answer, m.Extra...) {
		switch t := rr.(type) {
		case *dns.A:
			out[t.A.String()] = strings.TrimSuffix(t.Hdr.Name, ".")
		case *dns.AAAA:
			out[t.AAAA.String()] = strings.TrimSuffix(t.Hdr.Name, ".")
		}
	}
}
