package main

import (
	"errors"
	"net"
	"time"

	"github.com/google/gopacket/pcap"
	"github.com/projectdiscovery/gologger"
)

const defaultEngine = "pcap"

var engines = map[string]openFunc{
	"pcap": openPcap,
}

// pcapTransport reads through libpcap. BPF devices have no readiness API,
// so Wait reads the next frame with the capture timeout and parks it for
// Receive.
type pcapTransport struct {
	handle  *pcap.Handle
	pending []byte
}

func openPcap(ifi *net.Interface, cfg engineConfig) (linkTransport, error) {
	handle, err := pcap.OpenLive(ifi.Name, 65536, false, cfg.Quiescence)
	if err != nil {
		return nil, setupErr("open capture handle", err)
	}

	filter := "arp"
	if cfg.Filter {
		filter = "arp and arp[6:2] = 2"
	}
	if err := handle.SetBPFFilter(filter); err != nil {
		handle.Close()
		return nil, setupErr("set capture filter", err)
	}
	if cfg.ReadBuffer > 0 {
		gologger.Debug().Msgf("Receive buffer size is fixed by libpcap, ignoring %d\n", cfg.ReadBuffer)
	}

	return &pcapTransport{handle: handle}, nil
}

func (t *pcapTransport) Send(frame []byte) error {
	return t.handle.WritePacketData(frame)
}

// Wait ignores timeout; the capture timeout was fixed when the handle was
// opened.
func (t *pcapTransport) Wait(_ time.Duration) (int, error) {
	if t.pending != nil {
		return 1, nil
	}
	data, _, err := t.handle.ReadPacketData()
	switch {
	case errors.Is(err, pcap.NextErrorTimeoutExpired):
		return 0, nil
	case err != nil:
		return 0, err
	}
	t.pending = data
	return 1, nil
}

func (t *pcapTransport) Receive(buf []byte) (int, error) {
	if t.pending == nil {
		return 0, errWouldBlock
	}
	n := copy(buf, t.pending)
	t.pending = nil
	return n, nil
}

func (t *pcapTransport) Close() error {
	t.handle.Close()
	return nil
}
