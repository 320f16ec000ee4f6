package main

import "github.com/projectdiscovery/gologger"

// transmit sends one request per address of r. A failed send is logged
// and the sweep moves on, so sent always equals r.Len().
func transmit(t linkTransport, r Range, src Endpoint, p *Pacer) (sent, failed uint64) {
	r.Each(func(target Addr) {
		frame := encodeRequest(src.IP, src.MAC, target)

		p.Wait()
		if err := t.Send(frame[:]); err != nil {
			failed++
			gologger.Error().Msgf("Could not send ARP request for %s: %s\n", target, err)
		}
		sent++
		p.Sent()
	})
	return sent, failed
}
