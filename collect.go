package main

import (
	"errors"
	"time"

	"github.com/projectdiscovery/gologger"
)

const defaultQuiescence = 100 * time.Millisecond

// maxReceiveErrors bounds consecutive failed reads within one drain.
const maxReceiveErrors = 8

// collect gathers replies until one quiescence window passes without the
// transport becoming readable. The number of hosts that will answer is
// unknown, so silence is the only stop signal; a stall longer than the
// window ends the scan early.
//
// Hosts are returned, and passed to onReply, in arrival order. Duplicates
// are kept.
func collect(t linkTransport, quiescence time.Duration, onReply func(Host)) []Host {
	var hosts []Host
	for {
		n, err := t.Wait(quiescence)
		if err != nil {
			gologger.Error().Msgf("Readiness wait failed, stopping collection: %s\n", err)
			return hosts
		}
		if n == 0 {
			return hosts
		}
		hosts = drain(t, hosts, onReply)
	}
}

// drain reads until the transport has nothing queued. With edge-triggered
// readiness anything left behind would not be reported again, so a failed
// read is skipped unless failures keep repeating.
func drain(t linkTransport, hosts []Host, onReply func(Host)) []Host {
	errs := 0
	for {
		var buf [frameLen]byte
		n, err := t.Receive(buf[:])
		if errors.Is(err, errWouldBlock) {
			return hosts
		}
		if err != nil {
			errs++
			gologger.Debug().Msgf("Receive failed: %s\n", err)
			if errs >= maxReceiveErrors {
				gologger.Warning().Msgf("Giving up on queued replies after %d failed reads: %s\n", errs, err)
				return hosts
			}
			continue
		}
		errs = 0

		ip, mac, ok := decodeReply(buf[:n])
		if !ok {
			continue
		}
		h := newHost(ip, mac)
		hosts = append(hosts, h)
		if onReply != nil {
			onReply(h)
		}
	}
}
