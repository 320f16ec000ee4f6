package main

import (
	"fmt"
	"net"
	"time"

	"github.com/projectdiscovery/gologger"
)

const defaultReadBuffer = 1 << 20

// Sweeper runs one ARP sweep of a subnet from a local interface.
type Sweeper struct {
	iface *net.Interface
	self  Endpoint
	rng   Range
	opts  Options

	open func(engine string, ifi *net.Interface, cfg engineConfig) (linkTransport, error)

	// OnReply, if set, sees every reply as it is decoded.
	OnReply func(Host)
}

var _ Scanner = (*Sweeper)(nil)

func NewScanner(opts Options) (*Sweeper, error) {
	var (
		iface *net.Interface
		ipnet *net.IPNet
		err   error
	)
	if opts.IfaceName != "" {
		iface, ipnet, err = getInterfaceByName(opts.IfaceName)
	} else {
		iface, ipnet, err = getDefaultInterface()
	}
	if err != nil {
		return nil, setupErr("query interface", err)
	}

	self, rng, err := resolveTarget(iface, ipnet, opts.Source, opts.Prefix)
	if err != nil {
		return nil, err
	}

	return &Sweeper{
		iface: iface,
		self:  self,
		rng:   rng,
		opts:  opts,
		open:  openTransport,
	}, nil
}

// resolveTarget works out the local endpoint and the address range. An
// empty source or a zero prefix falls back to the interface's first IPv4
// network.
func resolveTarget(iface *net.Interface, ipnet *net.IPNet, source string, prefix int) (Endpoint, Range, error) {
	var self Endpoint

	mac, err := hardwareAddrFrom(iface.HardwareAddr)
	if err != nil {
		return self, Range{}, setupErr("query interface", fmt.Errorf("%s: %w", iface.Name, err))
	}
	self.MAC = mac

	if source == "" || prefix == 0 {
		if ipnet == nil {
			return self, Range{}, fmt.Errorf("no IPv4 address on %s, source address and prefix length are required", iface.Name)
		}
		if source == "" {
			source = ipnet.IP.String()
		}
		if prefix == 0 {
			prefix, _ = ipnet.Mask.Size()
		}
	}
	if prefix < 1 || prefix > 32 {
		return self, Range{}, fmt.Errorf("invalid prefix length %d: must be between 1 and 32", prefix)
	}

	self.IP, err = ParseAddr(source)
	if err != nil {
		return self, Range{}, err
	}
	return self, HostRange(self.IP, prefix), nil
}

func (s *Sweeper) Scan() ([]Host, error) {
	t, err := s.open(s.opts.Engine, s.iface, engineConfig{
		ReadBuffer: s.opts.ReadBuffer,
		Filter:     !s.opts.NoFilter,
		Quiescence: s.quiescence(),
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := t.Close(); err != nil {
			gologger.Debug().Msgf("Could not close transport: %s\n", err)
		}
	}()

	gologger.Info().Msgf("Sweeping %s (%d addresses) on %s as %s (%s)\n", s.rng, s.rng.Len(), s.iface.Name, s.self.IP, s.self.MAC)
	start := time.Now()

	pacer := NewPacer(s.opts.Batch, s.opts.Pause, s.opts.RatePPS)
	sent, failed := transmit(t, s.rng, s.self, pacer)
	gologger.Verbose().Msgf("Sent %d requests (%d failed) in %s\n", sent, failed, time.Since(start))

	hosts := collect(t, s.quiescence(), s.OnReply)
	gologger.Info().Msgf("%d replies from %d requests (%d failed) in %s\n", len(hosts), sent, failed, time.Since(start).Round(time.Millisecond))

	return hosts, nil
}

func (s *Sweeper) quiescence() time.Duration {
	if s.opts.Quiescence <= 0 {
		return defaultQuiescence
	}
	return s.opts.Quiescence
}
