package main

import (
	"net"
	"net/netip"
	"time"
)

type Host struct {
	IP       netip.Addr       `json:"ip"`
	MAC      net.HardwareAddr `json:"-"`
	MACStr   string           `json:"mac"`
	Vendor   string           `json:"vendor,omitempty"`
	Hostname string           `json:"hostname,omitempty"`
}

type Options struct {
	IfaceName string
	Source    string
	Prefix    int
	Engine    string

	Batch      int
	Pause      time.Duration
	RatePPS    int
	Quiescence time.Duration
	ReadBuffer int
	NoFilter   bool

	JSON        bool
	Vendor      bool
	MDNS        bool
	MDNSTimeout time.Duration

	ConfigFile string
	Verbose    bool
	Debug      bool
	Silent     bool
	NoColor    bool
}

type Scanner interface {
	Scan() ([]Host, error) // one active sweep
}
