package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/projectdiscovery/gologger"
	osutils "github.com/projectdiscovery/utils/os"
)

func checkPrivileges() {
	if os.Geteuid() == 0 {
		return
	}
	if osutils.IsOSX() {
		// BPF devices may be readable by the access_bpf group
		gologger.Warning().Msgf("Not running as root, packet capture may fail\n")
		return
	}
	gologger.Warning().Msgf("Not running as root, raw sockets need CAP_NET_RAW\n")
}

// formatHost renders one result line.
func formatHost(h Host, asJSON bool) (string, error) {
	if asJSON {
		b, err := json.Marshal(h)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "IP: %s, MAC: %s", h.IP, h.MACStr)
	if h.Vendor != "" {
		fmt.Fprintf(&sb, ", Vendor: %s", h.Vendor)
	}
	if h.Hostname != "" {
		fmt.Fprintf(&sb, ", Hostname: %s", h.Hostname)
	}
	return sb.String(), nil
}

func printHost(h Host, asJSON bool) {
	line, err := formatHost(h, asJSON)
	if err != nil {
		gologger.Error().Msgf("Could not format %s: %s\n", h.IP, err)
		return
	}
	gologger.Silent().Msg(line)
}

// getInterfaceByName looks the interface up. The IPv4 network is nil when
// the interface has none; the caller decides whether that matters.
func getInterfaceByName(name string) (*net.Interface, *net.IPNet, error) {
	if name == "" {
		return nil, nil, errors.New("empty interface name")
	}

	iface, err := net.InterfaceByName(name)
	if err != nil {
		return nil, nil, err
	}

	ipnet, err := firstIPv4Net(iface)
	if err != nil {
		gologger.Debug().Msgf("%s: %s\n", iface.Name, err)
	}

	return iface, ipnet, nil
}

func getDefaultInterface() (*net.Interface, *net.IPNet, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, nil, err
	}

	for i := range ifaces {
		iface := &ifaces[i]
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if len(iface.HardwareAddr) != 6 {
			continue
		}
		ipnet, err := firstIPv4Net(iface)
		if err == nil {
			gologger.Verbose().Msgf("Using interface %s\n", iface.Name)
			return iface, ipnet, nil
		}
	}
	return nil, nil, errors.New("no usable interface found")
}

func firstIPv4Net(iface *net.Interface) (*net.IPNet, error) {
	addrs, err := iface.Addrs()
	if err != nil {
		return nil, err
	}

	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok && ipnet.IP.To4() != nil {
			return ipnet, nil
		}
	}
	return nil, errors.New("no IPv4 address found on interface")
}
