package main

import (
	"errors"
	"net"
	"os"
	"syscall"
	"time"

	"github.com/mdlayher/ethernet"
	"github.com/mdlayher/packet"
	"github.com/projectdiscovery/gologger"
	"golang.org/x/sys/unix"
)

// packetTransport runs the same socket through the Go runtime netpoller.
// Readiness is probed with MSG_PEEK under a read deadline so that waiting
// and reading stay separate steps.
type packetTransport struct {
	c       *packet.Conn
	rc      syscall.RawConn
	dst     net.Addr
	sendTTL time.Duration
}

func openPacket(ifi *net.Interface, cfg engineConfig) (linkTransport, error) {
	c, err := packet.Listen(ifi, packet.Raw, unix.ETH_P_ARP, nil)
	if err != nil {
		return nil, setupErr("create socket", err)
	}

	rc, err := c.SyscallConn()
	if err != nil {
		_ = c.Close()
		return nil, setupErr("register socket", err)
	}

	if cfg.ReadBuffer > 0 {
		var serr error
		cerr := rc.Control(func(fd uintptr) {
			serr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF, cfg.ReadBuffer)
		})
		if err := errors.Join(cerr, serr); err != nil {
			gologger.Warning().Msgf("Could not set receive buffer to %d bytes: %s\n", cfg.ReadBuffer, err)
		}
	}
	if cfg.Filter {
		raw, err := replyFilter()
		if err == nil {
			err = c.SetBPF(raw)
		}
		if err != nil {
			gologger.Warning().Msgf("Could not attach ARP reply filter: %s\n", err)
		}
	}

	return &packetTransport{
		c:       c,
		rc:      rc,
		dst:     &packet.Addr{HardwareAddr: ethernet.Broadcast},
		sendTTL: cfg.Quiescence,
	}, nil
}

func (t *packetTransport) Send(frame []byte) error {
	if err := t.c.SetWriteDeadline(time.Now().Add(t.sendTTL)); err != nil {
		return err
	}
	_, err := t.c.WriteTo(frame, t.dst)
	return err
}

func (t *packetTransport) Wait(timeout time.Duration) (int, error) {
	if err := t.c.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return 0, err
	}

	var peek [1]byte
	err := t.rc.Read(func(fd uintptr) bool {
		_, _, rerr := unix.Recvfrom(int(fd), peek[:], unix.MSG_PEEK|unix.MSG_DONTWAIT)
		return !errors.Is(rerr, unix.EAGAIN)
	})
	switch {
	case errors.Is(err, os.ErrDeadlineExceeded):
		return 0, nil
	case err != nil:
		return 0, err
	}
	return 1, nil
}

func (t *packetTransport) Receive(buf []byte) (int, error) {
	if err := t.c.SetReadDeadline(time.Time{}); err != nil {
		return 0, err
	}

	var (
		n    int
		rerr error
	)
	err := t.rc.Read(func(fd uintptr) bool {
		n, _, rerr = unix.Recvfrom(int(fd), buf, unix.MSG_DONTWAIT)
		return true
	})
	switch {
	case err != nil:
		return 0, err
	case errors.Is(rerr, unix.EAGAIN):
		return 0, errWouldBlock
	case rerr != nil:
		return 0, os.NewSyscallError("recvfrom", rerr)
	}
	return n, nil
}

func (t *packetTransport) Close() error {
	return t.c.Close()
}
