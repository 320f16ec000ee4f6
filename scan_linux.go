package main

import (
	"encoding/binary"
	"errors"
	"net"
	"os"
	"time"

	"github.com/josharian/native"
	"github.com/mdlayher/ethernet"
	"github.com/projectdiscovery/gologger"
	"golang.org/x/sys/unix"
)

const defaultEngine = "epoll"

var engines = map[string]openFunc{
	"epoll":   openEpoll,
	"netpoll": openPacket,
}

// maxEvents bounds the events returned by one epoll_wait.
const maxEvents = 1024

// epollTransport drives an AF_PACKET socket with its own edge-triggered
// epoll instance instead of the runtime netpoller.
type epollTransport struct {
	fd     int
	epfd   int
	dst    *unix.SockaddrLinklayer
	events []unix.EpollEvent
}

func openEpoll(ifi *net.Interface, cfg engineConfig) (linkTransport, error) {
	proto := htons(unix.ETH_P_ARP)

	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW|unix.SOCK_CLOEXEC, int(proto))
	if err != nil {
		return nil, setupErr("create socket", os.NewSyscallError("socket", err))
	}
	t := &epollTransport{fd: fd, epfd: -1}

	if err := unix.SetNonblock(fd, true); err != nil {
		_ = t.Close()
		return nil, setupErr("set non-blocking", err)
	}

	if err := unix.Bind(fd, &unix.SockaddrLinklayer{Protocol: proto, Ifindex: ifi.Index}); err != nil {
		_ = t.Close()
		return nil, setupErr("bind interface", os.NewSyscallError("bind", err))
	}

	tuneSocket(fd, cfg)

	if err := t.poll(); err != nil {
		_ = t.Close()
		return nil, err
	}

	t.dst = &unix.SockaddrLinklayer{
		Protocol: proto,
		Ifindex:  ifi.Index,
		Hatype:   unix.ARPHRD_ETHER,
		Pkttype:  unix.PACKET_BROADCAST,
		Halen:    uint8(len(ethernet.Broadcast)),
	}
	copy(t.dst.Addr[:], ethernet.Broadcast)

	return t, nil
}

// poll creates the epoll instance and registers the socket edge-triggered.
func (t *epollTransport) poll() error {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return setupErr("create epoll", os.NewSyscallError("epoll_create1", err))
	}
	t.epfd = epfd

	ev := unix.EpollEvent{Events: unix.EPOLLIN | unix.EPOLLET, Fd: int32(t.fd)}
	if err := unix.EpollCtl(t.epfd, unix.EPOLL_CTL_ADD, t.fd, &ev); err != nil {
		return setupErr("register socket", os.NewSyscallError("epoll_ctl", err))
	}
	t.events = make([]unix.EpollEvent, maxEvents)
	return nil
}

func (t *epollTransport) Send(frame []byte) error {
	return unix.Sendto(t.fd, frame, 0, t.dst)
}

func (t *epollTransport) Wait(timeout time.Duration) (int, error) {
	msec := waitMillis(timeout)
	for {
		n, err := unix.EpollWait(t.epfd, t.events, msec)
		if errors.Is(err, unix.EINTR) {
			// runtime preemption signals interrupt the wait routinely
			continue
		}
		if err != nil {
			return 0, os.NewSyscallError("epoll_wait", err)
		}
		return n, nil
	}
}

// waitMillis rounds timeout up to whole milliseconds so a positive window
// never turns into a non-blocking poll.
func waitMillis(timeout time.Duration) int {
	if timeout <= 0 {
		return 0
	}
	return int((timeout + time.Millisecond - 1) / time.Millisecond)
}

func (t *epollTransport) Receive(buf []byte) (int, error) {
	for {
		n, _, err := unix.Recvfrom(t.fd, buf, 0)
		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EAGAIN):
			return 0, errWouldBlock
		case err != nil:
			return 0, os.NewSyscallError("recvfrom", err)
		}
		return n, nil
	}
}

func (t *epollTransport) Close() error {
	var err error
	if t.epfd >= 0 {
		err = unix.Close(t.epfd)
		t.epfd = -1
	}
	if t.fd >= 0 {
		if cerr := unix.Close(t.fd); err == nil {
			err = cerr
		}
		t.fd = -1
	}
	return err
}

// tuneSocket applies the optional socket settings. Failures only cost
// performance, so they are logged and ignored.
func tuneSocket(fd int, cfg engineConfig) {
	if cfg.ReadBuffer > 0 {
		if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RCVBUF, cfg.ReadBuffer); err != nil {
			gologger.Warning().Msgf("Could not set receive buffer to %d bytes: %s\n", cfg.ReadBuffer, err)
		}
	}
	if cfg.Filter {
		if err := attachReplyFilter(fd); err != nil {
			gologger.Warning().Msgf("Could not attach ARP reply filter: %s\n", err)
		}
	}
}

func attachReplyFilter(fd int) error {
	raw, err := replyFilter()
	if err != nil {
		return err
	}
	prog := make([]unix.SockFilter, len(raw))
	for i, ins := range raw {
		prog[i] = unix.SockFilter{Code: ins.Op, Jt: ins.Jt, Jf: ins.Jf, K: ins.K}
	}
	return unix.SetsockoptSockFprog(fd, unix.SOL_SOCKET, unix.SO_ATTACH_FILTER, &unix.SockFprog{
		Len:    uint16(len(prog)),
		Filter: &prog[0],
	})
}

// htons converts v to network byte order as the kernel expects for the
// AF_PACKET protocol number.
func htons(v uint16) uint16 {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return native.Endian.Uint16(b[:])
}
