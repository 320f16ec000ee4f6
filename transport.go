package main

import (
	"errors"
	"fmt"
	"net"
	"runtime"
	"sort"
	"time"
)

// errWouldBlock is returned by Receive when no frame is queued. It is not a
// failure.
var errWouldBlock = errors.New("no frame available")

// linkTransport is a non-blocking raw link-layer endpoint bound to one
// interface.
type linkTransport interface {
	// Send writes one frame to the broadcast address.
	Send(frame []byte) error
	// Wait blocks until the endpoint is readable or timeout elapses and
	// reports the number of ready events; zero means the timeout expired.
	Wait(timeout time.Duration) (int, error)
	// Receive reads one frame into buf without blocking.
	Receive(buf []byte) (int, error)
	Close() error
}

// engineConfig tunes a transport at open time.
type engineConfig struct {
	ReadBuffer int
	Filter     bool
	Quiescence time.Duration
}

type openFunc func(ifi *net.Interface, cfg engineConfig) (linkTransport, error)

// SetupError reports which step of bringing up the scan failed.
type SetupError struct {
	Step string
	Err  error
}

func (e *SetupError) Error() string {
	return e.Step + ": " + e.Err.Error()
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

func setupErr(step string, err error) error {
	return &SetupError{Step: step, Err: err}
}

func openTransport(engine string, ifi *net.Interface, cfg engineConfig) (linkTransport, error) {
	if engine == "" {
		engine = defaultEngine
	}
	open, ok := engines[engine]
	if !ok {
		return nil, setupErr("select engine", fmt.Errorf("engine %q is not available on %s", engine, runtime.GOOS))
	}
	return open(ifi, cfg)
}

func engineNames() []string {
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
