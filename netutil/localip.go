// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package netutil finds ephemeral, available TCP ports for tests that need
// to stand up a real listener without hardcoding a port number. It has no
// dependency on scheduler state.
package netutil

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/luxfi/balance-scheduler/log"
)

// defaultMaxRetries bounds GetAvailablePort's retry loop.
const defaultMaxRetries = 1000

// LocalHostForTesting returns the loopback address tests should bind to.
func LocalHostForTesting() string {
	return "127.0.0.1"
}

// GetAvailablePort returns an ephemeral, available port on host, forcing the
// port briefly into TIME_WAIT so the OS won't hand it back out immediately.
// Callers that bind to it should set SO_REUSEADDR.
func GetAvailablePort(host string) (uint16, error) {
	return GetAvailablePortWithRetries(host, defaultMaxRetries)
}

// GetAvailablePortWithRetries attempts to find an available port on host,
// retrying with capped exponential backoff up to maxRetries times.
func GetAvailablePortWithRetries(host string, maxRetries int) (uint16, error) {
	if host == "" {
		return 0, errors.New("netutil: host cannot be empty")
	}
	if maxRetries <= 0 {
		return 0, errors.New("netutil: no retries allowed for finding available port")
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		port, err := ephemeralPort(host)
		if err == nil {
			return port, nil
		}
		lastErr = err
		if attempt < maxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Millisecond
			if backoff > 100*time.Millisecond {
				backoff = 100 * time.Millisecond
			}
			time.Sleep(backoff)
		}
	}

	log.Error("failed to find available port after maximum retries", "host", host, "attempts", maxRetries, "err", lastErr)
	return 0, fmt.Errorf("netutil: no available port on %s after %d attempts: %w", host, maxRetries, lastErr)
}

func ephemeralPort(host string) (uint16, error) {
	listener, err := net.Listen("tcp", net.JoinHostPort(host, "0"))
	if err != nil {
		return 0, err
	}
	defer listener.Close()

	addr, ok := listener.Addr().(*net.TCPAddr)
	if !ok {
		return 0, fmt.Errorf("netutil: unexpected listener address type %T", listener.Addr())
	}

	conn, err := net.Dial("tcp", listener.Addr().String())
	if err != nil {
		log.Error("failed to connect to probed port", "host", host, "port", addr.Port, "err", err)
		return 0, err
	}
	defer conn.Close()

	accepted, err := listener.Accept()
	if err != nil {
		log.Error("failed to accept probe connection", "host", host, "port", addr.Port, "err", err)
		return 0, err
	}
	defer accepted.Close()

	return uint16(addr.Port), nil
}
