// Package instance keeps a second harvest process from running against the
// same machine at the same time by holding a loopback TCP port.
package instance

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"syscall"
)

// DefaultPort is the loopback port held while harvest runs.
const DefaultPort = 47615

// ErrAlreadyRunning is returned when another process holds the port.
var ErrAlreadyRunning = errors.New("another harvest instance is running")

var listen = net.Listen

// Lock is a held instance port. The zero Lock (port 0) holds nothing.
type Lock struct {
	ln net.Listener
}

// Acquire binds 127.0.0.1:port. Port 0 disables the check and returns a
// Lock that holds nothing. Only an address already in use is reported as
// ErrAlreadyRunning.
func Acquire(port int) (*Lock, error) {
	if port == 0 {
		return &Lock{}, nil
	}
	if port < 0 || port > 65535 {
		return nil, fmt.Errorf("invalid lock port %d", port)
	}
	ln, err := listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	if errors.Is(err, syscall.EADDRINUSE) {
		return nil, fmt.Errorf("%w: port %d", ErrAlreadyRunning, port)
	}
	if err != nil {
		return nil, fmt.Errorf("acquiring instance lock on port %d: %w", port, err)
	}
	return &Lock{ln: ln}, nil
}

// Held reports whether the lock holds a port.
func (l *Lock) Held() bool {
	return l != nil && l.ln != nil
}

// Close releases the port. Safe to call more than once.
func (l *Lock) Close() error {
	if l == nil || l.ln == nil {
		return nil
	}
	err := l.ln.Close()
	l.ln = nil
	return err
}
