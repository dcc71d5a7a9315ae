package platform

import (
	"errors"
	"fmt"
	"net"
	"syscall"
)

// ErrAlreadyRunning indicates another authority already holds the address.
var ErrAlreadyRunning = errors.New("instance already running")

// Listen binds the API address. The bound listener doubles as the
// single-instance lock: a second authority on the same host gets
// ErrAlreadyRunning.
func Listen(address string) (net.Listener, error) {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return nil, fmt.Errorf("listen %s: %w", address, ErrAlreadyRunning)
		}
		return nil, fmt.Errorf("listen %s: %w", address, err)
	}
	return listener, nil
}
