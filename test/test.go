// Package test holds helpers shared by the package tests.
package test

import (
	"fmt"
	"net"
)

const DEFAULT_LISTENER_ADDRESS = "127.0.0.1"

func ListenerString(address string, port int) string {
	return fmt.Sprintf("%s:%d", address, port)
}

// GetFreePorts asks the kernel for count ports that are free at the time of
// the call.
func GetFreePorts(count int) ([]int, error) {
	var ports []int
	var listeners []net.Listener
	defer func() {
		for _, l := range listeners {
			_ = l.Close()
		}
	}()

	for i := 0; i < count; i++ {
		l, err := net.Listen("tcp", ListenerString(DEFAULT_LISTENER_ADDRESS, 0))
		if err != nil {
			return nil, err
		}
		listeners = append(listeners, l)
		ports = append(ports, l.Addr().(*net.TCPAddr).Port)
	}
	return ports, nil
}
