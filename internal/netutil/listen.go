// Package netutil binds the TCP listener both cluster binaries serve on.
package netutil

import "net"

// Listen binds address on network, which is always "tcp" for this
// cluster's HTTP transport.
func Listen(network string, address string) (net.Listener, error) {
	return net.Listen(network, address)
}
