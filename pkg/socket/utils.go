// SPDX-License-Identifier: GPL-3.0-or-later

package socket

import (
	"net"
	"strconv"
	"strings"
)

func IsUnixSocket(address string) bool {
	return strings.HasPrefix(address, "/") || strings.HasPrefix(address, "unix://")
}

// HostPort joins host and port into a dialable TCP address.
func HostPort(host string, port int) string {
	if host == "" {
		host = "localhost"
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

func parseAddress(address string) (string, string) {
	switch {
	case IsUnixSocket(address):
		return "unix", strings.TrimPrefix(address, "unix://")
	default:
		return "tcp", strings.TrimPrefix(address, "tcp://")
	}
}
