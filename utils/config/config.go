package config

import (
	"net"
	"strings"
)

// ParseAddress splits "host:port". A bare port ("8080") yields an empty host,
// and IPv6 hosts keep their brackets so they can be joined back with ":".
func ParseAddress(raw string) (hostname, port string) {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, ":") {
		if strings.Trim(raw, "0123456789") == "" {
			return "", raw
		}
		return raw, ""
	}

	host, port, err := net.SplitHostPort(raw)
	if err != nil {
		i := strings.LastIndex(raw, ":")
		return raw[:i], raw[i+1:]
	}
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	return host, port
}
