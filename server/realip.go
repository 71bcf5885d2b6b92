package server

import (
	"errors"
	"net"
	"net/http"
	"strings"
)

var privateCidrs []*net.IPNet

func init() {
	cidrBlocks := []string{
		"127.0.0.1/8",    // localhost
		"10.0.0.0/8",     // Class A private network local communication (RFC 1918)
		"172.16.0.0/12",  // Private network - local communication (RFC 1918)
		"192.168.0.0/16", // Class B private network local communication (RFC 1918)
		"169.254.0.0/16", // link local address
		"100.64.0.0/10",  // Carrier grade NAT (RFC 6598)
		"::1/128",        // localhost IPv6
		"fc00::/7",       // unique local address IPv6
		"fe80::/10",      // link local address IPv6
	}

	privateCidrs = make([]*net.IPNet, len(cidrBlocks))
	for i, block := range cidrBlocks {
		_, cidr, _ := net.ParseCIDR(block)
		privateCidrs[i] = cidr
	}
}

// IsPrivateIP checks if the address is under private CIDR blocks.
//
// https://en.wikipedia.org/wiki/Private_network
//
// https://en.wikipedia.org/wiki/Link-local_address
func IsPrivateIP(address string) (bool, error) {
	ipAddress := net.ParseIP(address)
	if ipAddress == nil {
		return false, errors.New("address is not valid")
	}
	for i := range privateCidrs {
		if privateCidrs[i].Contains(ipAddress) {
			return true, nil
		}
	}
	return false, nil
}

// RealIP returns client's real public IP address from http request headers.
func RealIP(r *http.Request) string {
	xRealIP := r.Header.Get("X-Real-Ip")
	xForwardedFor := r.Header.Get("X-Forwarded-For")

	if xRealIP == "" && xForwardedFor == "" {
		var remoteIP string
		if strings.ContainsRune(r.RemoteAddr, ':') {
			remoteIP, _, _ = net.SplitHostPort(r.RemoteAddr)
		} else {
			remoteIP = r.RemoteAddr
		}
		return remoteIP
	}

	// first global address in X-Forwarded-For
	for _, address := range strings.Split(xForwardedFor, ",") {
		address = strings.TrimSpace(address)
		if isPrivate, err := IsPrivateIP(address); !isPrivate && err == nil {
			return address
		}
	}
	return xRealIP
}
