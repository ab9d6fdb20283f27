package fetch

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
)

var (
	// ErrBlockedTarget is returned for URLs that point at loopback, private,
	// link-local or otherwise non-public addresses.
	ErrBlockedTarget = errors.New("target address is not public")

	// ErrUnsupportedURL is returned for URLs without an http(s) scheme or host.
	ErrUnsupportedURL = errors.New("only http and https urls with a host are supported")
)

// 100.64.0.0/10 is carrier-grade NAT space, not covered by netip's IsPrivate.
var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

func isPublic(addr netip.Addr) bool {
	addr = addr.Unmap()
	return addr.IsGlobalUnicast() &&
		!addr.IsPrivate() &&
		!sharedAddressSpace.Contains(addr)
}

// CheckTarget rejects URLs that are not http(s) or whose host is localhost or
// a non-public IP literal. Host names are not resolved here; a Fetcher built
// with PublicOnly checks the resolved address again when it connects.
func CheckTarget(rawURL string) error {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return ErrUnsupportedURL
	}

	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return fmt.Errorf("%w: %s", ErrBlockedTarget, host)
	}
	if addr, err := netip.ParseAddr(host); err == nil && !isPublic(addr) {
		return fmt.Errorf("%w: %s", ErrBlockedTarget, addr)
	}
	return nil
}

// publicOnlyControl runs after name resolution, just before connecting, so it
// also covers DNS names and redirects that lead to internal hosts.
func publicOnlyControl(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return err
	}
	if !isPublic(addr) {
		return fmt.Errorf("%w: %s", ErrBlockedTarget, addr)
	}
	return nil
}
