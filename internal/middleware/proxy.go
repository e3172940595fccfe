package middleware

import (
	"fmt"
	"net"

	"github.com/labstack/echo/v4"
)

// DefaultTrustedCIDRs are the proxy ranges trusted when none are configured:
// loopback, the Docker bridge ranges, common LAN, and IPv6 private.
var DefaultTrustedCIDRs = []string{
	"127.0.0.0/8",
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"fd00::/8",
}

// TrustedProxies configures Echo so c.RealIP() reads X-Forwarded-For only
// when the direct peer is inside one of trustedCIDRs. Rate limiting keys on
// this IP, so trusting every peer would let clients pick their own bucket.
func TrustedProxies(e *echo.Echo, trustedCIDRs []string) error {
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, cidr := range trustedCIDRs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			return fmt.Errorf("parsing trusted proxy %q: %w", cidr, err)
		}
		opts = append(opts, echo.TrustIPRange(network))
	}

	e.IPExtractor = echo.ExtractIPFromXFFHeader(opts...)
	return nil
}
