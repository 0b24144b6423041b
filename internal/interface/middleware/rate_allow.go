package middleware

import (
	"fmt"
	"net"

	"github.com/gin-gonic/gin"
)

// ExemptCIDRs lets clients inside any of cidrs skip the rate limiter.
// The client IP is c.ClientIP(), so a forwarded address only counts when it
// arrived through a proxy the engine trusts (see TrustProxies).
// It returns a nil AllowFunc when cidrs is empty.
func ExemptCIDRs(cidrs []string) (AllowFunc, error) {
	if len(cidrs) == 0 {
		return nil, nil
	}
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, s := range cidrs {
		_, n, err := net.ParseCIDR(s)
		if err != nil {
			return nil, fmt.Errorf("rate limit exemption %q: %w", s, err)
		}
		nets = append(nets, n)
	}
	return func(c *gin.Context) bool {
		ip := net.ParseIP(c.ClientIP())
		if ip == nil {
			return false
		}
		for _, n := range nets {
			if n.Contains(ip) {
				return true
			}
		}
		return false
	}, nil
}
