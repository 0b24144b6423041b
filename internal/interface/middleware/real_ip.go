package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// TrustProxies sets how the engine resolves c.ClientIP().
// X-Forwarded-For and X-Real-IP are honoured only when the direct peer is one of
// proxies (IPs or CIDRs); with no proxies the peer address is the client.
// cloudflare reads CF-Connecting-IP from any peer, so it is only safe when the
// origin can be reached through Cloudflare alone.
func TrustProxies(engine *gin.Engine, proxies []string, cloudflare bool) error {
	if proxies == nil {
		proxies = []string{}
	}
	if err := engine.SetTrustedProxies(proxies); err != nil {
		return fmt.Errorf("trusted proxies: %w", err)
	}
	if cloudflare {
		engine.TrustedPlatform = gin.PlatformCloudflare
	}
	return nil
}

func clientIP(c *gin.Context) string {
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}
