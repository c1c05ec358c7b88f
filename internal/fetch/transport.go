package fetch

import (
	"context"
	"net"
	"net/http"
	"time"

	utls "github.com/refraction-networking/utls"

	"github.com/trawlhq/trawl/internal/config"
)

// NewHTTPClient builds the direct-tier client: pooled transport, optional
// Chrome TLS fingerprint. No client-level timeout; deadlines come from the
// caller's context so per-site budgets can vary by phase.
func NewHTTPClient(cfg config.FetchConfig) *http.Client {
	transport := &http.Transport{
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
	}
	if cfg.ChromeTLS {
		transport.DialTLSContext = dialTLSChrome
	}
	return &http.Client{Transport: transport}
}

// dialTLSChrome establishes a TLS connection with a Chrome ClientHello, for
// sites that fingerprint Go's default TLS stack.
func dialTLSChrome(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{}
	rawConn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	host, _, _ := net.SplitHostPort(addr)
	tlsConn := utls.UClient(rawConn, &utls.Config{
		ServerName: host,
	}, utls.HelloChrome_Auto)

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		rawConn.Close() //nolint:errcheck
		return nil, err
	}
	return tlsConn, nil
}

// browserHeaders makes the request look like an ordinary Chrome page load.
func browserHeaders(req *http.Request, userAgent string) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
}
