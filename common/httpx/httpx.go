package httpx

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// Options bounds outbound calls to remote collaborators (completion,
// embedding, vector index). A timeout is treated the same as the service
// being unavailable: callers fall back, they do not propagate.
type Options struct {
	Timeout      time.Duration
	MaxIdleConns int
	IdleTimeout  time.Duration
}

// DefaultOptions is tuned for interactive query resolution.
func DefaultOptions() Options {
	return Options{
		Timeout:      30 * time.Second,
		MaxIdleConns: 100,
		IdleTimeout:  30 * time.Second,
	}
}

// NewClient builds an *http.Client with sane transport limits. Remote
// provider SDKs accept it via their client options.
func NewClient(opt Options) *http.Client {
	if opt.Timeout <= 0 {
		opt.Timeout = DefaultOptions().Timeout
	}
	if opt.MaxIdleConns <= 0 {
		opt.MaxIdleConns = 100
	}
	if opt.IdleTimeout <= 0 {
		opt.IdleTimeout = 30 * time.Second
	}
	transport := &http.Transport{
		DialContext:     (&net.Dialer{Timeout: opt.Timeout}).DialContext,
		TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
		MaxIdleConns:    opt.MaxIdleConns,
		IdleConnTimeout: opt.IdleTimeout,
	}
	return &http.Client{Timeout: opt.Timeout, Transport: transport}
}
