// Package httputil carries the shared HTTP server plumbing: h2c support
// and request logging middleware.
package httputil

import (
	"net/http"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// H2CHandler wraps an http.Handler with h2c support so clients can use
// unencrypted HTTP/2 against the service.
func H2CHandler(handler http.Handler) http.Handler {
	return h2c.NewHandler(handler, &http2.Server{
		MaxConcurrentStreams: 250,
		MaxReadFrameSize:     1 << 20,
	})
}
