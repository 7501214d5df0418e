// Package httpserver builds the process's HTTP server.
package httpserver

import (
	"net/http"
	"time"
)

// Timeouts sized for this service's traffic: every endpoint is a small JSON
// exchange (consent transitions, access checks, token operations), so
// nothing should hold a connection for long. The write timeout leaves room
// for bulk consent-status lookups fanning out to the store.
const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 2 * time.Minute
)

// New builds the HTTP server for the governance API.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}
