package zaptransport

import (
	"fmt"
	"net"
	"net/url"

	"github.com/jeeves-cluster-organization/zapcore/zaptypes"
)

// Scheme identifies which transport a ZAP endpoint URI addresses.
type Scheme string

const (
	SchemeTCP  Scheme = "zap"
	SchemeTLS  Scheme = "zap+tls"
	SchemeUnix Scheme = "zap+unix"
)

// DefaultPort is used for zap:// and zap+tls:// URIs that omit a port.
const DefaultPort = 9999

// Endpoint is a parsed ZAP connection target.
type Endpoint struct {
	Scheme Scheme
	// Address is host:port for SchemeTCP/SchemeTLS, or a filesystem path
	// for SchemeUnix.
	Address string
	// ServerName is the TLS server name to verify against, for
	// SchemeTLS. Defaults to the URI host.
	ServerName string
}

// ParseURI parses a "zap://host:port", "zap+tls://host:port", or
// "zap+unix:///path/to.sock" endpoint URI.
func ParseURI(uri string) (Endpoint, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return Endpoint{}, invalidParamsError(fmt.Sprintf("parse uri: %v", err))
	}

	switch Scheme(u.Scheme) {
	case SchemeTCP, SchemeTLS:
		host := u.Hostname()
		if host == "" {
			return Endpoint{}, invalidParamsError(fmt.Sprintf("uri %q has no host", uri))
		}
		port := u.Port()
		if port == "" {
			port = fmt.Sprintf("%d", DefaultPort)
		}
		return Endpoint{
			Scheme:     Scheme(u.Scheme),
			Address:    net.JoinHostPort(host, port),
			ServerName: host,
		}, nil
	case SchemeUnix:
		path := u.Path
		if path == "" {
			path = u.Opaque
		}
		if path == "" {
			return Endpoint{}, invalidParamsError(fmt.Sprintf("uri %q has no socket path", uri))
		}
		return Endpoint{Scheme: SchemeUnix, Address: path}, nil
	default:
		return Endpoint{}, invalidParamsError(fmt.Sprintf("unsupported scheme %q", u.Scheme))
	}
}

// invalidParamsError builds a coded ZapError for a malformed endpoint URI,
// matching the invalidParams contract local-origin failures are expected
// to use throughout the client stack.
func invalidParamsError(message string) error {
	return &zaptypes.ZapError{Code: zaptypes.ErrorCodeInvalidParams, Message: "zaptransport: " + message}
}
