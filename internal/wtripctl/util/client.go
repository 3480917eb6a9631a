package util

import (
	"crypto/tls"
	"net/http"
	"os"
	"time"

	"github.com/wrale/wrale-trips/internal/client"
	"github.com/wrale/wrale-trips/internal/wtripctl/config"
)

// Environment overrides of the current context
const (
	EnvAPIURL    = "WTRIP_API_URL"
	EnvAuthToken = "WTRIP_AUTH_TOKEN"
)

// Connection is where and how the CLI talks to the backend
type Connection struct {
	Server             string
	Token              string
	InsecureSkipVerify bool
}

// ResolveConnection picks the backend from, in order of precedence, the
// command line, the environment, the current context and the local default.
func ResolveConnection(cfg *config.Config, server, token string) Connection {
	var conn Connection
	if cfg != nil {
		if ctx, err := cfg.GetCurrentContext(); err == nil {
			conn = Connection{
				Server:             ctx.Server,
				Token:              ctx.Token,
				InsecureSkipVerify: ctx.InsecureSkipVerify,
			}
		}
	}

	if v := os.Getenv(EnvAPIURL); v != "" {
		conn.Server = v
	}
	if v := os.Getenv(EnvAuthToken); v != "" {
		conn.Token = v
	}
	if server != "" {
		conn.Server = server
	}
	if token != "" {
		conn.Token = token
	}
	if conn.Server == "" {
		conn.Server = client.DefaultBaseURL
	}
	return conn
}

// NewClient creates an API client for conn
func NewClient(conn Connection) *client.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if conn.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	opts := []client.ClientOption{
		client.WithHTTPClient(&http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		}),
	}
	if conn.Token != "" {
		opts = append(opts, client.WithToken(conn.Token))
	}
	return client.NewClient(conn.Server, opts...)
}
