package customHttpClient

import (
	"net/http"

	"github.com/dealbrief/memoapi/internal/config"
)

var customTransport = &http.Transport{
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

var pooledClient = &http.Client{Transport: customTransport}

// GetPooledClient returns the shared outbound HTTP client. The embedding and
// LLM SDK clients hand this to their constructors so repeated provider calls
// reuse connections instead of paying the handshake every time.
func GetPooledClient() *http.Client {
	return pooledClient
}
