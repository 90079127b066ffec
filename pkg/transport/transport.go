// Package transport carries requests to the sandbox API. The client only
// depends on the Transport interface; HTTPTransport is the network
// implementation and other packages wrap it (resilience, chain).
package transport

import (
	"context"
	"encoding/json"
	"net/url"
)

// Transport defines the operations the client needs from the API.
type Transport interface {
	// Get fetches path with a multi-valued query and returns the JSON body.
	Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error)

	// Post sends body as JSON to path and returns the JSON body.
	// A non-2xx response must surface as a *TransportError.
	Post(ctx context.Context, path string, body any) (json.RawMessage, error)
}

// Named is implemented by transports that identify themselves in logs and metrics.
type Named interface {
	Name() string
}

// NameOf returns the transport's name, or "transport" when it has none.
func NameOf(t Transport) string {
	if n, ok := t.(Named); ok {
		return n.Name()
	}
	return "transport"
}
