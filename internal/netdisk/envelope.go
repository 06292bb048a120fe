package netdisk

// Envelope is the wrapper used by every JSON response of the platform and
// of the gateway. A 2xx envelope is returned as-is: Code and Message are
// not interpreted by this package.
type Envelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    *T     `json:"data"`
	TraceID string `json:"x-traceID"`
}

// Empty is the payload type of endpoints that return no data.
type Empty struct{}
