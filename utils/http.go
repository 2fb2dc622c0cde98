// utils/http.go
package utils

import (
	"io"
	"net/http"
	"time"
)

// HTTPClient is shared by outbound calls that do not carry their own client.
var HTTPClient = &http.Client{
	Timeout: 10 * time.Second,
}

// DrainAndClose discards the rest of a response body so the connection can
// be reused.
func DrainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 64*1024))
	_ = body.Close()
}

// ReadErrorBody reads at most 1KB of an error response for logging.
func ReadErrorBody(body io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(body, 1024))
	return string(b)
}
