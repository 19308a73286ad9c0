package media

import (
	"compress/flate"
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
)

// newClient builds the media HTTP client. Compression is negotiated and
// decoded by us, including brotli, which net/http does not handle.
func newClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:       16,
			IdleConnTimeout:    90 * time.Second,
			DisableCompression: true,
		},
	}
}

// decompressReader wraps the body reader according to the response's
// Content-Encoding header.
func decompressReader(encoding string, r io.Reader) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "gzip":
		return gzip.NewReader(r)
	case "deflate":
		return flate.NewReader(r), nil
	case "br":
		return brotli.NewReader(r), nil
	default:
		return r, nil
	}
}
