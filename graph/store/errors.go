package store

import (
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

// ErrMalformedHostname is returned when a host cannot be parsed as either a
// URL or a host:port pair.
var ErrMalformedHostname = errors.New("hostname must include port, separated by one colon, like example.com:9000")

// ErrNotOK is returned when the store responds with a non-2xx status code.
var ErrNotOK = errors.New("did not receive 2xx response from graph store")

// ErrNotFound specializes ErrNotOK for 404 responses.
var ErrNotFound = errors.Wrap(ErrNotOK, "recv 404 NotFound response from graph store")

// Non200Err wraps the response status and body into an inspectable error.
func Non200Err(response *http.Response) error {
	bodyBytes, err := io.ReadAll(response.Body)
	var body string
	if err != nil {
		body = "(Unable to read response body.)"
	} else {
		body = "response body:\n" + string(bodyBytes)
	}
	msg := fmt.Sprintf("code=%d, url=%s, %s", response.StatusCode, response.Request.URL, body)
	switch response.StatusCode {
	case http.StatusNotFound:
		return errors.Wrap(ErrNotFound, msg)
	default:
		return errors.Wrap(ErrNotOK, msg)
	}
}
