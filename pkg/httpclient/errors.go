package httpclient

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

const maxErrorBody = 4 << 10

// StatusError describes a non-2xx response from an upstream API.
type StatusError struct {
	Service string
	Status  int
	Body    string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned status %d", e.Service, e.Status)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Service, e.Status, e.Body)
}

// ParseResponseError reads at most 4 KiB of a non-2xx response body into a
// StatusError. The body is drained and closed.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer drain(resp.Body)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", serviceName, resp.StatusCode, err)
	}

	return &StatusError{
		Service: serviceName,
		Status:  resp.StatusCode,
		Body:    strings.TrimSpace(string(body)),
	}
}
