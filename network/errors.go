package network

import "fmt"

// FetchError reports a failed outbound request: a transport error, a
// timeout, or a non-200 status. Callers treat the page as empty or
// unavailable; no further distinction is made at this layer.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
