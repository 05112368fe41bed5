package scraper

import "fmt"

// Kind classifies why a fetch failed.
type Kind int

const (
	Transport Kind = iota
	Timeout
	ConnectionRefused
	NonSuccessStatus
)

func (k Kind) String() string {
	switch k {
	case Timeout:
		return "timeout"
	case ConnectionRefused:
		return "connection_refused"
	case NonSuccessStatus:
		return "non_success_status"
	default:
		return "transport"
	}
}

// FetchError is returned by Fetch when the console could not be read.
// StatusCode is set only for NonSuccessStatus.
type FetchError struct {
	Kind       Kind
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("scraper: fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
