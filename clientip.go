package gatekeeper

import (
	"net/http"
	"strings"
)

const fallbackClientIP = "127.0.0.1"

// ClientIdentifier derives the rate-limiting identity of a request: the
// first entry of the X-Forwarded-For list, or a fixed loopback default when
// the header is absent.
//
// The site runs behind a trusted reverse proxy that overwrites the header,
// so the first entry is the original client.
//
//	Docs: docs/rate_limiting.md
func ClientIdentifier(r *http.Request) string {
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded == "" {
		return fallbackClientIP
	}

	first := forwarded
	if i := strings.IndexByte(forwarded, ','); i >= 0 {
		first = forwarded[:i]
	}
	first = strings.TrimSpace(first)
	if first == "" {
		return fallbackClientIP
	}
	return first
}
