package httpx

import (
	"net/http"
	"time"
)

type Middleware func(http.Handler) http.Handler

// Chain applies middleware outermost first, so Chain(h, a, b) serves as
// a(b(h)).
func Chain(h http.Handler, m ...Middleware) http.Handler {
	for i := len(m) - 1; i >= 0; i-- {
		h = m[i](h)
	}
	return h
}

func WithTimeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}
