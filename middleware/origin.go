package middleware

import (
	"net/http"
)

// OriginChecker builds the CheckOrigin hook for the websocket upgrader.
// An empty allowed origin disables the check (useful in tests); browsers
// always send Origin, non-browser clients may omit it and are let through.
func OriginChecker(allowed string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if allowed == "" {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		return origin == allowed
	}
}
