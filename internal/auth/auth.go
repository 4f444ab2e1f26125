// Package auth provides AttackForge Self-Service API authentication.
package auth

import "net/http"

// HeaderAPIKey is the header carrying the Self-Service API key.
const HeaderAPIKey = "X-SSAPI-KEY"

// Credentials holds the AttackForge Self-Service API key.
type Credentials struct {
	APIKey string
}

// Apply adds authentication headers to an HTTP request.
func (c *Credentials) Apply(req *http.Request) {
	if c == nil {
		return
	}
	req.Header.Set(HeaderAPIKey, c.APIKey)
}

// Valid reports whether credentials are configured.
func (c *Credentials) Valid() bool {
	return c != nil && c.APIKey != ""
}
