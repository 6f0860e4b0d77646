package recorder

import (
	"fmt"
	"os"
	"strings"

	"github.com/polisai/elucidation-go/pkg/domain"
)

// URIResolver yields the elucidation server's base URI. The recorder calls
// Resolve on every operation and never keeps the answer.
type URIResolver interface {
	Resolve() (string, error)
}

// StaticURI is a fixed base URI.
type StaticURI string

// Resolve implements URIResolver.
func (s StaticURI) Resolve() (string, error) {
	return string(s), nil
}

// URIFunc computes the base URI at call time, e.g. from service discovery.
type URIFunc func() string

// Resolve implements URIResolver.
func (f URIFunc) Resolve() (string, error) {
	return f(), nil
}

// EnvURI reads the base URI from the named environment variable on every call.
type EnvURI string

// Resolve implements URIResolver.
func (e EnvURI) Resolve() (string, error) {
	val := strings.TrimSpace(os.Getenv(string(e)))
	if val == "" {
		return "", fmt.Errorf("%w: environment variable %s is empty", domain.ErrNoBaseURI, string(e))
	}
	return val, nil
}
