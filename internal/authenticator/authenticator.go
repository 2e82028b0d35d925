// Package authenticator declares the middleware contract the router
// depends on, so tests can substitute a stub.
package authenticator

import "net/http"

type Authenticator interface {
	AuthenticateUser(h http.Handler) http.Handler
}
