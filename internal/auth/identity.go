// Package auth implements the login gate in front of the API.
//
// A signed-in user is an Identity, obtained from GitHub through OAuth and kept
// in a server-side session referenced by a cookie. The session middleware puts
// the Identity into the request context; everything downstream (the guard,
// the pages, the request logger) reads it from there and nowhere else, so
// tests can build authenticated or anonymous requests with WithIdentity.
package auth

import "context"

// Identity is the profile of a signed-in user.
type Identity struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
}

// DisplayName is Name, or Login when the profile has no name.
func (i Identity) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return i.Login
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the identity in ctx, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// Authenticated reports whether ctx carries an identity.
func Authenticated(ctx context.Context) bool {
	_, ok := FromContext(ctx)
	return ok
}
