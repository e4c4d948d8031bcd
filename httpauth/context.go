package httpauth

import "context"

// AuthResult is the identity the Gate attaches to a request it forwards.
// Username is empty when the realm required no authentication.
type AuthResult struct {
	Realm    string
	Username string
}

// authResultKey is an unexported type for the single context key.
type authResultKey struct{}

// newContext returns a copy of ctx carrying res.
func newContext(ctx context.Context, res AuthResult) context.Context {
	return context.WithValue(ctx, authResultKey{}, res)
}

// FromContext returns the AuthResult the Gate attached to the request
// context, if any. Handlers behind the Gate use it to read the
// authenticated realm and username.
func FromContext(ctx context.Context) (AuthResult, bool) {
	res, ok := ctx.Value(authResultKey{}).(AuthResult)

	return res, ok
}
