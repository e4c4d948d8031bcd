// Package httpauth implements an HTTP request-authentication gate for the
// Basic and Digest schemes (RFC 2617 / RFC 7617, MD5 based).
//
// The Gate sits in front of a protected handler and decides per request
// whether to forward it, challenge it, or reject it. It resolves an
// authentication realm for every request path, delegates identity and
// credential lookups to an Authority, and for Digest independently
// recomputes and verifies the cryptographic response without ever seeing
// the client's plaintext password.
//
// # Gate
//
// Build a Gate from a Config and wrap any http.Handler:
//
//	gate, err := httpauth.New(httpauth.Config{
//	    Authority: auth,
//	    Logger:    logger,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	http.ListenAndServe(":8080", gate.Wrap(handler))
//
// The zero Config accepts both schemes, challenges with Digest by default,
// and keeps the documented client-compatibility exceptions at their safe
// defaults. Handlers behind the Gate read the authenticated identity from
// the request context:
//
//	res, ok := httpauth.FromContext(r.Context())
//	if ok && res.Username != "" {
//	    // authenticated request
//	}
//
// # Scheme negotiation
//
// A request with digest credentials is verified when digest is accepted
// and downgraded to a Basic challenge when only basic is. A request with
// an unrecognized scheme receives the default challenge, or an empty 400
// when no scheme is left to offer. A request without credentials receives
// the default challenge. Failed verifications always answer with a fresh
// challenge and never tell the client which check failed.
//
// # Nonce statelessness
//
// Challenge nonces embed a timestamp and a hash bound to the request path
// and a fresh random secret, but the Gate stores nothing about them:
// verification accepts any structurally valid nonce, with no freshness,
// expiry, or single-use enforcement. This mirrors the protocol as widely
// deployed; deployments needing replay protection must layer it elsewhere.
//
// # Client Transport
//
// NewTransport creates an http.RoundTripper that answers Digest challenges
// for outgoing requests, retrying once with a computed Authorization
// header:
//
//	client := &http.Client{
//	    Transport: httpauth.NewTransport(nil, httpauth.TransportConfig{
//	        Username: "mircea",
//	        Password: "secret",
//	    }),
//	}
//
//	resp, err := client.Get("https://dav.example.com/share/file.txt")
//
// # Authorities
//
// The Authority interface abstracts the identity backend. Ready-made
// implementations (in-memory, htdigest, htpasswd, SQLite) live in the
// companion authority package.
package httpauth
