package httpauth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// verifyDigest checks the digest Authorization header of r against the
// resolved realm and returns the authenticated username.
//
// The checklist is cumulative: every violated check appends a diagnostic
// reason instead of returning early, and a single mismatch anywhere
// rejects the request. The reasons go to the operator log only; the client
// sees nothing but the fresh challenge, so it cannot probe which check
// failed.
func (g *Gate) verifyDigest(r *http.Request, realm string) (string, bool) {
	ctx := r.Context()
	header := r.Header.Get("Authorization")

	var reasons []string

	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(header)), "digest") {
		reasons = append(reasons, "header does not start with the digest scheme")
	}

	directives := parseDirectives(header)

	username, hasUsername := directives["username"]
	if hasUsername {
		// Some Windows clients double-escape domain-qualified names,
		// sending DOMAIN\\user for DOMAIN\user.
		username = strings.ReplaceAll(username, `\\`, `\`)

		known, err := g.authority.IsRealmUser(ctx, realm, username)
		switch {
		case err != nil:
			reasons = append(reasons, fmt.Sprintf("user lookup failed: %s", err))
		case !known:
			reasons = append(reasons, fmt.Sprintf("not a realm user: %q under %q", username, realm))
		}
	} else {
		reasons = append(reasons, "missing username directive")
	}

	if clientRealm, ok := directives["realm"]; ok && !strings.EqualFold(clientRealm, realm) {
		// Root-share exception: some Windows clients compute their digest
		// against realm "/" even when they address a sub-realm.
		if g.strictRealm || clientRealm != "/" {
			reasons = append(reasons, fmt.Sprintf("realm mismatch: have %q, want %q", clientRealm, realm))
		}
	}

	if alg, ok := directives["algorithm"]; ok && !strings.EqualFold(alg, "MD5") {
		reasons = append(reasons, fmt.Sprintf("unsupported algorithm %q", alg))
	}

	uri, ok := directives["uri"]
	if !ok {
		reasons = append(reasons, "missing uri directive")
	}

	nonce, ok := directives["nonce"]
	if !ok {
		reasons = append(reasons, "missing nonce directive")
	}

	var cnonce, nc string
	qop, hasQop := directives["qop"]
	if hasQop {
		if !strings.EqualFold(qop, "auth") {
			reasons = append(reasons, fmt.Sprintf("unsupported qop %q", qop))
		}

		if cnonce, ok = directives["cnonce"]; !ok {
			reasons = append(reasons, "missing cnonce directive, mandatory with qop")
		}

		if nc, ok = directives["nc"]; !ok {
			reasons = append(reasons, "missing nc directive, mandatory with qop")
		}
	}

	response, ok := directives["response"]
	if !ok {
		reasons = append(reasons, "missing response directive")
	}

	if len(reasons) == 0 {
		expected, err := g.expectedDigest(ctx, realm, username, r.Method, uri, nonce, cnonce, qop, nc)
		switch {
		case err != nil:
			reasons = append(reasons, fmt.Sprintf("credential hash lookup failed: %s", err))

		case !digestEqual(response, expected):
			// Last resort for the root-share exception: retry the
			// computation against realm "/".
			if !g.strictRealm && g.rootShareDigestMatches(ctx, response, username, r.Method, uri, nonce, cnonce, qop, nc) {
				g.logger.Info("accepted digest computed against the root share",
					zap.String("realm", realm),
					zap.String("username", username))
			} else {
				reasons = append(reasons, "digest response mismatch")
			}
		}
	}

	if len(reasons) > 0 {
		g.logger.Warn("digest authentication failed",
			zap.String("realm", realm),
			zap.String("remote", r.RemoteAddr),
			zap.Strings("reasons", reasons),
			zap.Any("directives", directives))

		return "", false
	}

	return username, true
}

// expectedDigest recomputes the response a client holding the stored
// credentials for (realm, username) must have sent.
func (g *Gate) expectedDigest(ctx context.Context, realm, username, method, uri, nonce, cnonce, qop, nc string) (string, error) {
	a1, err := g.authority.CredentialHash(ctx, realm, username)
	if err != nil {
		return "", err
	}

	return digestResponse(a1, method, uri, nonce, cnonce, qop, nc), nil
}

// rootShareDigestMatches reports whether the presented response matches a
// digest computed against realm "/" instead of the resolved realm. Lookup
// failures count as a mismatch.
func (g *Gate) rootShareDigestMatches(ctx context.Context, response, username, method, uri, nonce, cnonce, qop, nc string) bool {
	expected, err := g.expectedDigest(ctx, "/", username, method, uri, nonce, cnonce, qop, nc)

	return err == nil && digestEqual(response, expected)
}

// digestEqual compares two digest values in constant time.
func digestEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
