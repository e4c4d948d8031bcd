package httpauth

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// TransportConfig configures a client Transport.
type TransportConfig struct {
	// Username and Password identify the client.
	Username string
	Password string

	// AllowBasic permits answering Basic challenges, which sends the
	// password in clear text. Leave off unless the connection is trusted.
	AllowBasic bool
}

// Transport is an http.RoundTripper that answers HTTP Digest challenges
// (RFC 2617, MD5) for outgoing requests. When a server responds 401 with a
// Digest challenge, the request is retried once with a computed
// Authorization header; Basic challenges are answered only when
// AllowBasic is set. A challenge the Transport cannot answer leaves the
// 401 response untouched for the caller to inspect.
//
// Use NewTransport to create a Transport with a configured *http.Transport
// for proxy, TLS, and timeout settings.
type Transport struct {
	base   http.RoundTripper
	config TransportConfig
}

// NewTransport creates a Transport that delegates to base. When base is
// nil, a clone of http.DefaultTransport is used, giving an independent
// connection pool with default proxy, TLS, and timeout settings.
func NewTransport(base *http.Transport, cfg TransportConfig) *Transport {
	var rt http.RoundTripper
	if base != nil {
		rt = base
	} else {
		rt = http.DefaultTransport.(*http.Transport).Clone()
	}

	return &Transport{
		base:   rt,
		config: cfg,
	}
}

// RoundTrip performs req and answers at most one authentication challenge.
// Requests whose body was already consumed are retried only when GetBody
// is available; http.NewRequest sets it for the common body types.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	retry, ok := t.retryRequest(req)
	if !ok {
		return resp, nil
	}

	challenge := resp.Header.Get("WWW-Authenticate")

	switch authScheme(challenge) {
	case "digest":
		authz, err := t.digestAuthorization(challenge, retry)
		if err != nil {
			return resp, nil
		}

		retry.Header.Set("Authorization", authz)

	case "basic":
		if !t.config.AllowBasic {
			return resp, nil
		}

		retry.SetBasicAuth(t.config.Username, t.config.Password)

	default:
		return resp, nil
	}

	// Drain the challenge body so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	return t.base.RoundTrip(retry)
}

// retryRequest clones req for the authenticated retry, restoring the body
// from GetBody when one was attached.
func (t *Transport) retryRequest(req *http.Request) (*http.Request, bool) {
	clone := req.Clone(req.Context())

	if req.Body == nil || req.Body == http.NoBody {
		return clone, true
	}

	if req.GetBody == nil {
		return nil, false
	}

	body, err := req.GetBody()
	if err != nil {
		return nil, false
	}

	clone.Body = body

	return clone, true
}

// digestAuthorization computes the Authorization header value answering a
// Digest challenge for req.
func (t *Transport) digestAuthorization(challenge string, req *http.Request) (string, error) {
	directives := parseDirectives(challenge)

	nonce, ok := directives["nonce"]
	if !ok {
		return "", ErrBadChallenge
	}

	if alg, ok := directives["algorithm"]; ok && !strings.EqualFold(alg, "MD5") {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedChallenge, alg)
	}

	realm := directives["realm"]
	uri := req.URL.RequestURI()
	a1 := HashA1(t.config.Username, realm, t.config.Password)

	var qop, cnonce, nc string
	if qopOffered(directives["qop"]) {
		qop = "auth"
		cnonce = strings.ReplaceAll(uuid.NewString(), "-", "")
		nc = "00000001"
	}

	response := digestResponse(a1, req.Method, uri, nonce, cnonce, qop, nc)

	parts := []string{
		fmt.Sprintf("username=%q", t.config.Username),
		fmt.Sprintf("realm=%q", realm),
		fmt.Sprintf("nonce=%q", nonce),
		fmt.Sprintf("uri=%q", uri),
		"algorithm=MD5",
	}

	if qop != "" {
		parts = append(parts, "qop=auth", "nc="+nc, fmt.Sprintf("cnonce=%q", cnonce))
	}

	if opaque, ok := directives["opaque"]; ok {
		parts = append(parts, fmt.Sprintf("opaque=%q", opaque))
	}

	parts = append(parts, fmt.Sprintf("response=%q", response))

	return "Digest " + strings.Join(parts, ", "), nil
}

// qopOffered reports whether the challenge offers the auth quality of
// protection. Servers may offer a comma-separated list.
func qopOffered(qop string) bool {
	for _, q := range strings.Split(qop, ",") {
		if strings.EqualFold(strings.TrimSpace(q), "auth") {
			return true
		}
	}

	return false
}
