package httpauth

import (
	"net/http"

	"go.uber.org/zap"
)

// MiddlewareFunc is a function which receives an http.Handler and returns
// another http.Handler, matching the middleware shape of common routers.
type MiddlewareFunc func(http.Handler) http.Handler

// Config configures the authentication Gate.
//
// The zero value of every optional field reproduces the default posture:
// Basic and Digest both accepted, Digest as the default challenge scheme,
// root-share exception enabled, anonymous OPTIONS disabled, no trusted
// header.
type Config struct {
	// Authority supplies realm resolution and credential checks. Required.
	Authority Authority

	// DisableBasic stops the Gate from accepting or offering the Basic
	// scheme.
	DisableBasic bool

	// DisableDigest stops the Gate from accepting the Digest scheme.
	// Requests presenting digest credentials are downgraded to a Basic
	// challenge while Basic stays enabled.
	DisableDigest bool

	// DefaultToBasic challenges with Basic instead of Digest when a
	// request carries no Authorization header or an unrecognized scheme.
	DefaultToBasic bool

	// TrustedAuthHeader names a request header whose value an upstream
	// proxy fills with an already-authenticated username. When present,
	// its value is accepted as the identity without a credential check.
	// Leave empty unless every hop in front of the Gate strips the header
	// from client requests.
	TrustedAuthHeader string

	// StrictRealm disables the root-share compatibility exception, which
	// accepts digests computed against realm "/" for requests that
	// resolve to a sub-realm. Some Windows clients depend on the
	// exception when they mount a sub-path.
	StrictRealm bool

	// AllowAnonymousOptions forwards OPTIONS requests without any
	// credential check. Some Windows clients probe with anonymous OPTIONS
	// before authenticating; keeping this off is the safer posture.
	AllowAnonymousOptions bool

	// Logger receives rejection diagnostics at Warn and bypass decisions
	// at Debug. When nil, logging is disabled.
	Logger *zap.Logger

	// Metrics, when set, counts Gate decisions.
	Metrics *Metrics
}

// Gate is the authentication decision point. It resolves the realm of
// every request, applies bypass and trust rules, verifies Basic or Digest
// credentials, and either forwards the request with an AuthResult attached
// or answers with a challenge.
//
// A Gate holds no per-request state; a single value is safe for concurrent
// use across any number of handlers.
type Gate struct {
	authority     Authority
	acceptBasic   bool
	acceptDigest  bool
	defaultDigest bool
	trustedHeader string
	strictRealm   bool
	allowAnonOpts bool
	logger        *zap.Logger
	metrics       *Metrics
}

// New validates cfg and builds a Gate.
//
// It returns ErrNoAuthority when cfg.Authority is nil, and
// ErrDigestNotSupported when the authority cannot supply digest credential
// hashes while the policy accepts digest, defaults to digest, or disables
// basic. The latter is checked here so a misconfigured deployment fails at
// startup instead of rejecting every request.
func New(cfg Config) (*Gate, error) {
	if cfg.Authority == nil {
		return nil, ErrNoAuthority
	}

	g := &Gate{
		authority:     cfg.Authority,
		acceptBasic:   !cfg.DisableBasic,
		acceptDigest:  !cfg.DisableDigest,
		defaultDigest: !cfg.DefaultToBasic,
		trustedHeader: cfg.TrustedAuthHeader,
		strictRealm:   cfg.StrictRealm,
		allowAnonOpts: cfg.AllowAnonymousOptions,
		logger:        cfg.Logger,
		metrics:       cfg.Metrics,
	}

	if g.logger == nil {
		g.logger = zap.NewNop()
	}

	if !g.authority.SupportsDigest() && (g.acceptDigest || g.defaultDigest || !g.acceptBasic) {
		return nil, ErrDigestNotSupported
	}

	return g, nil
}

// Middleware validates cfg and returns the Gate as a MiddlewareFunc.
func Middleware(cfg Config) (MiddlewareFunc, error) {
	g, err := New(cfg)
	if err != nil {
		return nil, err
	}

	return g.Wrap, nil
}

// Wrap returns a handler that authenticates every request before passing
// it to next.
func (g *Gate) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.metrics.request()

		realm := g.authority.ResolveRealm(r.URL.Path)

		// Anonymous OPTIONS probes bypass authentication when allowed.
		forceAllow := g.allowAnonOpts && r.Method == http.MethodOptions

		if forceAllow || !g.authority.RequiresAuth(realm) {
			g.metrics.anonymousAllow()
			g.logger.Debug("allowed without credentials",
				zap.String("realm", realm),
				zap.String("method", r.Method))
			g.forward(w, r, next, AuthResult{Realm: realm})

			return
		}

		if g.trustedHeader != "" {
			if username := r.Header.Get(g.trustedHeader); username != "" {
				g.metrics.trustedAllow()
				g.logger.Debug("accepted trusted auth header",
					zap.String("realm", realm),
					zap.String("username", username))
				g.forward(w, r, next, AuthResult{Realm: realm, Username: username})

				return
			}
		}

		header := r.Header.Get("Authorization")
		if header == "" {
			g.metrics.challenge()
			g.challenge(w, r, realm, g.defaultDigest)

			return
		}

		switch scheme := authScheme(header); {
		case scheme == "digest" && g.acceptDigest:
			g.handleDigest(w, r, next, realm)

		case scheme == "digest" && g.acceptBasic:
			// Digest presented but not accepted: downgrade to Basic.
			g.metrics.challenge()
			g.challenge(w, r, realm, false)

		case scheme == "basic" && g.acceptBasic:
			g.handleBasic(w, r, next, realm)

		case g.defaultDigest && g.acceptDigest:
			g.metrics.challenge()
			g.challenge(w, r, realm, true)

		case g.acceptBasic:
			g.metrics.challenge()
			g.challenge(w, r, realm, false)

		default:
			g.metrics.reject()
			g.logger.Warn("unsupported authorization scheme",
				zap.String("realm", realm),
				zap.String("scheme", scheme),
				zap.String("remote", r.RemoteAddr))
			writeUnsupportedScheme(w)
		}
	})
}

// handleDigest verifies digest credentials and forwards on success. A
// client that already speaks digest is re-challenged with digest on
// failure, regardless of the default scheme.
func (g *Gate) handleDigest(w http.ResponseWriter, r *http.Request, next http.Handler, realm string) {
	username, ok := g.verifyDigest(r, realm)
	if !ok {
		g.metrics.failure()
		g.challenge(w, r, realm, true)

		return
	}

	g.metrics.digestSuccess()
	g.forward(w, r, next, AuthResult{Realm: realm, Username: username})
}

// handleBasic verifies basic credentials and forwards on success.
func (g *Gate) handleBasic(w http.ResponseWriter, r *http.Request, next http.Handler, realm string) {
	username, ok := g.verifyBasic(r, realm)
	if !ok {
		g.metrics.failure()
		g.challenge(w, r, realm, false)

		return
	}

	g.metrics.basicSuccess()
	g.forward(w, r, next, AuthResult{Realm: realm, Username: username})
}

// challenge sends a 401 with a Digest or Basic challenge for realm.
func (g *Gate) challenge(w http.ResponseWriter, r *http.Request, realm string, digest bool) {
	if digest {
		writeChallenge(w, digestChallenge(realm, r.URL.Path))

		return
	}

	writeChallenge(w, basicChallenge(realm))
}

// forward attaches the identity to the request context and calls next.
func (g *Gate) forward(w http.ResponseWriter, r *http.Request, next http.Handler, res AuthResult) {
	next.ServeHTTP(w, r.WithContext(newContext(r.Context(), res)))
}
