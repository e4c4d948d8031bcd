package httpauth

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// errorBody is the fixed HTML body carried by every 401 response.
const errorBody = `<html><head><title>401 Access not authorized</title></head>
<body>
<h1>401 Access not authorized</h1>
</body>
</html>
`

// basicChallenge builds the WWW-Authenticate value for the Basic scheme.
//
// Spec reference: https://www.rfc-editor.org/rfc/rfc7617
func basicChallenge(realm string) string {
	return fmt.Sprintf("Basic realm=%q", realm)
}

// digestChallenge builds the WWW-Authenticate value for the Digest scheme
// with a nonce bound to the request path. Only MD5 with qop "auth" is
// offered.
func digestChallenge(realm, path string) string {
	return fmt.Sprintf(`Digest realm=%q, nonce=%q, algorithm=MD5, qop="auth"`, realm, newNonce(path))
}

// newNonce builds an opaque challenge token: a timestamp concatenated with
// MD5hex(timestamp:MD5hex(path):secret), base64 encoded, where secret is a
// fresh random 32-bit hex value. Issued nonces are not stored anywhere;
// verification later accepts any structurally valid nonce, so there is no
// freshness, expiry, or single-use guarantee. That is a documented
// property of the protocol as deployed, kept for client compatibility.
func newNonce(path string) string {
	var buf [4]byte
	_, _ = rand.Read(buf[:])
	secret := hex.EncodeToString(buf[:])

	timeKey := strconv.FormatInt(time.Now().UnixNano(), 10)
	check := md5hex(timeKey + ":" + md5hex(path) + ":" + secret)

	return base64.StdEncoding.EncodeToString([]byte(timeKey + check))
}

// writeChallenge sends a 401 carrying the given WWW-Authenticate value and
// the fixed HTML body. Content-Length and Date are set explicitly so the
// response is complete under any host server.
func writeChallenge(w http.ResponseWriter, challenge string) {
	header := w.Header()
	header.Set("WWW-Authenticate", challenge)
	header.Set("Content-Type", "text/html")
	header.Set("Content-Length", strconv.Itoa(len(errorBody)))
	header.Set("Date", httpDate())

	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(errorBody))
}

// writeUnsupportedScheme sends the empty 400 used when the Authorization
// scheme is not recognized and no fallback scheme is accepted. The failure
// is a protocol negotiation failure, not a credential failure, so it is
// kept distinct from 401.
func writeUnsupportedScheme(w http.ResponseWriter) {
	header := w.Header()
	header.Set("Content-Length", "0")
	header.Set("Date", httpDate())

	w.WriteHeader(http.StatusBadRequest)
}

// httpDate formats the current time for the Date response header.
func httpDate() string {
	return time.Now().UTC().Format(http.TimeFormat)
}
