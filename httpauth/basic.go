package httpauth

import (
	"encoding/base64"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// verifyBasic checks the basic Authorization header of r against the
// resolved realm and returns the authenticated username. Malformed
// payloads and wrong credentials both come back as a plain failure, so
// the client cannot tell which check rejected it.
//
// Spec reference: https://www.rfc-editor.org/rfc/rfc7617
func (g *Gate) verifyBasic(r *http.Request, realm string) (string, bool) {
	header := r.Header.Get("Authorization")

	var payload string
	if prefix := "Basic "; len(header) > len(prefix) {
		payload = strings.TrimSpace(header[len(prefix):])
	}

	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		g.logger.Warn("basic authentication failed",
			zap.String("realm", realm),
			zap.String("remote", r.RemoteAddr),
			zap.Error(err))

		return "", false
	}

	// Split on the first colon only; passwords may contain colons.
	username, password, _ := strings.Cut(string(decoded), ":")

	ok, err := g.authority.Authenticate(r.Context(), realm, username, password)
	if err != nil || !ok {
		g.logger.Warn("basic authentication failed",
			zap.String("realm", realm),
			zap.String("username", username),
			zap.String("remote", r.RemoteAddr),
			zap.Error(err))

		return "", false
	}

	return username, true
}
