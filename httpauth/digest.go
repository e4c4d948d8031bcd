package httpauth

import (
	"crypto/md5"
	"encoding/hex"
)

// md5hex returns the lowercase hex MD5 digest of s.
func md5hex(s string) string {
	sum := md5.Sum([]byte(s))

	return hex.EncodeToString(sum[:])
}

// HashA1 returns the digest credential hash MD5("username:realm:password").
// Authorities holding plaintext passwords and provisioning tools use it to
// produce the A1 value the digest computation consumes.
//
// Spec reference: https://www.rfc-editor.org/rfc/rfc2617#section-3.2.2.2
func HashA1(username, realm, password string) string {
	return md5hex(username + ":" + realm + ":" + password)
}

// digestResponse computes the response directive value a client holding a1
// must send. The concatenation order and the literal colon separators are
// load-bearing; any deviation breaks interoperability with RFC 2617
// clients. qop, cnonce, and nc may be empty together, selecting the older
// form without them.
//
// Spec reference: https://www.rfc-editor.org/rfc/rfc2617#section-3.2.2.1
func digestResponse(a1, method, uri, nonce, cnonce, qop, nc string) string {
	ha2 := md5hex(method + ":" + uri)

	if qop != "" {
		return md5hex(a1 + ":" + nonce + ":" + nc + ":" + cnonce + ":" + qop + ":" + ha2)
	}

	return md5hex(a1 + ":" + nonce + ":" + ha2)
}
