package httpauth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Worked example values from RFC 2617 section 3.5.
const (
	rfcA1       = "939e7578ed9e3c518a452acee763bce9"
	rfcNonce    = "dcd98b7102dd2f0e8b11d0f600bfb0c093"
	rfcCnonce   = "0a4f113b"
	rfcResponse = "6629fae49393a05397450978507c4ef1"
)

func TestHashA1(t *testing.T) {
	assert.Equal(t, rfcA1, HashA1("Mufasa", "testrealm@host.com", "Circle Of Life"))
}

func TestDigestResponse(t *testing.T) {
	t.Run("rfc 2617 worked example", func(t *testing.T) {
		got := digestResponse(rfcA1, "GET", "/dir/index.html", rfcNonce, rfcCnonce, "auth", "00000001")
		assert.Equal(t, rfcResponse, got)
	})

	t.Run("deterministic", func(t *testing.T) {
		first := digestResponse(rfcA1, "GET", "/dir/index.html", rfcNonce, rfcCnonce, "auth", "00000001")
		second := digestResponse(rfcA1, "GET", "/dir/index.html", rfcNonce, rfcCnonce, "auth", "00000001")
		assert.Equal(t, first, second)
	})

	t.Run("form without qop", func(t *testing.T) {
		got := digestResponse(rfcA1, "GET", "/dir/index.html", rfcNonce, "", "", "")
		assert.Len(t, got, 32)
		assert.NotEqual(t, rfcResponse, got)
	})

	t.Run("every input changes the output", func(t *testing.T) {
		base := digestResponse(rfcA1, "GET", "/dir/index.html", rfcNonce, rfcCnonce, "auth", "00000001")

		variants := map[string]string{
			"a1":     digestResponse("0123456789abcdef0123456789abcdef", "GET", "/dir/index.html", rfcNonce, rfcCnonce, "auth", "00000001"),
			"method": digestResponse(rfcA1, "PUT", "/dir/index.html", rfcNonce, rfcCnonce, "auth", "00000001"),
			"uri":    digestResponse(rfcA1, "GET", "/dir/other.html", rfcNonce, rfcCnonce, "auth", "00000001"),
			"nonce":  digestResponse(rfcA1, "GET", "/dir/index.html", "deadbeef", rfcCnonce, "auth", "00000001"),
			"cnonce": digestResponse(rfcA1, "GET", "/dir/index.html", rfcNonce, "1b2c3d4e", "auth", "00000001"),
			"nc":     digestResponse(rfcA1, "GET", "/dir/index.html", rfcNonce, rfcCnonce, "auth", "00000002"),
			"qop":    digestResponse(rfcA1, "GET", "/dir/index.html", rfcNonce, "", "", ""),
		}

		for field, got := range variants {
			assert.NotEqual(t, base, got, "changing %s must change the response", field)
		}
	})
}

func TestMD5Hex(t *testing.T) {
	// HA2 of the RFC 2617 worked example.
	assert.Equal(t, "39aff3a2bab6126f332b942af96d3366", md5hex("GET:/dir/index.html"))
}
