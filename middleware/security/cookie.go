package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/url"
	"strings"
)

// Sign produces the value express-session puts in its cookie: "s:" + sid +
// "." + unpadded base64 HMAC-SHA256 of sid.
func Sign(sid, secret string) string {
	return "s:" + sid + "." + mac(sid, secret)
}

// Unsign verifies a signed cookie value and returns the session id. The value
// may still be percent-encoded as it is on the wire.
func Unsign(value, secret string) (string, bool) {
	if v, err := url.PathUnescape(value); err == nil {
		value = v
	}
	if !strings.HasPrefix(value, "s:") {
		return "", false
	}
	value = value[2:]
	dot := strings.LastIndexByte(value, '.')
	if dot <= 0 {
		return "", false
	}
	sid, sig := value[:dot], value[dot+1:]
	if !hmac.Equal([]byte(sig), []byte(mac(sid, secret))) {
		return "", false
	}
	return sid, true
}

func mac(sid, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(sid))
	return base64.RawStdEncoding.EncodeToString(h.Sum(nil))
}
