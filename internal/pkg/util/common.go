package util

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// SignParam is the request parameter carrying the signature.
const SignParam = "s"

// GenSignCode signs the parameters sorted by key as k=v pairs joined by &,
// leaving out the signature itself: hex(HMAC-SHA256(key, payload)).
func GenSignCode(params url.Values, key string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == SignParam {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		vs := append([]string(nil), params[k]...)
		sort.Strings(vs)
		for _, v := range vs {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(v)
		}
	}

	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(b.String()))
	return hex.EncodeToString(mac.Sum(nil))
}

// BodyDigest is hex(sha256(body)); JSON bodies are signed through it.
func BodyDigest(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
