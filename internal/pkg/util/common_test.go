package util

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenSignCode(t *testing.T) {
	a := url.Values{"t": {"1700000000"}, "code": {"42"}}
	b := url.Values{"code": {"42"}, "t": {"1700000000"}, SignParam: {"ignored"}}

	sign := GenSignCode(a, "secret")
	assert.Len(t, sign, 64)
	assert.Equal(t, sign, GenSignCode(b, "secret"))
	assert.NotEqual(t, sign, GenSignCode(a, "other"))

	a.Set("code", "43")
	assert.NotEqual(t, sign, GenSignCode(a, "secret"))
}

func TestBodyDigest(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", BodyDigest(nil))
}
