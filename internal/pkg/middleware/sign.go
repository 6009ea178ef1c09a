package middleware

import (
	"bytes"
	"crypto/hmac"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"server-tonix-app/internal/pkg/generr"
	"server-tonix-app/internal/pkg/util"
)

const timeout = 60

// BodyParam is the virtual parameter a JSON body is signed under.
const BodyParam = "body"

type MultipleReader interface {
	Reader() io.ReadCloser
}

type myMultipleReader struct {
	data []byte
}

func newMultipleReader(reader io.Reader) (MultipleReader, error) {
	var data []byte
	var err error
	if reader != nil {
		data, err = io.ReadAll(reader)
		if err != nil {
			return nil, err
		}
	} else {
		data = []byte{}
	}
	return &myMultipleReader{
		data: data,
	}, nil
}

func (m *myMultipleReader) Reader() io.ReadCloser {
	return io.NopCloser(bytes.NewReader(m.data))
}

// ValidateSign checks that the gateway signed the request with the shared
// secret. The signature covers every query and form parameter, the
// timestamp t, and the sha256 of a JSON body.
func ValidateSign(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		validateSign(c, secret)
	}
}

func validateSign(c *gin.Context, secret string) {
	signCode := c.Query(util.SignParam)
	if signCode == "" {
		signCode = c.GetHeader("X-Sign")
	}
	if signCode == "" {
		abort(c, generr.SignMiss)
		return
	}

	timeStamp := c.Query("t")
	tUnix, err := strconv.ParseInt(timeStamp, 10, 64)
	if err != nil {
		log.Errorf("err: %+v", errors.Wrap(err, "parse timestamp"))
		abort(c, generr.TimestampErr)
		return
	}
	if skew := time.Now().Unix() - tUnix; skew > timeout || skew < -timeout {
		abort(c, generr.TimestampOut)
		return
	}

	multipleReader, err := newMultipleReader(c.Request.Body)
	if err != nil {
		log.Errorf("err: %+v", errors.Wrap(err, "new multipleReader"))
		c.AbortWithStatusJSON(http.StatusInternalServerError, generr.ServerError)
		return
	}
	c.Request.Body = multipleReader.Reader()

	params := url.Values{}
	for k, vs := range c.Request.URL.Query() {
		params[k] = vs
	}
	if strings.HasPrefix(c.ContentType(), "application/json") {
		body, _ := io.ReadAll(multipleReader.Reader())
		if len(body) > 0 {
			params.Set(BodyParam, util.BodyDigest(body))
		}
	} else {
		if err = c.Request.ParseForm(); err != nil {
			log.Errorf("err: %+v", errors.Wrap(err, "parse form"))
			c.AbortWithStatusJSON(http.StatusInternalServerError, generr.ServerError)
			return
		}
		c.Request.Body = multipleReader.Reader()
		for k, vs := range c.Request.PostForm {
			params[k] = append(params[k], vs...)
		}
	}

	signStr := util.GenSignCode(params, secret)
	if !hmac.Equal([]byte(signStr), []byte(signCode)) {
		log.Infof("sign not match, path: %s", c.Request.URL.Path)
		abort(c, generr.SignNotMatch)
		return
	}
	c.Next()
}

func abort(c *gin.Context, e *generr.Error) {
	c.AbortWithStatusJSON(generr.HTTPStatus(e), e)
}
