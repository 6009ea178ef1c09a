// Package api exposes the reward service over HTTP.
package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"server-tonix-app/internal/app/leaderboard"
	"server-tonix-app/internal/app/reward"
	"server-tonix-app/internal/pkg/generr"
)

type Handler struct {
	svc   *reward.Service
	board *leaderboard.Board
}

func New(svc *reward.Service, board *leaderboard.Board) *Handler {
	return &Handler{svc: svc, board: board}
}

func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, struct {
		Code int         `json:"code"`
		Msg  string      `json:"msg"`
		Data interface{} `json:"data"`
	}{200, "success", data})
}

// fail answers with the error kind and its reason. Domain rejections are
// expected outcomes and are not logged as errors.
func fail(c *gin.Context, desc string, err error) {
	e := generr.From(err)
	if e.Is(generr.Persistence) || e.Is(generr.ServerError) {
		log.Errorf("err: %+v", errors.Wrap(err, desc))
	} else {
		log.Debugf("%s rejected: %v", desc, e)
	}
	c.JSON(generr.HTTPStatus(e), e)
}

func badRequest(c *gin.Context, desc string, err error) {
	log.Errorf("err: %+v", errors.Wrap(err, desc))
	c.JSON(http.StatusBadRequest, generr.ParseParam)
}

func accountID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "parse account id", errors.Errorf("bad account id %q", c.Param("id")))
		return 0, false
	}
	return id, true
}
