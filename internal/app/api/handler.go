package api

import (
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"server-tonix-app/internal/model"
)

func (h *Handler) StartSession(c *gin.Context) {
	req := struct {
		ID         int64  `json:"id" binding:"required"`
		FirstName  string `json:"first_name"`
		LastName   string `json:"last_name"`
		Username   string `json:"username"`
		PhotoURL   string `json:"photo_url"`
		StartParam string `json:"start_param"`
	}{}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "should bind", err)
		return
	}

	res, err := h.svc.StartSession(c.Request.Context(), req.ID, model.Profile{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		PhotoURL:  req.PhotoURL,
	}, req.StartParam)
	if err != nil {
		fail(c, "start session", err)
		return
	}
	success(c, res)
}

func (h *Handler) GetAccount(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	acc, err := h.svc.Account(c.Request.Context(), id)
	if err != nil {
		fail(c, "get account", err)
		return
	}
	success(c, acc)
}

func (h *Handler) CheckIn(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	res, err := h.svc.CheckIn(c.Request.Context(), id)
	if err != nil {
		fail(c, "check in", err)
		return
	}
	success(c, res)
}

func (h *Handler) CheckinStatus(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	st, err := h.svc.CheckinStatus(c.Request.Context(), id)
	if err != nil {
		fail(c, "checkin status", err)
		return
	}
	success(c, st)
}

func (h *Handler) TaskBoard(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	items, err := h.svc.TaskBoard(c.Request.Context(), id)
	if err != nil {
		fail(c, "task board", err)
		return
	}
	success(c, items)
}

func (h *Handler) CompleteTask(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	res, err := h.svc.CompleteTask(c.Request.Context(), id, c.Param("task"))
	if err != nil {
		fail(c, "complete task", err)
		return
	}
	success(c, res)
}

func (h *Handler) ApplyReferral(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	req := struct {
		Code string `json:"code" form:"code" binding:"required"`
	}{}
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "should bind", err)
		return
	}
	res, err := h.svc.ApplyReferral(c.Request.Context(), id, req.Code)
	if err != nil {
		fail(c, "apply referral", err)
		return
	}
	success(c, res)
}

func (h *Handler) ReferralStats(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	st, err := h.svc.ReferralStats(c.Request.Context(), id)
	if err != nil {
		fail(c, "referral stats", err)
		return
	}
	success(c, st)
}

func (h *Handler) Transactions(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	req := struct {
		Limit  int    `form:"limit"`
		Offset int    `form:"offset"`
		Kind   string `form:"kind"`
	}{}
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, "should bind", err)
		return
	}
	entries, err := h.svc.Transactions(c.Request.Context(), id, model.EntryKind(req.Kind), req.Limit, req.Offset)
	if err != nil {
		fail(c, "list transactions", err)
		return
	}
	success(c, entries)
}

func (h *Handler) Balance(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	b, err := h.svc.Balance(c.Request.Context(), id)
	if err != nil {
		fail(c, "get balance", err)
		return
	}
	success(c, b)
}

func (h *Handler) Leaderboard(c *gin.Context) {
	entries, err := h.board.Top(c.Request.Context())
	if err != nil {
		fail(c, "leaderboard", err)
		return
	}
	success(c, entries)
}

func (h *Handler) SetTaskActive(c *gin.Context) {
	req := struct {
		Active *bool `json:"active" form:"active" binding:"required"`
	}{}
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "should bind", err)
		return
	}
	if c.Param("id") == "" {
		badRequest(c, "task id", errors.New("empty task id"))
		return
	}
	task, err := h.svc.SetTaskActive(c.Request.Context(), c.Param("id"), *req.Active)
	if err != nil {
		fail(c, "set task active", err)
		return
	}
	success(c, task)
}
