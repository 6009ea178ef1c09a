package api

import "github.com/gin-gonic/gin"

// Register mounts the routes on g. Signature checks are the caller's
// middleware.
func (h *Handler) Register(g gin.IRoutes) {
	g.POST("/session", h.StartSession)
	g.GET("/leaderboard", h.Leaderboard)

	g.GET("/accounts/:id", h.GetAccount)
	g.POST("/accounts/:id/checkin", h.CheckIn)
	g.GET("/accounts/:id/checkin", h.CheckinStatus)
	g.GET("/accounts/:id/tasks", h.TaskBoard)
	g.POST("/accounts/:id/tasks/:task", h.CompleteTask)
	g.POST("/accounts/:id/referral", h.ApplyReferral)
	g.GET("/accounts/:id/referral", h.ReferralStats)
	g.GET("/accounts/:id/transactions", h.Transactions)
	g.GET("/accounts/:id/balance", h.Balance)

	g.PUT("/admin/tasks/:id/active", h.SetTaskActive)
}
