package service

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"server-tonix-app/internal/app/api"
	"server-tonix-app/internal/app/leaderboard"
	"server-tonix-app/internal/app/reward"
	"server-tonix-app/internal/db"
	"server-tonix-app/internal/model"
)

func TestRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cli, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	defer cli.Close()

	svc := reward.New(cli, model.DefaultRules())
	r := Router(api.New(svc, leaderboard.New(cli, 10, nil)), "secret")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code, "api routes require a signature")
}
