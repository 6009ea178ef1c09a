package service

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"server-tonix-app/config"
	"server-tonix-app/internal/app/api"
	"server-tonix-app/internal/pkg/middleware"
)

var srv *http.Server

// Router builds the engine: the signed API under /api plus pprof and
// metrics for operators.
func Router(h *api.Handler, signSecret string) *gin.Engine {
	r := gin.Default()
	pprof.Register(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := r.Group("/api")
	apiGroup.Use(middleware.ValidateSign(signSecret))
	h.Register(apiGroup)
	return r
}

func RunHttp(h *api.Handler) {
	if config.Server.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv = &http.Server{
		Addr:    fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port),
		Handler: Router(h, config.Server.SignSecret),
	}

	log.Infof("Start to listen %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("listen: %s\n", err)
	}
}

func GetHttp() *http.Server {
	return srv
}
