package routers

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/jitsucom/snapshotview/handlers"
	"github.com/jitsucom/snapshotview/logging"
	"github.com/jitsucom/snapshotview/metrics"
	"github.com/jitsucom/snapshotview/snapshot"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRouter(storage snapshot.Storage, datasets []*snapshot.Dataset) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New() //gin.Default()
	router.Use(gin.RecoveryWithWriter(logging.GlobalLogsWriter, func(c *gin.Context, err interface{}) {
		logging.SystemErrorf("Panic:\n%s\n%s", err, string(debug.Stack()))
		c.AbortWithStatus(http.StatusInternalServerError)
	}))

	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	if metrics.Enabled() {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
	}

	datasetsHandler := handlers.NewDatasetsHandler(storage, datasets)
	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/datasets/:dataset/active", datasetsHandler.ActiveHandler)
		apiV1.GET("/datasets/:dataset/status", datasetsHandler.StatusHandler)
	}

	return router
}
