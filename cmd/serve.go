package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/jitsucom/snapshotview/appconfig"
	"github.com/jitsucom/snapshotview/logging"
	"github.com/jitsucom/snapshotview/routers"
	"github.com/jitsucom/snapshotview/safego"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

// serveCmd starts HTTP server with active table names of the configured datasets
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts HTTP server resolving active tables of the configured datasets",
	Long: `Starts HTTP server on server.port: GET /api/v1/datasets/:dataset/active returns the table readers must query,
GET /api/v1/datasets/:dataset/status returns all version tables. /metrics is served if metrics.enabled is true`,
	RunE: func(cmd *cobra.Command, args []string) error {
		datasets, err := appconfig.Datasets()
		if err != nil {
			return err
		}

		safego.GlobalRecoverHandler = func(value interface{}) {
			logging.SystemErrorf("Panic:\n%s\n%s", value, string(debug.Stack()))
		}

		//listen to shutdown signal to free up all resources
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP)
		defer signal.Stop(c)

		storage, err := openStorage(ctx)
		if err != nil {
			return err
		}
		defer storage.Close()

		server := &http.Server{
			Addr:              appconfig.Instance.Authority,
			Handler:           routers.SetupRouter(storage, datasets),
			ReadTimeout:       time.Second * 60,
			ReadHeaderTimeout: time.Second * 60,
			IdleTimeout:       time.Second * 65,
		}

		safego.Run(func() {
			<-c
			logging.Info("* Service is shutting down.. *")
			cancel()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer shutdownCancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				logging.Errorf("Error shutting down HTTP server: %v", err)
			}
		})

		logging.Infof("Started server: %s, datasets: %v", appconfig.Instance.Authority, datasets)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
