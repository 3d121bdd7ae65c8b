package cmd

import (
	"github.com/jitsucom/snapshotview/appconfig"
	"github.com/jitsucom/snapshotview/logging"
	"github.com/jitsucom/snapshotview/snapshot"
	"github.com/spf13/cobra"
)

// rotateCmd promotes working tables
var rotateCmd = &cobra.Command{
	Use:   "rotate <datasets>",
	Short: "Promotes the working table of datasets",
	Long: `Makes the working table of every dataset active. The previously active table becomes a historical version,
the oldest version table is recreated empty. Configured locks are held during the rotation`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		datasets, err := appconfig.DatasetsByName(args...)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		storage, err := openStorage(ctx)
		if err != nil {
			return err
		}
		defer storage.Close()

		opts, err := lockOptions(cmd)
		if err != nil {
			return err
		}

		for _, dataset := range datasets {
			view := snapshot.New(storage, dataset, opts...)
			if err := view.Rotate(ctx); err != nil {
				return err
			}
			logging.Infof("[%s] active table: %s", dataset, view.ActiveName(ctx))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(rotateCmd)
}

//lockOptions returns session options with configured locks. Locks resources are closed with the application
func lockOptions(cmd *cobra.Command) ([]snapshot.SessionOption, error) {
	factory, closer, err := appconfig.CreateLockFactory(cmd.Context())
	if err != nil {
		return nil, err
	}
	if factory == nil {
		return nil, nil
	}

	appconfig.Instance.ScheduleClosing(closer)
	return []snapshot.SessionOption{snapshot.WithLocks(factory, appconfig.LockTimeout())}, nil
}
