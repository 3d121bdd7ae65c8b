package cmd

import (
	"github.com/jitsucom/snapshotview/logging"
	"github.com/jitsucom/snapshotview/snapshot"
	"github.com/spf13/cobra"
)

var (
	decommissionCmd = &cobra.Command{
		Use:   "decommission <datasets>",
		Short: "Turns datasets back into ordinary tables",
		Long:  `Moves the active version rows into the base table and drops version tables and the switch table of every dataset`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			datasets, err := resolveDatasets(args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			storage, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer storage.Close()

			for _, dataset := range datasets {
				if err := snapshot.NewLifecycle(dataset, storage).Decommission(ctx); err != nil {
					return err
				}
				logging.Infof("[%s] decommissioned", dataset)
			}

			return nil
		},
	}

	dropAllCmd = &cobra.Command{
		Use:   "drop-all <base table>",
		Short: "Drops every version table and the switch table of base table naming scheme",
		Long: `Drops <base>_<letter> and <base>_switch tables found in the storage. Doesn't require the dataset configuration:
used for cleaning up abandoned datasets. The base table is kept`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			storage, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer storage.Close()

			return snapshot.DropAll(ctx, storage, args[0])
		},
	}
)

func init() {
	rootCmd.AddCommand(decommissionCmd, dropAllCmd)
}
