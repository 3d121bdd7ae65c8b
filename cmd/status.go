package cmd

import (
	"context"
	"io"
	"strconv"

	"github.com/jitsucom/snapshotview/snapshot"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// statusCmd prints version tables of datasets
var statusCmd = &cobra.Command{
	Use:   "status [datasets]",
	Short: "Prints active and working tables of datasets",
	Long:  `Prints every version table of datasets: whether it exists, which one is active and which one is working`,
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

		return writeStatus(ctx, cmd.OutOrStdout(), storage, datasets)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

//writeStatus writes one table row per version table of every dataset
func writeStatus(ctx context.Context, w io.Writer, storage snapshot.Storage, datasets []*snapshot.Dataset) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Dataset", "Table", "Exists", "Active", "Working"})
	table.SetAutoMergeCells(true)
	table.SetRowLine(true)

	for _, dataset := range datasets {
		status, err := snapshot.NewLifecycle(dataset, storage).Status(ctx)
		if err != nil {
			return err
		}

		for _, slot := range status.Slots {
			table.Append([]string{status.Dataset, slot.Name, strconv.FormatBool(slot.Exists), mark(slot.Active), mark(slot.Working)})
		}
	}

	table.Render()
	return nil
}

func mark(value bool) string {
	if value {
		return "*"
	}

	return ""
}
