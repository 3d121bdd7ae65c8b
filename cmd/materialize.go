package cmd

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/jitsucom/snapshotview/logging"
	"github.com/jitsucom/snapshotview/snapshot"
	"github.com/panjf2000/ants/v2"
	"github.com/spf13/cobra"
)

const defaultPoolSize = 4

var (
	//command flags
	poolSize            int
	disableProgressBars bool
)

// materializeCmd creates switch and version tables of datasets
var materializeCmd = &cobra.Command{
	Use:   "materialize [flags] [datasets]",
	Short: "Creates the switch table and version tables of datasets",
	Long: `Creates the switch table and version tables of datasets if they don't exist. Base tables must exist.
If no datasets are passed, all datasets from the datasets configuration section are materialized`,
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

		return materialize(ctx, storage, datasets, poolSize, newProgressBar("materialize", len(datasets), disableProgressBars))
	},
}

func init() {
	rootCmd.AddCommand(materializeCmd)

	materializeCmd.Flags().IntVar(&poolSize, "pool-size", defaultPoolSize, "(optional) max amount of datasets materialized concurrently")
	materializeCmd.Flags().BoolVar(&disableProgressBars, "disable-progress-bars", false, "(optional) if true then progress bars won't be displayed")
}

type materializeTask struct {
	ctx     context.Context
	dataset *snapshot.Dataset
}

//materialize runs Materialize of every dataset in goroutines pool and returns all failures together
func materialize(ctx context.Context, storage snapshot.Storage, datasets []*snapshot.Dataset, size int, bar ProgressBar) error {
	if size <= 0 {
		size = defaultPoolSize
	}

	var mutex sync.Mutex
	var result *multierror.Error
	var wg sync.WaitGroup
	pool, err := ants.NewPoolWithFunc(size, func(i interface{}) {
		defer wg.Done()
		task := i.(*materializeTask)
		err := snapshot.NewLifecycle(task.dataset, storage).Materialize(task.ctx)
		bar.Increment(err == nil)
		if err != nil {
			logging.Errorf("[%s] failed to materialize: %v", task.dataset, err)
			mutex.Lock()
			result = multierror.Append(result, fmt.Errorf("%s: %v", task.dataset, err))
			mutex.Unlock()
			return
		}
		logging.Debugf("[%s] materialized", task.dataset)
	})
	if err != nil {
		return fmt.Errorf("Error creating goroutines pool: %v", err)
	}
	defer pool.Release()

	for _, dataset := range datasets {
		wg.Add(1)
		if err := pool.Invoke(&materializeTask{ctx: ctx, dataset: dataset}); err != nil {
			wg.Done()
			bar.Increment(false)
			mutex.Lock()
			result = multierror.Append(result, fmt.Errorf("%s: %v", dataset, err))
			mutex.Unlock()
		}
	}
	wg.Wait()
	bar.Wait()

	return result.ErrorOrNil()
}
