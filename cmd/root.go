package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jitsucom/snapshotview/appconfig"
	"github.com/jitsucom/snapshotview/metrics"
	"github.com/jitsucom/snapshotview/snapshot"
	"github.com/jitsucom/snapshotview/storages"
	au "github.com/logrusorgru/aurora"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configPath string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "snapshotctl",
	Short: "Snapshot view tables management tool",
	Long: `Snapshot view tables management tool. Creates version tables of datasets (materialize),
shows which version is active (status), promotes the working version (rotate) and removes version tables (decommission, drop-all)`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := appconfig.Init(configPath); err != nil {
			return fmt.Errorf("Error initializing configuration: %v", err)
		}
		if viper.GetBool("metrics.enabled") {
			metrics.Init()
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if appconfig.Instance != nil {
			return appconfig.Instance.Close()
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, au.Index(1, fmt.Sprintf("Error: %v", err)).String())
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "(optional) path to YAML configuration file. Values may be overridden by environment variables e.g. STORAGE_TYPE")
}

//openStorage creates storage from storage section of the configuration
func openStorage(ctx context.Context) (storages.Storage, error) {
	config, err := appconfig.StorageConfig()
	if err != nil {
		return nil, err
	}

	return storages.Create(ctx, config, appconfig.Instance.QueryLogger(config.Type))
}

//resolveDatasets returns datasets named in args or all configured datasets if args are empty
func resolveDatasets(args []string) ([]*snapshot.Dataset, error) {
	if len(args) == 0 {
		datasets, err := appconfig.Datasets()
		if err != nil {
			return nil, err
		}
		if len(datasets) == 0 {
			return nil, errors.New("no datasets: pass dataset names as arguments or configure datasets section")
		}
		return datasets, nil
	}

	return appconfig.DatasetsByName(args...)
}
