package appconfig

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jitsucom/snapshotview/adapters"
	"github.com/jitsucom/snapshotview/errorj"
	"github.com/jitsucom/snapshotview/snapshot"
	"github.com/jitsucom/snapshotview/storages"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

//DatasetConfig is a datasets.<name> section. Model (e.g. UserEvent) overrides the base table name
//with its snake cased form (user_event)
type DatasetConfig struct {
	Model                  string `mapstructure:"model" json:"model,omitempty" yaml:"model,omitempty"`
	HistoricalVersionCount int `mapstructure:"historical_version_count" json:"historical_version_count,omitempty" yaml:"historical_version_count,omitempty"`
}

//StorageConfig returns storage section: type and datasource
func StorageConfig() (*storages.Config, error) {
	dataSource := &adapters.DataSourceConfig{}
	if err := decode(leafSettings("storage.datasource", "host", "port", "db", "schema", "username", "password"), dataSource); err != nil {
		return nil, fmt.Errorf("Error parsing storage.datasource config: %v", err)
	}
	dataSource.Parameters = viper.GetStringMapString("storage.datasource.parameters")

	return &storages.Config{Type: viper.GetString("storage.type"), DataSource: dataSource}, nil
}

//Datasets returns all configured datasets sorted by name
func Datasets() ([]*snapshot.Dataset, error) {
	var names []string
	for name := range viper.GetStringMap("datasets") {
		names = append(names, name)
	}
	sort.Strings(names)

	return DatasetsByName(names...)
}

//DatasetsByName returns datasets with configuration from datasets.<name> section.
//Not configured datasets get the default historical versions count and name as the base table name.
//Configuration keys are case insensitive so names must be lowercase: mixed case tables are configured with model
func DatasetsByName(names ...string) ([]*snapshot.Dataset, error) {
	datasets := make([]*snapshot.Dataset, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name != strings.ToLower(name) {
			return nil, errorj.ConfigurationError.New("dataset name %q must be lowercase: configure mixed case tables with datasets.<name>.model", name)
		}

		config := DatasetConfig{HistoricalVersionCount: snapshot.DefaultHistoricalVersionCount}
		prefix := "datasets." + name + "."
		if viper.IsSet(prefix + "historical_version_count") {
			count, err := cast.ToIntE(viper.Get(prefix + "historical_version_count"))
			if err != nil {
				return nil, fmt.Errorf("Error parsing %shistorical_version_count: %v", prefix, err)
			}
			config.HistoricalVersionCount = count
		}
		config.Model = viper.GetString(prefix + "model")

		baseTableName := name
		if config.Model != "" {
			baseTableName = snapshot.TableNameForModel(config.Model)
		}

		dataset, err := snapshot.NewDataset(baseTableName, snapshot.WithHistoricalVersionCount(config.HistoricalVersionCount))
		if err != nil {
			return nil, err
		}
		datasets = append(datasets, dataset)
	}

	return datasets, nil
}
