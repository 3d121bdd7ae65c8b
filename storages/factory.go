package storages

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jitsucom/snapshotview/adapters"
	"github.com/jitsucom/snapshotview/logging"
	"github.com/jitsucom/snapshotview/snapshot"
)

const (
	PostgresType = "postgres"
	MySQLType    = "mysql"
	InMemoryType = "inmemory"
)

var (
	ErrUnknownStorageType = errors.New("Unknown storage type")

	_ Storage = (*adapters.Postgres)(nil)
	_ Storage = (*adapters.MySQL)(nil)
	_ Storage = (*adapters.InMemory)(nil)
)

//Storage is a snapshot.Storage backed by a connection pool
type Storage interface {
	snapshot.Storage
	io.Closer
}

//Config is a storage configuration, e.g. under the storage key in yaml config
type Config struct {
	Type       string                     `mapstructure:"type" json:"type,omitempty" yaml:"type,omitempty"`
	DataSource *adapters.DataSourceConfig `mapstructure:"datasource" json:"datasource,omitempty" yaml:"datasource,omitempty"`
}

//Create returns configured Storage and creates postgres schema if needed.
//MySQL database must exist: the connection is opened against it
func Create(ctx context.Context, config *Config, queryLogger *logging.QueryLogger) (Storage, error) {
	if config == nil {
		return nil, errors.New("storage config is required")
	}

	storageType := strings.ToLower(strings.TrimSpace(config.Type))
	switch storageType {
	case PostgresType:
		if err := config.DataSource.Validate(); err != nil {
			return nil, err
		}
		if config.DataSource.Port == 0 {
			config.DataSource.Port = 5432
		}
		postgres, err := adapters.NewPostgres(ctx, config.DataSource, queryLogger)
		if err != nil {
			return nil, err
		}
		//create db schema if doesn't exist
		if err := postgres.CreateDbSchema(ctx); err != nil {
			postgres.Close()
			return nil, err
		}
		return postgres, nil
	case MySQLType:
		if err := config.DataSource.Validate(); err != nil {
			return nil, err
		}
		if config.DataSource.Port == 0 {
			config.DataSource.Port = 3306
		}
		return adapters.NewMySQL(ctx, config.DataSource, queryLogger)
	case InMemoryType:
		logging.Warnf("In-memory storage is used: tables live only as long as the process")
		return adapters.NewInMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q. Available: [%s, %s, %s]", ErrUnknownStorageType, config.Type, PostgresType, MySQLType, InMemoryType)
	}
}
