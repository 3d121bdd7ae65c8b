package storages

import (
	"context"
	"errors"
	"testing"

	"github.com/jitsucom/snapshotview/adapters"
	"github.com/stretchr/testify/require"
)

func TestCreate(t *testing.T) {
	tests := []struct {
		name        string
		config      *Config
		expectedErr string
	}{
		{
			"nil config",
			nil,
			"storage config is required",
		},
		{
			"unknown type",
			&Config{Type: "oracle"},
			`Unknown storage type: "oracle". Available: [postgres, mysql, inmemory]`,
		},
		{
			"postgres without datasource",
			&Config{Type: "Postgres"},
			"Datasource config is required",
		},
		{
			"mysql without host",
			&Config{Type: "mysql", DataSource: &adapters.DataSourceConfig{Db: "db", Username: "u"}},
			"Datasource host is required parameter",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, err := Create(context.Background(), tt.config, nil)
			require.Error(t, err)
			require.Nil(t, storage)
			require.Equal(t, tt.expectedErr, err.Error())
		})
	}
}

func TestCreateInMemory(t *testing.T) {
	storage, err := Create(context.Background(), &Config{Type: " InMemory "}, nil)
	require.NoError(t, err)
	require.Equal(t, adapters.InMemoryType, storage.Type())
	require.False(t, storage.NonTransactionalDDL())
	require.NoError(t, storage.Close())
}

func TestUnknownTypeIsWrapped(t *testing.T) {
	_, err := Create(context.Background(), &Config{Type: "clickhouse"}, nil)
	require.True(t, errors.Is(err, ErrUnknownStorageType))
}
