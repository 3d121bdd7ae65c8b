package integration_tests

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jitsucom/snapshotview/adapters"
	"github.com/jitsucom/snapshotview/logging"
	"github.com/jitsucom/snapshotview/snapshot"
	"github.com/jitsucom/snapshotview/storages"
	"github.com/jitsucom/snapshotview/test"
	"github.com/stretchr/testify/require"
	"gotest.tools/assert"
)

type container interface {
	Exec(statements ...string) error
	CountRows(table string) (int, error)
	SelectInts(table, column string) ([]int, error)
}

//TestPostgresRotation runs three sessions over a Postgres dataset and checks the whole ring on every step
func TestPostgresRotation(t *testing.T) {
	ctx := context.Background()
	pg, err := test.NewPostgresContainer(ctx)
	if err != nil {
		t.Fatalf("failed to initialize container: %v", err)
	}
	defer pg.Close()

	storage, err := storages.Create(ctx, &storages.Config{
		Type: storages.PostgresType,
		DataSource: &adapters.DataSourceConfig{
			Host:       pg.Host,
			Port:       pg.Port,
			Db:         pg.Database,
			Schema:     pg.Schema,
			Username:   pg.Username,
			Password:   pg.Password,
			Parameters: map[string]string{"sslmode": "disable"},
		},
	}, logging.NewQueryLogger("postgres_rotation", nil, nil))
	require.NoError(t, err)
	defer storage.Close()

	base := randomTableName()
	require.NoError(t, pg.Exec(fmt.Sprintf(`CREATE TABLE "public"."%s" ("id" int PRIMARY KEY)`, base)))

	testRotation(t, pg, storage, base)
}

//TestMySQLRotation is TestPostgresRotation against MySQL where DDL commits implicitly
func TestMySQLRotation(t *testing.T) {
	ctx := context.Background()
	mysql, err := test.NewMySQLContainer(ctx)
	if err != nil {
		t.Fatalf("failed to initialize container: %v", err)
	}
	defer mysql.Close()

	storage, err := storages.Create(ctx, &storages.Config{
		Type: storages.MySQLType,
		DataSource: &adapters.DataSourceConfig{
			Host:       mysql.Host,
			Port:       mysql.Port,
			Db:         mysql.Database,
			Username:   mysql.Username,
			Password:   mysql.Password,
			Parameters: map[string]string{"tls": "false"},
		},
	}, logging.NewQueryLogger("mysql_rotation", nil, nil))
	require.NoError(t, err)
	defer storage.Close()
	assert.Equal(t, storage.NonTransactionalDDL(), true)

	base := randomTableName()
	require.NoError(t, mysql.Exec(fmt.Sprintf("CREATE TABLE `%s` (`id` int NOT NULL, PRIMARY KEY (`id`))", base)))

	testRotation(t, mysql, storage, base)
}

//TestMySQLDatabaseMustExist checks that storage isn't created against a missing MySQL database
func TestMySQLDatabaseMustExist(t *testing.T) {
	ctx := context.Background()
	mysql, err := test.NewMySQLContainer(ctx)
	if err != nil {
		t.Fatalf("failed to initialize container: %v", err)
	}
	defer mysql.Close()

	_, err = storages.Create(ctx, &storages.Config{
		Type: storages.MySQLType,
		DataSource: &adapters.DataSourceConfig{
			Host:       mysql.Host,
			Port:       mysql.Port,
			Db:         "missing_" + randomTableName(),
			Username:   mysql.Username,
			Password:   mysql.Password,
			Parameters: map[string]string{"tls": "false"},
		},
	}, nil)
	require.Error(t, err)
}

func testRotation(t *testing.T, db container, storage storages.Storage, base string) {
	ctx := context.Background()
	dataset, err := snapshot.NewDataset(base)
	require.NoError(t, err)
	view := snapshot.New(storage, dataset)
	require.NoError(t, view.Materialize(ctx))
	require.NoError(t, view.Materialize(ctx))

	insert := func(ids ...int) snapshot.Unit {
		return func(ctx context.Context) snapshot.Outcome {
			table := view.Resolve(ctx)
			for _, id := range ids {
				if err := db.Exec(insertStatement(storage.Type(), table, id)); err != nil {
					return snapshot.Failed(err)
				}
			}
			return snapshot.Completed(table)
		}
	}

	value, err := view.NewVersion(ctx, insert(1, 2))
	require.NoError(t, err)
	assert.Equal(t, value, base+"_a")
	assert.Equal(t, view.ActiveName(ctx), base+"_a")
	requireInts(t, db, base+"_a", 1, 2)

	_, err = view.UpdatedVersion(ctx, insert(3))
	require.NoError(t, err)
	assert.Equal(t, view.ActiveName(ctx), base+"_b")
	requireInts(t, db, base+"_b", 1, 2, 3)
	requireInts(t, db, base)

	unitErr := errors.New("upstream is down")
	_, err = view.NewVersion(ctx, func(ctx context.Context) snapshot.Outcome {
		return snapshot.Failed(unitErr)
	})
	assert.Equal(t, err, unitErr)
	assert.Equal(t, view.ActiveName(ctx), base+"_b")

	_, err = view.NewVersion(ctx, insert(4))
	require.NoError(t, err)
	assert.Equal(t, view.ActiveName(ctx), base)
	requireInts(t, db, base, 4)
	requireInts(t, db, base+"_a")

	status, err := view.Status(ctx)
	require.NoError(t, err)
	for _, slot := range status.Slots {
		assert.Equal(t, slot.Exists, true, slot.Name)
	}

	require.NoError(t, view.Rotate(ctx))
	require.NoError(t, db.Exec(insertStatement(storage.Type(), base+"_a", 5)))
	require.NoError(t, view.Decommission(ctx))
	requireInts(t, db, base, 5)

	tables, err := storage.ListTables(ctx)
	require.NoError(t, err)
	for _, table := range tables {
		require.False(t, strings.HasPrefix(table, base+"_"), "table %s must be dropped", table)
	}
	require.NoError(t, snapshot.DropAll(ctx, storage, base))
}

func insertStatement(storageType, table string, id int) string {
	if storageType == adapters.MySQLType {
		return fmt.Sprintf("INSERT INTO `%s` (`id`) VALUES (%d)", table, id)
	}
	return fmt.Sprintf(`INSERT INTO "public"."%s" ("id") VALUES (%d)`, table, id)
}

func requireInts(t *testing.T, db container, table string, expected ...int) {
	values, err := db.SelectInts(table, "id")
	require.NoError(t, err)
	if expected == nil {
		expected = []int{}
	}
	require.Equal(t, expected, values, "table %s", table)
}

func randomTableName() string {
	return "events_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
}
