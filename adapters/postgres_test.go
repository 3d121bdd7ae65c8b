package adapters

import (
	"context"
	"errors"
	"testing"

	"github.com/jitsucom/snapshotview/logging"
	"github.com/jitsucom/snapshotview/test"
	"github.com/stretchr/testify/require"
	"gotest.tools/assert"
)

func TestPostgresCloneTable(t *testing.T) {
	container, pg := setupPostgresDatabase(t)
	defer container.Close()
	defer pg.Close()
	ctx := context.Background()

	err := container.Exec(
		`CREATE TABLE "public"."clone_users" ("id" serial PRIMARY KEY)`,
		`CREATE TABLE "public"."clone_events" ("id" serial PRIMARY KEY, "user_id" int REFERENCES "public"."clone_users" ("id"), "name" text NOT NULL DEFAULT 'x')`,
		`CREATE INDEX "clone_events_name_idx" ON "public"."clone_events" ("name")`,
		`INSERT INTO "public"."clone_users" DEFAULT VALUES`,
		`INSERT INTO "public"."clone_events" ("user_id") VALUES (1)`,
	)
	require.NoError(t, err)

	require.NoError(t, pg.CloneTable(ctx, "clone_events", "clone_events_a"))
	exists, err := pg.TableExists(ctx, "clone_events_a")
	require.NoError(t, err)
	assert.Equal(t, exists, true)

	rows, err := container.CountRows("clone_events_a")
	require.NoError(t, err)
	assert.Equal(t, rows, 0)

	//foreign keys are cloned: unknown user is rejected
	require.Error(t, container.Exec(`INSERT INTO "public"."clone_events_a" ("user_id") VALUES (42)`))
	require.NoError(t, container.Exec(`INSERT INTO "public"."clone_events_a" ("user_id") VALUES (1)`))

	//clone replaces existing table
	require.NoError(t, pg.CloneTable(ctx, "clone_events", "clone_events_a"))
	rows, err = container.CountRows("clone_events_a")
	require.NoError(t, err)
	assert.Equal(t, rows, 0)

	require.NoError(t, pg.CopyRows(ctx, "clone_events", "clone_events_a"))
	rows, err = container.CountRows("clone_events_a")
	require.NoError(t, err)
	assert.Equal(t, rows, 1)

	require.NoError(t, pg.Truncate(ctx, "clone_events_a"))
	require.NoError(t, pg.DropTableIfExists(ctx, "clone_events_a"))
	require.NoError(t, pg.DropTableIfExists(ctx, "clone_events_a"))

	err = pg.Truncate(ctx, "clone_events_a")
	require.Error(t, err)
	require.Contains(t, err.Error(), ErrTableNotExist.Error())
}

func TestPostgresSwitchTable(t *testing.T) {
	container, pg := setupPostgresDatabase(t)
	defer container.Close()
	defer pg.Close()
	ctx := context.Background()

	require.NoError(t, pg.CreateSwitchTable(ctx, "pg_switch"))
	value, err := pg.ReadSwitch(ctx, "pg_switch")
	require.NoError(t, err)
	assert.Equal(t, value, "")

	require.NoError(t, pg.WriteSwitch(ctx, "pg_switch", "pg_a"))
	require.NoError(t, pg.WriteSwitch(ctx, "pg_switch", "pg_b"))
	value, err = pg.ReadSwitch(ctx, "pg_switch")
	require.NoError(t, err)
	assert.Equal(t, value, "pg_b")

	rows, err := container.CountRows("pg_switch")
	require.NoError(t, err)
	assert.Equal(t, rows, 1)

	//DDL and the switch are rolled back together
	err = pg.WithTransaction(ctx, func(ctx context.Context) error {
		if err := pg.WriteSwitch(ctx, "pg_switch", "pg_a"); err != nil {
			return err
		}
		if err := pg.CreateSwitchTable(ctx, "pg_other_switch"); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.EqualError(t, err, "abort")

	value, err = pg.ReadSwitch(ctx, "pg_switch")
	require.NoError(t, err)
	assert.Equal(t, value, "pg_b")
	exists, err := pg.TableExists(ctx, "pg_other_switch")
	require.NoError(t, err)
	assert.Equal(t, exists, false)

	tables, err := pg.ListTables(ctx)
	require.NoError(t, err)
	require.Contains(t, tables, "pg_switch")
}

func setupPostgresDatabase(t *testing.T) (*test.PostgresContainer, *Postgres) {
	ctx := context.Background()
	container, err := test.NewPostgresContainer(ctx)
	if err != nil {
		t.Fatalf("failed to initialize container: %v", err)
	}
	dsConfig := &DataSourceConfig{
		Host:       container.Host,
		Port:       container.Port,
		Username:   container.Username,
		Password:   container.Password,
		Db:         container.Database,
		Schema:     container.Schema,
		Parameters: map[string]string{"sslmode": "disable"},
	}
	adapter, err := NewPostgres(ctx, dsConfig, &logging.QueryLogger{})
	if err != nil {
		container.Close()
		t.Fatalf("Failed to create Postgres adapter: %v", err)
	}

	return container, adapter
}
