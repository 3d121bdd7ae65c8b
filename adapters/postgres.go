package adapters

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jitsucom/snapshotview/errorj"
	"github.com/jitsucom/snapshotview/logging"
	_ "github.com/lib/pq"
)

const (
	PostgresType = "Postgres"

	pgDefaultSchema = "public"

	tableExistsPostgresQuery = `SELECT count(*) FROM information_schema.tables WHERE table_schema = $1 AND table_name = $2`
	tableNamesPostgresQuery  = `SELECT table_name FROM information_schema.tables WHERE table_schema = $1 AND table_type = 'BASE TABLE' ORDER BY table_name`
	foreignKeysPostgresQuery = `SELECT pg_get_constraintdef(c.oid) FROM pg_constraint c JOIN pg_class t ON t.oid = c.conrelid JOIN pg_namespace n ON n.oid = t.relnamespace WHERE c.contype = 'f' AND n.nspname = $1 AND t.relname = $2 ORDER BY c.conname`

	createSchemaIfNotExistsTemplate = `CREATE SCHEMA IF NOT EXISTS "%s"`
	cloneTablePostgresTemplate      = `CREATE TABLE "%s"."%s" (LIKE "%s"."%s" INCLUDING ALL)`
	addConstraintPostgresTemplate   = `ALTER TABLE "%s"."%s" ADD CONSTRAINT "%s" %s`
	dropTablePostgresTemplate       = `DROP TABLE IF EXISTS "%s"."%s"`
	truncateTablePostgresTemplate   = `TRUNCATE "%s"."%s"`
	copyRowsPostgresTemplate        = `INSERT INTO "%s"."%s" SELECT * FROM "%s"."%s"`
	createSwitchPostgresTemplate    = `CREATE TABLE IF NOT EXISTS "%s"."%s" ("current" varchar(255))`
	readSwitchPostgresTemplate      = `SELECT "current" FROM "%s"."%s" LIMIT 1`
	deleteSwitchPostgresTemplate    = `DELETE FROM "%s"."%s"`
	insertSwitchPostgresTemplate    = `INSERT INTO "%s"."%s" ("current") VALUES ($1)`
)

//Postgres is adapter for creating, cloning, truncating tables and maintaining the switch table.
//Postgres DDL is transactional: the whole rotation is applied atomically
type Postgres struct {
	sqlAdapter
	config *DataSourceConfig
}

//NewPostgres return configured Postgres adapter instance
func NewPostgres(ctx context.Context, config *DataSourceConfig, queryLogger *logging.QueryLogger) (*Postgres, error) {
	if config.Schema == "" {
		config.Schema = pgDefaultSchema
	}
	connectionString := fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s ",
		config.Host, config.Port, config.Db, config.Username, config.Password)
	//concat provided connection parameters
	for k, v := range config.Parameters {
		connectionString += k + "=" + v + " "
	}
	dataSource, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, err
	}

	if err := dataSource.PingContext(ctx); err != nil {
		dataSource.Close()
		return nil, err
	}

	//set default value
	dataSource.SetConnMaxLifetime(10 * time.Minute)

	return &Postgres{
		sqlAdapter: sqlAdapter{dbType: PostgresType, dataSource: dataSource, queryLogger: queryLogger},
		config:     config,
	}, nil
}

//Type returns Postgres type
func (Postgres) Type() string {
	return PostgresType
}

//NonTransactionalDDL returns false: Postgres DDL participates in transactions
func (Postgres) NonTransactionalDDL() bool {
	return false
}

//CreateDbSchema creates database schema instance if doesn't exist
func (p *Postgres) CreateDbSchema(ctx context.Context) error {
	query := fmt.Sprintf(createSchemaIfNotExistsTemplate, p.config.Schema)
	if err := p.execDDL(ctx, query); err != nil {
		return errorj.CreateTableError.Wrap(err, "failed to create db schema").
			WithProperty(errorj.DBInfo, &ErrorPayload{
				Schema:    p.config.Schema,
				Statement: query,
			})
	}

	return nil
}

//TableExists returns true if table exists in the configured schema
func (p *Postgres) TableExists(ctx context.Context, table string) (bool, error) {
	exists, err := p.exists(ctx, tableExistsPostgresQuery, p.config.Schema, table)
	if err != nil {
		return false, errorj.GetTableError.Wrap(err, "failed to check table existence").
			WithProperty(errorj.DBInfo, &ErrorPayload{
				Schema:    p.config.Schema,
				Table:     table,
				Statement: tableExistsPostgresQuery,
			})
	}

	return exists, nil
}

//ListTables returns names of all tables in the configured schema
func (p *Postgres) ListTables(ctx context.Context) ([]string, error) {
	names, err := p.selectStrings(ctx, tableNamesPostgresQuery, p.config.Schema)
	if err != nil {
		return nil, errorj.GetTablesError.Wrap(err, "failed to list tables").
			WithProperty(errorj.DBInfo, &ErrorPayload{
				Schema:    p.config.Schema,
				Statement: tableNamesPostgresQuery,
			})
	}

	return names, nil
}

//CloneTable drops "to" and recreates it with columns, defaults, indexes and constraints of "from".
//LIKE doesn't copy foreign keys so they are re-added with names to_fk_<i>
func (p *Postgres) CloneTable(ctx context.Context, from, to string) error {
	return p.WithTransaction(ctx, func(ctx context.Context) error {
		if err := p.DropTableIfExists(ctx, to); err != nil {
			return err
		}

		query := fmt.Sprintf(cloneTablePostgresTemplate, p.config.Schema, to, p.config.Schema, from)
		if err := p.execDDL(ctx, query); err != nil {
			return errorj.CloneTableError.Wrap(mapError(err), "failed to clone table").
				WithProperty(errorj.DBInfo, &ErrorPayload{
					Schema:    p.config.Schema,
					Table:     to,
					Statement: query,
				})
		}

		foreignKeys, err := p.selectStrings(ctx, foreignKeysPostgresQuery, p.config.Schema, from)
		if err != nil {
			return errorj.CloneTableError.Wrap(err, "failed to get foreign keys").
				WithProperty(errorj.DBInfo, &ErrorPayload{
					Schema:    p.config.Schema,
					Table:     from,
					Statement: foreignKeysPostgresQuery,
				})
		}

		for i, definition := range foreignKeys {
			query := fmt.Sprintf(addConstraintPostgresTemplate, p.config.Schema, to, fmt.Sprintf("%s_fk_%d", to, i), definition)
			if err := p.execDDL(ctx, query); err != nil {
				return errorj.CloneTableError.Wrap(err, "failed to add foreign key").
					WithProperty(errorj.DBInfo, &ErrorPayload{
						Schema:    p.config.Schema,
						Table:     to,
						Statement: query,
					})
			}
		}

		return nil
	})
}

//DropTableIfExists drops table, no-op if it doesn't exist
func (p *Postgres) DropTableIfExists(ctx context.Context, table string) error {
	query := fmt.Sprintf(dropTablePostgresTemplate, p.config.Schema, table)
	if err := p.execDDL(ctx, query); err != nil {
		return errorj.DropError.Wrap(err, "failed to drop table").
			WithProperty(errorj.DBInfo, &ErrorPayload{
				Schema:    p.config.Schema,
				Table:     table,
				Statement: query,
			})
	}

	return nil
}

//Truncate deletes all records in table
func (p *Postgres) Truncate(ctx context.Context, table string) error {
	query := fmt.Sprintf(truncateTablePostgresTemplate, p.config.Schema, table)
	if err := p.execDDL(ctx, query); err != nil {
		return errorj.TruncateError.Wrap(mapError(err), "failed to truncate table").
			WithProperty(errorj.DBInfo, &ErrorPayload{
				Schema:    p.config.Schema,
				Table:     table,
				Statement: query,
			})
	}

	return nil
}

//CopyRows inserts all rows of "from" into "to". Both tables must have the same columns order
func (p *Postgres) CopyRows(ctx context.Context, from, to string) error {
	query := fmt.Sprintf(copyRowsPostgresTemplate, p.config.Schema, to, p.config.Schema, from)
	if err := p.exec(ctx, query); err != nil {
		return errorj.CopyError.Wrap(mapError(err), "failed to copy rows").
			WithProperty(errorj.DBInfo, &ErrorPayload{
				Schema:    p.config.Schema,
				Table:     to,
				Statement: query,
			})
	}

	return nil
}

//CreateSwitchTable creates single column switch table if it doesn't exist
func (p *Postgres) CreateSwitchTable(ctx context.Context, table string) error {
	query := fmt.Sprintf(createSwitchPostgresTemplate, p.config.Schema, table)
	if err := p.execDDL(ctx, query); err != nil {
		return errorj.CreateTableError.Wrap(err, "failed to create switch table").
			WithProperty(errorj.DBInfo, &ErrorPayload{
				Schema:    p.config.Schema,
				Table:     table,
				Statement: query,
			})
	}

	return nil
}

//ReadSwitch returns the value of switch table's single row or empty string if there are no rows
func (p *Postgres) ReadSwitch(ctx context.Context, table string) (string, error) {
	query := fmt.Sprintf(readSwitchPostgresTemplate, p.config.Schema, table)
	value, err := p.selectValue(ctx, query)
	if err != nil {
		return "", errorj.ReadSwitchError.Wrap(mapError(err), "failed to read switch table").
			WithProperty(errorj.DBInfo, &ErrorPayload{
				Schema:    p.config.Schema,
				Table:     table,
				Statement: query,
			})
	}

	return value, nil
}

//WriteSwitch replaces switch table content with a single row. Runs in the transaction from ctx or in a new one
func (p *Postgres) WriteSwitch(ctx context.Context, table, value string) error {
	return p.WithTransaction(ctx, func(ctx context.Context) error {
		deleteQuery := fmt.Sprintf(deleteSwitchPostgresTemplate, p.config.Schema, table)
		if err := p.exec(ctx, deleteQuery); err != nil {
			return errorj.WriteSwitchError.Wrap(mapError(err), "failed to clean switch table").
				WithProperty(errorj.DBInfo, &ErrorPayload{
					Schema:    p.config.Schema,
					Table:     table,
					Statement: deleteQuery,
				})
		}

		insertQuery := fmt.Sprintf(insertSwitchPostgresTemplate, p.config.Schema, table)
		if err := p.exec(ctx, insertQuery, value); err != nil {
			return errorj.WriteSwitchError.Wrap(mapError(err), "failed to insert into switch table").
				WithProperty(errorj.DBInfo, &ErrorPayload{
					Schema:    p.config.Schema,
					Table:     table,
					Statement: insertQuery,
					Values:    []interface{}{value},
				})
		}

		return nil
	})
}
