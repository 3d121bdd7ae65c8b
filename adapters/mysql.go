package adapters

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jitsucom/snapshotview/errorj"
	"github.com/jitsucom/snapshotview/logging"
)

const (
	MySQLType = "MySQL"

	tableExistsMySQLQuery = `SELECT count(*) FROM information_schema.tables WHERE table_schema = ? AND table_name = ?`
	tableNamesMySQLQuery  = `SELECT table_name FROM information_schema.tables WHERE table_schema = ? AND table_type = 'BASE TABLE' ORDER BY table_name`

	showCreateTableTemplate    = "SHOW CREATE TABLE `%s`.`%s`"
	dropTableMySQLTemplate     = "DROP TABLE IF EXISTS `%s`.`%s`"
	truncateTableMySQLTemplate = "TRUNCATE TABLE `%s`.`%s`"
	copyRowsMySQLTemplate      = "INSERT INTO `%s`.`%s` SELECT * FROM `%s`.`%s`"
	createSwitchMySQLTemplate  = "CREATE TABLE IF NOT EXISTS `%s`.`%s` (`current` varchar(255))"
	readSwitchMySQLTemplate    = "SELECT `current` FROM `%s`.`%s` LIMIT 1"
	deleteSwitchMySQLTemplate  = "DELETE FROM `%s`.`%s`"
	insertSwitchMySQLTemplate  = "INSERT INTO `%s`.`%s` (`current`) VALUES (?)"
)

var constraintNameRegexp = regexp.MustCompile("CONSTRAINT `[^`]+`")

//MySQL is adapter for creating, cloning, truncating tables and maintaining the switch table.
//Every MySQL DDL statement commits the current transaction implicitly
type MySQL struct {
	sqlAdapter
	config *DataSourceConfig
}

//NewMySQL returns configured MySQL adapter instance
func NewMySQL(ctx context.Context, config *DataSourceConfig, queryLogger *logging.QueryLogger) (*MySQL, error) {
	if config.Parameters == nil {
		config.Parameters = map[string]string{}
	}
	if _, ok := config.Parameters["tls"]; !ok {
		// similar to postgres default value of sslmode option
		config.Parameters["tls"] = "preferred"
	}
	connectionString := mySQLDriverConnectionString(config)
	dataSource, err := sql.Open("mysql", connectionString)
	if err != nil {
		return nil, err
	}

	if err := dataSource.PingContext(ctx); err != nil {
		dataSource.Close()
		return nil, err
	}

	//set default values
	dataSource.SetConnMaxLifetime(3 * time.Minute)
	dataSource.SetMaxOpenConns(50)
	dataSource.SetMaxIdleConns(50)

	return &MySQL{
		sqlAdapter: sqlAdapter{dbType: MySQLType, dataSource: dataSource, queryLogger: queryLogger},
		config:     config,
	}, nil
}

//Type returns MySQL type
func (MySQL) Type() string {
	return MySQLType
}

//NonTransactionalDDL returns true: MySQL DDL statements commit implicitly
func (MySQL) NonTransactionalDDL() bool {
	return true
}

//TableExists returns true if table exists in the configured database
func (m *MySQL) TableExists(ctx context.Context, table string) (bool, error) {
	exists, err := m.exists(ctx, tableExistsMySQLQuery, m.config.Db, table)
	if err != nil {
		return false, errorj.GetTableError.Wrap(err, "failed to check table existence").
			WithProperty(errorj.DBInfo, &ErrorPayload{
				Database:  m.config.Db,
				Table:     table,
				Statement: tableExistsMySQLQuery,
			})
	}

	return exists, nil
}

//ListTables returns names of all tables in the configured database
func (m *MySQL) ListTables(ctx context.Context) ([]string, error) {
	names, err := m.selectStrings(ctx, tableNamesMySQLQuery, m.config.Db)
	if err != nil {
		return nil, errorj.GetTablesError.Wrap(err, "failed to list tables").
			WithProperty(errorj.DBInfo, &ErrorPayload{
				Database:  m.config.Db,
				Statement: tableNamesMySQLQuery,
			})
	}

	return names, nil
}

//CloneTable drops "to" and recreates it from "from" CREATE TABLE statement.
//Constraint names are database wide in MySQL so they are renamed to <to>_<i>
func (m *MySQL) CloneTable(ctx context.Context, from, to string) error {
	if err := m.DropTableIfExists(ctx, to); err != nil {
		return err
	}

	showQuery := fmt.Sprintf(showCreateTableTemplate, m.config.Db, from)
	m.queryLogger.LogQuery(showQuery)
	var tableName, createStatement string
	if err := m.executor(ctx).QueryRowContext(ctx, showQuery).Scan(&tableName, &createStatement); err != nil {
		return errorj.CloneTableError.Wrap(mapError(checkErr(err)), "failed to get create table statement").
			WithProperty(errorj.DBInfo, &ErrorPayload{
				Database:  m.config.Db,
				Table:     from,
				Statement: showQuery,
			})
	}

	query := rekeyCreateTable(createStatement, m.config.Db, tableName, to)
	if err := m.execDDL(ctx, query); err != nil {
		return errorj.CloneTableError.Wrap(err, "failed to clone table").
			WithProperty(errorj.DBInfo, &ErrorPayload{
				Database:  m.config.Db,
				Table:     to,
				Statement: query,
			})
	}

	return nil
}

//DropTableIfExists drops table, no-op if it doesn't exist
func (m *MySQL) DropTableIfExists(ctx context.Context, table string) error {
	query := fmt.Sprintf(dropTableMySQLTemplate, m.config.Db, table)
	if err := m.execDDL(ctx, query); err != nil {
		return errorj.DropError.Wrap(err, "failed to drop table").
			WithProperty(errorj.DBInfo, &ErrorPayload{
				Database:  m.config.Db,
				Table:     table,
				Statement: query,
			})
	}

	return nil
}

//Truncate deletes all records in table
func (m *MySQL) Truncate(ctx context.Context, table string) error {
	query := fmt.Sprintf(truncateTableMySQLTemplate, m.config.Db, table)
	if err := m.execDDL(ctx, query); err != nil {
		return errorj.TruncateError.Wrap(mapError(err), "failed to truncate table").
			WithProperty(errorj.DBInfo, &ErrorPayload{
				Database:  m.config.Db,
				Table:     table,
				Statement: query,
			})
	}

	return nil
}

//CopyRows inserts all rows of "from" into "to"
func (m *MySQL) CopyRows(ctx context.Context, from, to string) error {
	query := fmt.Sprintf(copyRowsMySQLTemplate, m.config.Db, to, m.config.Db, from)
	if err := m.exec(ctx, query); err != nil {
		return errorj.CopyError.Wrap(mapError(err), "failed to copy rows").
			WithProperty(errorj.DBInfo, &ErrorPayload{
				Database:  m.config.Db,
				Table:     to,
				Statement: query,
			})
	}

	return nil
}

//CreateSwitchTable creates single column switch table if it doesn't exist
func (m *MySQL) CreateSwitchTable(ctx context.Context, table string) error {
	query := fmt.Sprintf(createSwitchMySQLTemplate, m.config.Db, table)
	if err := m.execDDL(ctx, query); err != nil {
		return errorj.CreateTableError.Wrap(err, "failed to create switch table").
			WithProperty(errorj.DBInfo, &ErrorPayload{
				Database:  m.config.Db,
				Table:     table,
				Statement: query,
			})
	}

	return nil
}

//ReadSwitch returns the value of switch table's single row or empty string if there are no rows
func (m *MySQL) ReadSwitch(ctx context.Context, table string) (string, error) {
	query := fmt.Sprintf(readSwitchMySQLTemplate, m.config.Db, table)
	value, err := m.selectValue(ctx, query)
	if err != nil {
		return "", errorj.ReadSwitchError.Wrap(mapError(err), "failed to read switch table").
			WithProperty(errorj.DBInfo, &ErrorPayload{
				Database:  m.config.Db,
				Table:     table,
				Statement: query,
			})
	}

	return value, nil
}

//WriteSwitch replaces switch table content with a single row. Delete and insert are DML so they stay atomic
func (m *MySQL) WriteSwitch(ctx context.Context, table, value string) error {
	return m.WithTransaction(ctx, func(ctx context.Context) error {
		deleteQuery := fmt.Sprintf(deleteSwitchMySQLTemplate, m.config.Db, table)
		if err := m.exec(ctx, deleteQuery); err != nil {
			return errorj.WriteSwitchError.Wrap(mapError(err), "failed to clean switch table").
				WithProperty(errorj.DBInfo, &ErrorPayload{
					Database:  m.config.Db,
					Table:     table,
					Statement: deleteQuery,
				})
		}

		insertQuery := fmt.Sprintf(insertSwitchMySQLTemplate, m.config.Db, table)
		if err := m.exec(ctx, insertQuery, value); err != nil {
			return errorj.WriteSwitchError.Wrap(mapError(err), "failed to insert into switch table").
				WithProperty(errorj.DBInfo, &ErrorPayload{
					Database:  m.config.Db,
					Table:     table,
					Statement: insertQuery,
					Values:    []interface{}{value},
				})
		}

		return nil
	})
}

//rekeyCreateTable rewrites SHOW CREATE TABLE output of "from" into a statement creating "to" in database.
//Every CONSTRAINT gets a new name <to>_<i> in order of appearance
func rekeyCreateTable(statement, database, from, to string) string {
	statement = strings.Replace(statement, fmt.Sprintf("CREATE TABLE `%s`", from), fmt.Sprintf("CREATE TABLE `%s`.`%s`", database, to), 1)

	i := 0
	return constraintNameRegexp.ReplaceAllStringFunc(statement, func(string) string {
		name := fmt.Sprintf("CONSTRAINT `%s_%d`", to, i)
		i++
		return name
	})
}

func mySQLDriverConnectionString(config *DataSourceConfig) string {
	// [user[:password]@][net[(addr)]]/dbname[?param1=value1&paramN=valueN]
	connectionString := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s",
		config.Username, config.Password, config.Host, config.Port, config.Db)
	if len(config.Parameters) > 0 {
		paramList := make([]string, 0, len(config.Parameters))
		//concat provided connection parameters
		for k, v := range config.Parameters {
			paramList = append(paramList, k+"="+v)
		}
		connectionString += "?" + strings.Join(paramList, "&")
	}
	return connectionString
}
