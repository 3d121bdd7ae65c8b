package adapters

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jitsucom/snapshotview/errorj"
	"github.com/jitsucom/snapshotview/logging"
)

//Transaction is sql transaction wrapper. Used for handling and log errors with db type (Postgres or MySQL)
//on Commit() and Rollback() calls
type Transaction struct {
	dbType string
	tx     *sql.Tx
}

//Commit finishes underlying transaction and returns err if occurred
func (t *Transaction) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return errorj.CommitTransactionError.Wrap(checkErr(err), "failed to commit %s transaction", t.dbType)
	}

	return nil
}

//Rollback cancels underlying transaction. MySQL bad connection errors are only logged:
//the server has rolled the transaction back already
func (t *Transaction) Rollback(cause error) error {
	if err := t.tx.Rollback(); err != nil {
		if err == sql.ErrTxDone {
			return nil
		}
		if t.dbType == MySQLType && (strings.HasSuffix(err.Error(), mysql.ErrInvalidConn.Error()) || strings.HasSuffix(err.Error(), "bad connection")) {
			logging.Errorf("Unable to rollback %s transaction: %v cause: %v", t.dbType, err, cause)
			return nil
		}

		return errorj.RollbackTransactionError.Wrap(checkErr(err), "failed to rollback %s transaction", t.dbType)
	}

	return nil
}

type txKey struct {
	dataSource *sql.DB
}

//executor is implemented by both *sql.DB and *sql.Tx
type executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

//sqlAdapter is a common part of SQL storages: transactions carried by context and statements logging
type sqlAdapter struct {
	dbType      string
	dataSource  *sql.DB
	queryLogger *logging.QueryLogger
}

//OpenTx opens underline sql transaction and return wrapped instance
func (sa *sqlAdapter) OpenTx(ctx context.Context) (*Transaction, error) {
	tx, err := sa.dataSource.BeginTx(ctx, nil)
	if err != nil {
		return nil, errorj.BeginTransactionError.Wrap(checkErr(err), "failed to begin %s transaction", sa.dbType)
	}

	return &Transaction{tx: tx, dbType: sa.dbType}, nil
}

//InTransaction returns true if ctx carries a transaction opened by this adapter
func (sa *sqlAdapter) InTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{dataSource: sa.dataSource}).(*Transaction)
	return ok
}

//WithTransaction runs fn in a new transaction or in the one carried by ctx (flattened nesting).
//Commits on nil error, rolls back on error or panic
func (sa *sqlAdapter) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if sa.InTransaction(ctx) {
		return fn(ctx)
	}

	wrappedTx, err := sa.OpenTx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			if rbErr := wrappedTx.Rollback(fmt.Errorf("panic: %v", r)); rbErr != nil {
				logging.Errorf("%v", rbErr)
			}
			panic(r)
		}

		if err != nil {
			if rbErr := wrappedTx.Rollback(err); rbErr != nil {
				err = errorj.Group(err, rbErr)
			}
		} else {
			err = wrappedTx.Commit()
		}
	}()

	return fn(context.WithValue(ctx, txKey{dataSource: sa.dataSource}, wrappedTx))
}

func (sa *sqlAdapter) executor(ctx context.Context) executor {
	if wrappedTx, ok := ctx.Value(txKey{dataSource: sa.dataSource}).(*Transaction); ok {
		return wrappedTx.tx
	}

	return sa.dataSource
}

func (sa *sqlAdapter) execDDL(ctx context.Context, statement string) error {
	sa.queryLogger.LogDDL(statement)
	_, err := sa.executor(ctx).ExecContext(ctx, statement)
	return checkErr(err)
}

func (sa *sqlAdapter) exec(ctx context.Context, statement string, values ...interface{}) error {
	sa.queryLogger.LogQueryWithValues(statement, values)
	_, err := sa.executor(ctx).ExecContext(ctx, statement, values...)
	return checkErr(err)
}

//countRows runs count(*) query and returns the result > 0
func (sa *sqlAdapter) exists(ctx context.Context, query string, values ...interface{}) (bool, error) {
	sa.queryLogger.LogQueryWithValues(query, values)
	var count int
	if err := sa.executor(ctx).QueryRowContext(ctx, query, values...).Scan(&count); err != nil {
		return false, checkErr(err)
	}

	return count > 0, nil
}

func (sa *sqlAdapter) selectStrings(ctx context.Context, query string, values ...interface{}) ([]string, error) {
	sa.queryLogger.LogQueryWithValues(query, values)
	rows, err := sa.executor(ctx).QueryContext(ctx, query, values...)
	if err != nil {
		return nil, checkErr(err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, checkErr(err)
		}
		result = append(result, value)
	}

	if err := rows.Err(); err != nil {
		return nil, checkErr(err)
	}

	return result, nil
}

//selectValue returns the first column of the first row. Empty string if there are no rows or the value is NULL
func (sa *sqlAdapter) selectValue(ctx context.Context, query string) (string, error) {
	sa.queryLogger.LogQuery(query)
	var value sql.NullString
	if err := sa.executor(ctx).QueryRowContext(ctx, query).Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", checkErr(err)
	}

	return value.String, nil
}

//Close underlying sql.DB
func (sa *sqlAdapter) Close() error {
	return sa.dataSource.Close()
}
