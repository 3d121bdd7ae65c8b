package snapshot

import "context"

//Storage is the relational store contract the rotation protocol needs.
//All methods must execute on the transaction carried by ctx when there is one (see WithTransaction)
type Storage interface {
	//Type returns storage type for logs and metrics e.g. Postgres
	Type() string
	//NonTransactionalDDL returns true if DDL statements implicitly commit an enclosing transaction (e.g. MySQL)
	NonTransactionalDDL() bool

	TableExists(ctx context.Context, table string) (bool, error)
	ListTables(ctx context.Context) ([]string, error)

	//CloneTable drops `to` if it exists and recreates it with the exact `from` structure (without data).
	//Named constraints are re-keyed with `to` based names
	CloneTable(ctx context.Context, from, to string) error
	DropTableIfExists(ctx context.Context, table string) error
	Truncate(ctx context.Context, table string) error
	//CopyRows inserts all rows of `from` into `to`
	CopyRows(ctx context.Context, from, to string) error

	//CreateSwitchTable creates a one text column (current) table if it doesn't exist
	CreateSwitchTable(ctx context.Context, table string) error
	//ReadSwitch returns the value of the switch table row
	ReadSwitch(ctx context.Context, table string) (string, error)
	//WriteSwitch deletes all switch table rows and inserts one row with value
	WriteSwitch(ctx context.Context, table, value string) error

	//WithTransaction runs fn in a transaction: commits on nil error, rolls back otherwise.
	//If ctx already carries a transaction, fn participates in it
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	//InTransaction returns true if ctx carries a transaction of this storage
	InTransaction(ctx context.Context) bool
}
