package adapters

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jitsucom/snapshotview/errorj"
	"go.uber.org/atomic"
)

const InMemoryType = "InMemory"

//Operation is an InMemory storage call name used for failures injection
type Operation string

const (
	OpTableExists  Operation = "table_exists"
	OpListTables   Operation = "list_tables"
	OpClone        Operation = "clone"
	OpDrop         Operation = "drop"
	OpTruncate     Operation = "truncate"
	OpCopy         Operation = "copy"
	OpCreateSwitch Operation = "create_switch"
	OpReadSwitch   Operation = "read_switch"
	OpWriteSwitch  Operation = "write_switch"
	OpBeginTx      Operation = "begin_tx"
)

const (
	switchColumn    = "current"
	anyTable        = "*"
	cloneConstraint = "%s_%d"
)

type memTable struct {
	columns     []string
	constraints []string
	rows        []map[string]interface{}
}

func (mt *memTable) clone() *memTable {
	rows := make([]map[string]interface{}, 0, len(mt.rows))
	for _, row := range mt.rows {
		rows = append(rows, copyRow(row))
	}
	return &memTable{
		columns:     append([]string{}, mt.columns...),
		constraints: append([]string{}, mt.constraints...),
		rows:        rows,
	}
}

type memTx struct {
	snapshot map[string]*memTable
}

type memTxKey struct {
	storage *InMemory
}

//InMemory is a map based storage. Transactions keep a snapshot of all tables and restore it on rollback.
//With nonTransactionalDDL every DDL call commits the current transaction as MySQL does.
//Transactions are serialized
type InMemory struct {
	mutex               sync.RWMutex
	txMutex             sync.Mutex
	tables              map[string]*memTable
	failures            map[string]error
	nonTransactionalDDL bool

	statements *atomic.Int64
	commits    *atomic.Int64
	rollbacks  *atomic.Int64
}

//NewInMemory returns InMemory storage with transactional DDL
func NewInMemory() *InMemory {
	return newInMemory(false)
}

//NewInMemoryNonTransactionalDDL returns InMemory storage where DDL commits implicitly
func NewInMemoryNonTransactionalDDL() *InMemory {
	return newInMemory(true)
}

func newInMemory(nonTransactionalDDL bool) *InMemory {
	return &InMemory{
		tables:              map[string]*memTable{},
		failures:            map[string]error{},
		nonTransactionalDDL: nonTransactionalDDL,
		statements:          atomic.NewInt64(0),
		commits:             atomic.NewInt64(0),
		rollbacks:           atomic.NewInt64(0),
	}
}

//Type returns InMemory type
func (im *InMemory) Type() string {
	return InMemoryType
}

//NonTransactionalDDL returns configured DDL mode
func (im *InMemory) NonTransactionalDDL() bool {
	return im.nonTransactionalDDL
}

//FailOn makes every op call on table return err. table "*" matches any table
func (im *InMemory) FailOn(op Operation, table string, err error) {
	im.mutex.Lock()
	defer im.mutex.Unlock()
	im.failures[failureKey(op, table)] = err
}

//ResetFailures removes all injected failures
func (im *InMemory) ResetFailures() {
	im.mutex.Lock()
	defer im.mutex.Unlock()
	im.failures = map[string]error{}
}

//Statements returns the number of executed storage calls
func (im *InMemory) Statements() int64 {
	return im.statements.Load()
}

//Commits returns the number of committed transactions
func (im *InMemory) Commits() int64 {
	return im.commits.Load()
}

//Rollbacks returns the number of rolled back transactions
func (im *InMemory) Rollbacks() int64 {
	return im.rollbacks.Load()
}

//CreateTable creates table with columns and constraints names. Existing table is replaced
func (im *InMemory) CreateTable(ctx context.Context, table string, columns []string, constraints ...string) error {
	im.mutex.Lock()
	defer im.mutex.Unlock()
	im.statements.Inc()

	im.tables[table] = &memTable{columns: append([]string{}, columns...), constraints: append([]string{}, constraints...)}
	im.implicitCommit(ctx)
	return nil
}

//Insert appends row into table
func (im *InMemory) Insert(ctx context.Context, table string, row map[string]interface{}) error {
	im.mutex.Lock()
	defer im.mutex.Unlock()
	im.statements.Inc()

	t, ok := im.tables[table]
	if !ok {
		return errorj.CopyError.Wrap(ErrTableNotExist, "failed to insert row").
			WithProperty(errorj.DBInfo, &ErrorPayload{Table: table})
	}
	t.rows = append(t.rows, copyRow(row))
	return nil
}

//Rows returns copies of all rows in table
func (im *InMemory) Rows(table string) ([]map[string]interface{}, error) {
	im.mutex.RLock()
	defer im.mutex.RUnlock()

	t, ok := im.tables[table]
	if !ok {
		return nil, ErrTableNotExist
	}
	return t.clone().rows, nil
}

//Columns returns table columns
func (im *InMemory) Columns(table string) ([]string, error) {
	im.mutex.RLock()
	defer im.mutex.RUnlock()

	t, ok := im.tables[table]
	if !ok {
		return nil, ErrTableNotExist
	}
	return append([]string{}, t.columns...), nil
}

//Constraints returns table constraints names
func (im *InMemory) Constraints(table string) ([]string, error) {
	im.mutex.RLock()
	defer im.mutex.RUnlock()

	t, ok := im.tables[table]
	if !ok {
		return nil, ErrTableNotExist
	}
	return append([]string{}, t.constraints...), nil
}

func (im *InMemory) TableExists(ctx context.Context, table string) (bool, error) {
	im.mutex.RLock()
	defer im.mutex.RUnlock()
	im.statements.Inc()

	if err := im.failure(OpTableExists, table); err != nil {
		return false, errorj.GetTableError.Wrap(err, "failed to check table existence").
			WithProperty(errorj.DBInfo, &ErrorPayload{Table: table})
	}
	_, ok := im.tables[table]
	return ok, nil
}

func (im *InMemory) ListTables(ctx context.Context) ([]string, error) {
	im.mutex.RLock()
	defer im.mutex.RUnlock()
	im.statements.Inc()

	if err := im.failure(OpListTables, anyTable); err != nil {
		return nil, errorj.GetTablesError.Wrap(err, "failed to list tables")
	}
	names := make([]string, 0, len(im.tables))
	for name := range im.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

//CloneTable replaces "to" with an empty table with the same columns as "from". Constraints are renamed to <to>_<i>
func (im *InMemory) CloneTable(ctx context.Context, from, to string) error {
	im.mutex.Lock()
	defer im.mutex.Unlock()
	im.statements.Inc()

	if err := im.failure(OpClone, to); err != nil {
		return errorj.CloneTableError.Wrap(err, "failed to clone table").
			WithProperty(errorj.DBInfo, &ErrorPayload{Table: to})
	}
	source, ok := im.tables[from]
	if !ok {
		return errorj.CloneTableError.Wrap(ErrTableNotExist, "failed to clone table").
			WithProperty(errorj.DBInfo, &ErrorPayload{Table: from})
	}

	constraints := make([]string, 0, len(source.constraints))
	for i := range source.constraints {
		constraints = append(constraints, fmt.Sprintf(cloneConstraint, to, i))
	}
	im.tables[to] = &memTable{columns: append([]string{}, source.columns...), constraints: constraints}
	im.implicitCommit(ctx)
	return nil
}

func (im *InMemory) DropTableIfExists(ctx context.Context, table string) error {
	im.mutex.Lock()
	defer im.mutex.Unlock()
	im.statements.Inc()

	if err := im.failure(OpDrop, table); err != nil {
		return errorj.DropError.Wrap(err, "failed to drop table").
			WithProperty(errorj.DBInfo, &ErrorPayload{Table: table})
	}
	delete(im.tables, table)
	im.implicitCommit(ctx)
	return nil
}

func (im *InMemory) Truncate(ctx context.Context, table string) error {
	im.mutex.Lock()
	defer im.mutex.Unlock()
	im.statements.Inc()

	if err := im.failure(OpTruncate, table); err != nil {
		return errorj.TruncateError.Wrap(err, "failed to truncate table").
			WithProperty(errorj.DBInfo, &ErrorPayload{Table: table})
	}
	t, ok := im.tables[table]
	if !ok {
		return errorj.TruncateError.Wrap(ErrTableNotExist, "failed to truncate table").
			WithProperty(errorj.DBInfo, &ErrorPayload{Table: table})
	}
	t.rows = nil
	im.implicitCommit(ctx)
	return nil
}

func (im *InMemory) CopyRows(ctx context.Context, from, to string) error {
	im.mutex.Lock()
	defer im.mutex.Unlock()
	im.statements.Inc()

	if err := im.failure(OpCopy, to); err != nil {
		return errorj.CopyError.Wrap(err, "failed to copy rows").
			WithProperty(errorj.DBInfo, &ErrorPayload{Table: to})
	}
	source, ok := im.tables[from]
	if !ok {
		return errorj.CopyError.Wrap(ErrTableNotExist, "failed to copy rows").
			WithProperty(errorj.DBInfo, &ErrorPayload{Table: from})
	}
	target, ok := im.tables[to]
	if !ok {
		return errorj.CopyError.Wrap(ErrTableNotExist, "failed to copy rows").
			WithProperty(errorj.DBInfo, &ErrorPayload{Table: to})
	}
	for _, row := range source.rows {
		target.rows = append(target.rows, copyRow(row))
	}
	return nil
}

func (im *InMemory) CreateSwitchTable(ctx context.Context, table string) error {
	im.mutex.Lock()
	defer im.mutex.Unlock()
	im.statements.Inc()

	if err := im.failure(OpCreateSwitch, table); err != nil {
		return errorj.CreateTableError.Wrap(err, "failed to create switch table").
			WithProperty(errorj.DBInfo, &ErrorPayload{Table: table})
	}
	if _, ok := im.tables[table]; !ok {
		im.tables[table] = &memTable{columns: []string{switchColumn}}
		im.implicitCommit(ctx)
	}
	return nil
}

func (im *InMemory) ReadSwitch(ctx context.Context, table string) (string, error) {
	im.mutex.RLock()
	defer im.mutex.RUnlock()
	im.statements.Inc()

	if err := im.failure(OpReadSwitch, table); err != nil {
		return "", errorj.ReadSwitchError.Wrap(err, "failed to read switch table").
			WithProperty(errorj.DBInfo, &ErrorPayload{Table: table})
	}
	t, ok := im.tables[table]
	if !ok {
		return "", errorj.ReadSwitchError.Wrap(ErrTableNotExist, "failed to read switch table").
			WithProperty(errorj.DBInfo, &ErrorPayload{Table: table})
	}
	if len(t.rows) == 0 {
		return "", nil
	}
	value, _ := t.rows[0][switchColumn].(string)
	return value, nil
}

func (im *InMemory) WriteSwitch(ctx context.Context, table, value string) error {
	im.mutex.Lock()
	defer im.mutex.Unlock()
	im.statements.Inc()

	if err := im.failure(OpWriteSwitch, table); err != nil {
		return errorj.WriteSwitchError.Wrap(err, "failed to write switch table").
			WithProperty(errorj.DBInfo, &ErrorPayload{Table: table, Values: []interface{}{value}})
	}
	t, ok := im.tables[table]
	if !ok {
		return errorj.WriteSwitchError.Wrap(ErrTableNotExist, "failed to write switch table").
			WithProperty(errorj.DBInfo, &ErrorPayload{Table: table})
	}
	t.rows = []map[string]interface{}{{switchColumn: value}}
	return nil
}

//WithTransaction runs fn in a new transaction or in the one carried by ctx (flattened nesting)
func (im *InMemory) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if im.InTransaction(ctx) {
		return fn(ctx)
	}

	im.mutex.RLock()
	beginErr := im.failure(OpBeginTx, anyTable)
	im.mutex.RUnlock()
	if beginErr != nil {
		return errorj.BeginTransactionError.Wrap(beginErr, "failed to begin %s transaction", InMemoryType)
	}

	im.txMutex.Lock()
	defer im.txMutex.Unlock()

	tx := &memTx{snapshot: im.snapshot()}
	defer func() {
		if r := recover(); r != nil {
			im.restore(tx)
			panic(r)
		}

		if err != nil {
			im.restore(tx)
		} else {
			im.commits.Inc()
		}
	}()

	return fn(context.WithValue(ctx, memTxKey{storage: im}, tx))
}

func (im *InMemory) InTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(memTxKey{storage: im}).(*memTx)
	return ok
}

func (im *InMemory) restore(tx *memTx) {
	im.mutex.Lock()
	defer im.mutex.Unlock()
	im.tables = tx.snapshot
	im.rollbacks.Inc()
}

//snapshot returns deep copy of all tables. Must be called without holding mutex
func (im *InMemory) snapshot() map[string]*memTable {
	im.mutex.RLock()
	defer im.mutex.RUnlock()
	return im.copyTables()
}

func (im *InMemory) copyTables() map[string]*memTable {
	tables := make(map[string]*memTable, len(im.tables))
	for name, t := range im.tables {
		tables[name] = t.clone()
	}
	return tables
}

//implicitCommit moves the rollback point of the transaction from ctx to the current state.
//Must be called with mutex held
func (im *InMemory) implicitCommit(ctx context.Context) {
	if !im.nonTransactionalDDL {
		return
	}
	if tx, ok := ctx.Value(memTxKey{storage: im}).(*memTx); ok {
		tx.snapshot = im.copyTables()
		im.commits.Inc()
	}
}

//failure returns injected error. Must be called with mutex held
func (im *InMemory) failure(op Operation, table string) error {
	if err, ok := im.failures[failureKey(op, table)]; ok {
		return err
	}
	if err, ok := im.failures[failureKey(op, anyTable)]; ok {
		return err
	}
	return nil
}

func failureKey(op Operation, table string) string {
	return string(op) + ":" + table
}

func copyRow(row map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(row))
	for k, v := range row {
		result[k] = v
	}
	return result
}

//Close is a no-op
func (im *InMemory) Close() error {
	return nil
}
