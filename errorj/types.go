package errorj

import (
	"github.com/joomcode/errorx"
)

var (
	// reportedErrors is an error namespace for reporting errors with codes
	reportedErrors = errorx.NewNamespace("report")

	sqlError                 = reportedErrors.NewType("sql")
	BeginTransactionError    = sqlError.NewSubtype("begin_transaction")
	CommitTransactionError   = sqlError.NewSubtype("commit_transaction")
	RollbackTransactionError = sqlError.NewSubtype("rollback_transaction")
	CreateTableError         = sqlError.NewSubtype("create_table")
	CloneTableError          = sqlError.NewSubtype("clone_table")
	GetTableError            = sqlError.NewSubtype("get_table")
	GetTablesError           = sqlError.NewSubtype("get_tables")
	DropError                = sqlError.NewSubtype("drop_table")
	TruncateError            = sqlError.NewSubtype("truncate")
	CopyError                = sqlError.NewSubtype("copy")
	ReadSwitchError          = sqlError.NewSubtype("read_switch")
	WriteSwitchError         = sqlError.NewSubtype("write_switch")

	snapshotError = reportedErrors.NewType("snapshot")
	//UnknownVersionNameError is a consistency fault: switch table names a table outside of the ring
	UnknownVersionNameError = snapshotError.NewSubtype("unknown_version_name")
	RotationError           = snapshotError.NewSubtype("rotation")
	ConfigurationError      = snapshotError.NewSubtype("configuration")
	LockError               = snapshotError.NewSubtype("lock")

	DBInfo  = errorx.RegisterPrintableProperty("db_info")
	Dataset = errorx.RegisterPrintableProperty("dataset")
)

func Decorate(err error, msg string, args ...interface{}) *errorx.Error {
	return errorx.Decorate(err, msg, args...)
}

//Group multiple errors where first one is a main error
func Group(errs ...error) error {
	var nonNil []error
	for _, err := range errs {
		if err != nil {
			nonNil = append(nonNil, err)
		}
	}

	if len(nonNil) == 0 {
		return nil
	}

	if len(nonNil) == 1 {
		return nonNil[0]
	}

	mainErr := errorx.Cast(nonNil[0])
	if mainErr == nil {
		mainErr = errorx.EnsureStackTrace(nonNil[0])
	}

	return mainErr.WithUnderlyingErrors(nonNil[1:]...)
}

//IsSQLError returns true if err is any of sql error subtypes
func IsSQLError(err error) bool {
	return errorx.IsOfType(err, sqlError)
}
