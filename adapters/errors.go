package adapters

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

var ErrTableNotExist = errors.New("table doesn't exist")

var notExistRegexp = regexp.MustCompile(`(?i)(not|doesn't)\sexist`)

//ErrorPayload is attached to sql errors as errorj.DBInfo property
type ErrorPayload struct {
	Database  string
	Schema    string
	Table     string
	Statement string
	Values    []interface{}
}

func (ep *ErrorPayload) String() string {
	var msgParts []string
	if ep.Database != "" {
		msgParts = append(msgParts, fmt.Sprintf("database=%s", ep.Database))
	}
	if ep.Schema != "" {
		msgParts = append(msgParts, fmt.Sprintf("schema=%s", ep.Schema))
	}
	if ep.Table != "" {
		msgParts = append(msgParts, fmt.Sprintf("table=%s", ep.Table))
	}
	if ep.Statement != "" {
		msgParts = append(msgParts, fmt.Sprintf("statement=%s", ep.Statement))
	}
	if len(ep.Values) > 0 {
		msgParts = append(msgParts, fmt.Sprintf("values=%v", ep.Values))
	}

	return strings.Join(msgParts, ", ")
}

//mapError returns ErrTableNotExist if err is about a missing relation
func mapError(err error) error {
	if err != nil && notExistRegexp.MatchString(err.Error()) {
		return ErrTableNotExist
	}
	return err
}

//checkErr checks and extracts parsed pq.Error or mysql.MySQLError and extract code,message,details
func checkErr(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		msgParts := []string{"pq:"}
		if pgErr.Code != "" {
			msgParts = append(msgParts, string(pgErr.Code))
		}
		if pgErr.Message != "" {
			msgParts = append(msgParts, pgErr.Message)
		}
		if pgErr.Detail != "" {
			msgParts = append(msgParts, pgErr.Detail)
		}
		if pgErr.Schema != "" {
			msgParts = append(msgParts, "schema:"+pgErr.Schema)
		}
		if pgErr.Table != "" {
			msgParts = append(msgParts, "table:"+pgErr.Table)
		}
		if pgErr.Constraint != "" {
			msgParts = append(msgParts, "constraint:"+pgErr.Constraint)
		}
		return errors.New(strings.Join(msgParts, " "))
	}

	var mySQLErr *mysql.MySQLError
	if errors.As(err, &mySQLErr) {
		return fmt.Errorf("mysql: %d %s", mySQLErr.Number, mySQLErr.Message)
	}

	return err
}
