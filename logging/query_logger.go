package logging

import (
	"fmt"
	"io"
	"log"
	"strings"
)

const (
	DDLLogerType      = "ddl-debug"
	QueriesLoggerType = "sql-debug"
)

//SQLDebugConfig is a configuration of DDL and DML statements loggers
type SQLDebugConfig struct {
	DDL     *LoggerConfig `mapstructure:"ddl" json:"ddl,omitempty" yaml:"ddl,omitempty"`
	Queries *LoggerConfig `mapstructure:"queries" json:"queries,omitempty" yaml:"queries,omitempty"`
}

type LoggerConfig struct {
	Enabled     bool   `mapstructure:"enabled" json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Path        string `mapstructure:"path" json:"path,omitempty" yaml:"path,omitempty"`
	RotationMin int64  `mapstructure:"rotation_min" json:"rotation_min,omitempty" yaml:"rotation_min,omitempty"`
	MaxBackups  int    `mapstructure:"max_backups" json:"max_backups,omitempty" yaml:"max_backups,omitempty"`
}

//QueryLogger writes every DDL statement and every query of one storage into separate streams.
//Nil writers (disabled sql_debug_log sections) and nil *QueryLogger are no-ops
type QueryLogger struct {
	identifier string
	ddl        *log.Logger
	queries    *log.Logger
}

func NewQueryLogger(identifier string, ddlWriter io.Writer, queryWriter io.Writer) *QueryLogger {
	return &QueryLogger{identifier: identifier, ddl: newStreamLogger(ddlWriter), queries: newStreamLogger(queryWriter)}
}

func newStreamLogger(writer io.Writer) *log.Logger {
	if writer == nil {
		return nil
	}

	return log.New(DateTimeWriterProxy{writer: writer}, "", 0)
}

func (l *QueryLogger) LogDDL(query string) {
	if l != nil {
		l.print(l.ddl, query)
	}
}

func (l *QueryLogger) LogQuery(query string) {
	if l != nil {
		l.print(l.queries, query)
	}
}

//LogQueryWithValues writes query and its placeholders values
func (l *QueryLogger) LogQueryWithValues(query string, values []interface{}) {
	if l == nil || l.queries == nil {
		return
	}

	formatted := make([]string, 0, len(values))
	for _, value := range values {
		formatted = append(formatted, fmt.Sprint(value))
	}
	l.print(l.queries, fmt.Sprintf("%s; values: [%s]", query, strings.Join(formatted, ", ")))
}

func (l *QueryLogger) print(stream *log.Logger, statement string) {
	if stream != nil {
		stream.Printf("%s [%s] %s\n", prefixes[DEBUG], l.identifier, statement)
	}
}
