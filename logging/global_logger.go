package logging

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/gookit/color"
)

//GlobalType is a log path value meaning "write into the global logger"
const GlobalType = "global"

var (
	GlobalLogsWriter io.Writer
	LogLevel         = UNKNOWN

	prefixes = map[Level]string{
		DEBUG: "[DEBUG]:",
		INFO:  "[INFO]:",
		WARN:  "[WARN]:",
		ERROR: "[ERROR]:",
		FATAL: "[ERROR]:",
	}
)

//Config is a rolling file writer configuration
type Config struct {
	FileName    string
	FileDir     string
	RotationMin int64
	MaxBackups  int
}

func (c Config) Validate() error {
	if c.FileName == "" {
		return errors.New("Logger file name can't be empty")
	}
	if c.FileDir == "" {
		return errors.New("Logger file dir can't be empty")
	}

	return nil
}

//InitGlobalLogger directs the standard logger into writer with date time prefixes and sets the level
func InitGlobalLogger(writer io.Writer, levelStr string) error {
	log.SetOutput(DateTimeWriterProxy{writer: writer})
	log.SetFlags(0)

	GlobalLogsWriter = writer
	LogLevel = ToLevel(levelStr)
	if LogLevel == UNKNOWN && levelStr != "" {
		return fmt.Errorf("Unknown log level: %s", levelStr)
	}
	return nil
}

//SystemError is an error of the tool itself (panics, broken invariants) rather than of a storage
func SystemError(v ...interface{}) {
	Error(append([]interface{}{"System error:"}, v...)...)
}

func SystemErrorf(format string, v ...interface{}) {
	SystemError(fmt.Sprintf(format, v...))
}

func Error(v ...interface{})                 { write(ERROR, v...) }
func Errorf(format string, v ...interface{}) { write(ERROR, fmt.Sprintf(format, v...)) }
func Warn(v ...interface{})                  { write(WARN, v...) }
func Warnf(format string, v ...interface{})  { write(WARN, fmt.Sprintf(format, v...)) }
func Info(v ...interface{})                  { write(INFO, v...) }
func Infof(format string, v ...interface{})  { write(INFO, fmt.Sprintf(format, v...)) }
func Debug(v ...interface{})                 { write(DEBUG, v...) }
func Debugf(format string, v ...interface{}) { write(DEBUG, fmt.Sprintf(format, v...)) }

//Fatal writes the record and exits with code 1
func Fatal(v ...interface{}) {
	write(FATAL, v...)
	os.Exit(1)
}

func Fatalf(format string, v ...interface{}) {
	Fatal(fmt.Sprintf(format, v...))
}

func write(level Level, values ...interface{}) {
	if LogLevel > level {
		return
	}

	parts := []string{prefixes[level]}
	for _, v := range values {
		parts = append(parts, fmt.Sprint(v))
	}
	line := strings.Join(parts, " ")
	//error records are red
	if level >= ERROR {
		line = color.Red.Sprint(line)
	}
	log.Println(line)
}
