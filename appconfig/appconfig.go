package appconfig

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jitsucom/snapshotview/logging"
	"github.com/spf13/viper"
)

const defaultServerName = "snapshotview"

// AppConfig is a main Application Global Configuration
type AppConfig struct {
	ServerName string
	Authority  string

	GlobalDDLLogsWriter   io.Writer
	GlobalQueryLogsWriter io.Writer

	closeMe []io.Closer
}

var Instance *AppConfig

func setDefaultParams() {
	viper.SetDefault("server.name", defaultServerName)
	viper.SetDefault("server.port", "8001")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.path", "")

	viper.SetDefault("sql_debug_log.ddl.enabled", true)
	viper.SetDefault("sql_debug_log.ddl.path", logging.GlobalType)
	viper.SetDefault("sql_debug_log.ddl.rotation_min", "1440")
	viper.SetDefault("sql_debug_log.ddl.max_backups", "365") //1 year = 1440 min * 365
	viper.SetDefault("sql_debug_log.queries.enabled", false)
	viper.SetDefault("sql_debug_log.queries.path", "./logs")
	viper.SetDefault("sql_debug_log.queries.rotation_min", "60")
	viper.SetDefault("sql_debug_log.queries.max_backups", "7320") //30 days = 60 min * 7320

	viper.SetDefault("storage.type", "postgres")
	viper.SetDefault("locks.type", NoLocksType)
	viper.SetDefault("locks.timeout_sec", 60)
	viper.SetDefault("locks.redis.port", 6379)
	viper.SetDefault("metrics.enabled", false)
}

//Init reads configuration file (if configPath isn't empty) and environment variables (e.g. STORAGE_TYPE for storage.type),
//initializes the global logger and SQL debug writers
func Init(configPath string) error {
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaultParams()

	if configPath != "" {
		viper.SetConfigFile(configPath)
		if err := viper.ReadInConfig(); err != nil {
			return err
		}
	}

	serverName := viper.GetString("server.name")
	globalLoggerConfig := logging.Config{
		FileName:    serverName + "-main",
		FileDir:     viper.GetString("log.path"),
		RotationMin: viper.GetInt64("log.rotation_min"),
		MaxBackups:  viper.GetInt("log.max_backups")}

	//Global logger writes into a rolling file if log.path is configured, into os.Stdout otherwise
	var appConfig AppConfig
	if globalLoggerConfig.FileDir != "" && globalLoggerConfig.FileDir != logging.GlobalType {
		fileWriter := logging.NewRollingWriter(&globalLoggerConfig)
		appConfig.ScheduleClosing(fileWriter)
		logging.GlobalLogsWriter = io.MultiWriter(fileWriter, os.Stdout)
	} else {
		logging.GlobalLogsWriter = os.Stdout
	}
	if err := logging.InitGlobalLogger(logging.GlobalLogsWriter, viper.GetString("log.level")); err != nil {
		return err
	}

	if configPath != "" {
		logging.Infof("📂 Using config file: %q", configPath)
	}

	appConfig.ServerName = serverName
	appConfig.Authority = "0.0.0.0:" + viper.GetString("server.port")

	sqlDebugConfig := &logging.SQLDebugConfig{DDL: &logging.LoggerConfig{}, Queries: &logging.LoggerConfig{}}
	if err := decode(leafSettings("sql_debug_log.ddl", "enabled", "path", "rotation_min", "max_backups"), sqlDebugConfig.DDL); err != nil {
		return fmt.Errorf("Error parsing sql_debug_log.ddl config: %v", err)
	}
	if err := decode(leafSettings("sql_debug_log.queries", "enabled", "path", "rotation_min", "max_backups"), sqlDebugConfig.Queries); err != nil {
		return fmt.Errorf("Error parsing sql_debug_log.queries config: %v", err)
	}

	// SQL DDL debug writer
	if sqlDebugConfig.DDL.Enabled {
		appConfig.GlobalDDLLogsWriter = appConfig.createDebugWriter(serverName+"-"+logging.DDLLogerType, sqlDebugConfig.DDL)
	}

	// SQL queries debug writer
	if sqlDebugConfig.Queries.Enabled {
		appConfig.GlobalQueryLogsWriter = appConfig.createDebugWriter(serverName+"-"+logging.QueriesLoggerType, sqlDebugConfig.Queries)
	}

	Instance = &appConfig
	return nil
}

func (a *AppConfig) createDebugWriter(fileName string, config *logging.LoggerConfig) io.Writer {
	writer := logging.CreateLogWriter(&logging.Config{
		FileName:    fileName,
		FileDir:     config.Path,
		RotationMin: config.RotationMin,
		MaxBackups:  config.MaxBackups})
	if closer, ok := writer.(io.Closer); ok && writer != logging.GlobalLogsWriter {
		a.ScheduleClosing(closer)
	}

	return writer
}

//QueryLogger returns logger writing DDL and queries of the storage identified by identifier
func (a *AppConfig) QueryLogger(identifier string) *logging.QueryLogger {
	return logging.NewQueryLogger(identifier, a.GlobalDDLLogsWriter, a.GlobalQueryLogsWriter)
}

func (a *AppConfig) ScheduleClosing(c io.Closer) {
	a.closeMe = append(a.closeMe, c)
}

//Close closes scheduled closers in reverse order
func (a *AppConfig) Close() error {
	for i := len(a.closeMe) - 1; i >= 0; i-- {
		if err := a.closeMe[i].Close(); err != nil {
			logging.Error(err)
		}
	}
	a.closeMe = nil

	return nil
}
