package logging

import "strings"

//Level is a global logger severity. Records below LogLevel are skipped
type Level int

const (
	UNKNOWN Level = iota
	DEBUG
	INFO
	WARN
	ERROR
	FATAL
)

var levelNames = map[Level]string{
	UNKNOWN: "unknown",
	DEBUG:   "debug",
	INFO:    "info",
	WARN:    "warn",
	ERROR:   "error",
	FATAL:   "fatal",
}

func (l Level) String() string {
	return levelNames[l]
}

//ToLevel parses log.level value. Unknown values are UNKNOWN
func ToLevel(levelStr string) Level {
	name := strings.ToLower(strings.TrimSpace(levelStr))
	for level, levelName := range levelNames {
		if level != UNKNOWN && levelName == name {
			return level
		}
	}

	return UNKNOWN
}
