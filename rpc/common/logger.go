package common

import (
	"fmt"
	"github.com/lni/dragonboat/v4/logger"
	"log"
	"os"
	"strings"
	"sync"
)

// --------------------------------------------------------------------------
// Custom Logger (implements dragonboat's logger.ILogger)
// --------------------------------------------------------------------------

// caplayLogger implements the ILogger interface with custom formatting
type caplayLogger struct {
	name   string
	level  logger.LogLevel
	logger *log.Logger
}

func (l *caplayLogger) SetLevel(level logger.LogLevel) {
	l.level = level
}

func (l *caplayLogger) Debugf(format string, args ...interface{}) {
	if l.level >= logger.DEBUG {
		l.log("DEBUG", format, args...)
	}
}

func (l *caplayLogger) Infof(format string, args ...interface{}) {
	if l.level >= logger.INFO {
		l.log("INFO", format, args...)
	}
}

func (l *caplayLogger) Warningf(format string, args ...interface{}) {
	if l.level >= logger.WARNING {
		l.log("WARN", format, args...)
	}
}

func (l *caplayLogger) Errorf(format string, args ...interface{}) {
	if l.level >= logger.ERROR {
		l.log("ERROR", format, args...)
	}
}

func (l *caplayLogger) Panicf(format string, args ...interface{}) {
	if l.level >= logger.CRITICAL {
		panic(fmt.Sprintf(format, args...))
	}
}

// log formats and writes a log message
func (l *caplayLogger) log(levelStr string, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	l.logger.Printf("%-5s | %-15s | %s", levelStr, l.name, message)
}

// --------------------------------------------------------------------------
// Logger Factory
// --------------------------------------------------------------------------

// CreateLogger is the logger.Factory installed by InitLoggers
func CreateLogger(pkgName string) logger.ILogger {
	// stderr keeps command output on stdout clean
	return &caplayLogger{
		name:   pkgName,
		level:  logger.INFO,
		logger: log.New(os.Stderr, "", log.Ldate|log.Ltime),
	}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// ParseLogLevel converts a string level to logger.LogLevel
func ParseLogLevel(level string) (logger.LogLevel, error) {
	switch strings.ToLower(level) {
	case "debug":
		return logger.DEBUG, nil
	case "info":
		return logger.INFO, nil
	case "warning", "warn":
		return logger.WARNING, nil
	case "error":
		return logger.ERROR, nil
	default:
		return logger.INFO, fmt.Errorf("invalid log level: %s. must be one of debug, info, warn, error", level)
	}
}

// --------------------------------------------------------------------------
// Logger initialization
// --------------------------------------------------------------------------

// LoggerNames lists every named logger used by caplay
var LoggerNames = []string{
	"store",
	"persist",
	"native",
	"events",
	"binding",
	"platform",
	"bridge",
	"fetch",
	"runtime",
	"rpc",
	"transport/rpc",
	"shell",
}

var factoryOnce sync.Once

// InitLoggers installs the custom logger factory and sets the level of all caplay loggers.
//
// Note: dragonboat's logger registry hands out the same instance for a name,
// so package level `var Logger = logger.GetLogger("store")` declarations pick up the level.
func InitLoggers(level string) error {
	lvl, err := ParseLogLevel(level)
	if err != nil {
		return err
	}

	factoryOnce.Do(func() {
		logger.SetLoggerFactory(CreateLogger)
	})

	for _, name := range LoggerNames {
		logger.GetLogger(name).SetLevel(lvl)
	}
	return nil
}
