// Package logs is the per-subsystem logging registry every other package
// gets its logger from, grounded on the teacher's
// kasparov/logger/logger.go (a BackendLog shared across subsystem tags,
// with a SetLogLevels convenience) generalized to this repository's
// component tags (KNEL, ASSM, STAK, VLDT, ...) and rewired onto the real
// btclog/logrotate libraries rather than the teacher's own hand-rolled
// Backend type.
package logs

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"
)

// BackendLog is the logging backend every subsystem logger in this
// repository is created from.
var BackendLog = btclog.NewBackend(os.Stdout)

var (
	loggers   = map[string]btclog.Logger{}
	rotatingW io.Writer
)

// RegisterSubSystem returns a new logger for subsystemTag, writing to
// BackendLog, and remembers it so SetLogLevels can reach every registered
// subsystem at once.
func RegisterSubSystem(subsystemTag string) btclog.Logger {
	logger := BackendLog.Logger(subsystemTag)
	if level := os.Getenv("LOGLEVEL"); level != "" {
		if parsed, ok := btclog.LevelFromString(level); ok {
			logger.SetLevel(parsed)
		}
	}
	loggers[subsystemTag] = logger
	return logger
}

// InitLogRotator attaches a rotating log file at logFile (8 rolls of
// 100MB each, the teacher's own AddLogFile defaults) to every subsystem
// already registered, and to any subsystem registered afterward.
func InitLogRotator(logFile string) error {
	r, err := rotator.New(logFile, 100*1024, false, 8)
	if err != nil {
		return fmt.Errorf("failed to create log rotator: %w", err)
	}
	rotatingW = r
	BackendLog = btclog.NewBackend(io.MultiWriter(os.Stdout, rotatingW))
	for tag := range loggers {
		loggers[tag] = BackendLog.Logger(tag)
	}
	return nil
}

// SetLogLevels sets the logging level for every registered subsystem,
// per the LOGLEVEL environment variable / -debuglevel flag convention.
func SetLogLevels(levelStr string) error {
	level, ok := btclog.LevelFromString(levelStr)
	if !ok {
		return fmt.Errorf("invalid log level %q", levelStr)
	}
	for _, logger := range loggers {
		logger.SetLevel(level)
	}
	return nil
}

// SetSubSystemLogLevel sets a single subsystem's level, per the
// "TAG=level" pairs -debuglevel accepts alongside a bare global level.
func SetSubSystemLogLevel(subsystemTag, levelStr string) error {
	logger, ok := loggers[subsystemTag]
	if !ok {
		return fmt.Errorf("unknown subsystem %q", subsystemTag)
	}
	level, ok := btclog.LevelFromString(levelStr)
	if !ok {
		return fmt.Errorf("invalid log level %q", levelStr)
	}
	logger.SetLevel(level)
	return nil
}

// ParseAndSetDebugLevels applies a -debuglevel value, either a bare
// level ("info") applied to every subsystem, or a comma-separated list
// of "TAG=level" pairs.
func ParseAndSetDebugLevels(debugLevel string) error {
	if !strings.Contains(debugLevel, "=") {
		return SetLogLevels(debugLevel)
	}
	for _, pair := range strings.Split(debugLevel, ",") {
		fields := strings.Split(pair, "=")
		if len(fields) != 2 {
			return fmt.Errorf("malformed debug level pair %q", pair)
		}
		if err := SetSubSystemLogLevel(fields[0], fields[1]); err != nil {
			return err
		}
	}
	return nil
}
