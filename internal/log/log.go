// Package log is the process logger. It forwards to the standard library
// logger and can rotate its output into a file.
package log

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"
)

var verbose atomic.Bool

// SetVerbose enables Debugf output
func SetVerbose(v bool) {
	verbose.Store(v)
}

// SetFile sends all log output to a rotating file at path
func SetFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	log.SetOutput(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 2,
		MaxAge:     28, // days
		Compress:   true,
	})
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	return nil
}

// Warnf logs with a [WARN] prefix
func Warnf(format string, v ...interface{}) {
	log.Output(2, "[WARN] "+fmt.Sprintf(format, v...))
}

// Debugf logs with a [DEBUG] prefix when verbose output is enabled
func Debugf(format string, v ...interface{}) {
	if verbose.Load() {
		log.Output(2, "[DEBUG] "+fmt.Sprintf(format, v...))
	}
}

