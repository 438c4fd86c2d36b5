// Package log wraps github.com/op/go-logging the way krd/main.go set it up:
// one named, leveled logger per binary/subsystem instead of a process-wide
// global.
package log

import (
	"os"

	"github.com/op/go-logging"
)

var format = logging.MustStringFormatter(
	`%{color}%{time:15:04:05.000} %{shortfunc} ▶ %{level:.4s}%{color:reset} %{message}`,
)

// SetupLogging returns a logger named module, leveled at level, writing to
// stderr with the teacher's coloured formatter.
func SetupLogging(module string, level logging.Level) *logging.Logger {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	backendFormatter := logging.NewBackendFormatter(backend, format)
	leveled := logging.AddModuleLevel(backendFormatter)
	leveled.SetLevel(level, module)
	logging.SetBackend(leveled)
	return logging.MustGetLogger(module)
}
