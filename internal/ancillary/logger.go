// Package ancillary collects the small external collaborators the rest of
// trustcore leans on: structured logging, timestamps, a random byte source,
// and a fixed-width digit encoder. None of it carries protocol or storage
// invariants; it exists only to be called from the packages that do.
package ancillary

import (
	"fmt"

	"k8s.io/klog/v2"
)

// Logger tags every line it emits with a component name, mirroring the
// teacher's `var log = logging.Logger("storethehash/<component>")` per-file
// logger convention.
type Logger struct {
	component string
}

// NewLogger returns a Logger tagged with component.
func NewLogger(component string) Logger {
	return Logger{component: component}
}

func (l Logger) tag(op string) string {
	return fmt.Sprintf("%s: %s", l.component, op)
}

// Info logs a structured informational line.
func (l Logger) Info(op string, keysAndValues ...any) {
	klog.InfoS(l.tag(op), keysAndValues...)
}

// Warn logs a structured warning line. Warnings are not sticky errors; see
// table.Table.Update's "updated elsewhere" warning for a caller that relies
// on that distinction.
func (l Logger) Warn(op string, keysAndValues ...any) {
	klog.InfoS("WARN "+l.tag(op), keysAndValues...)
}

// Error logs a structured error line tagged with the failing operation, per
// the error-handling design's "single line tagged with component + operation"
// requirement.
func (l Logger) Error(err error, op string, keysAndValues ...any) {
	klog.ErrorS(err, l.tag(op), keysAndValues...)
}
