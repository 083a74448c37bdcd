// Package aghtest contains utilities for testing.
package aghtest

import (
	"io"
	"log/slog"
	"time"

	"github.com/AdguardTeam/golibs/logutil/slogutil"
)

// Timeout is the common timeout for tests.
const Timeout = 1 * time.Second

// NewLogger returns a debug-level logger writing into w without timestamps, so
// that tests can look for entries in the output.
func NewLogger(w io.Writer) (l *slog.Logger) {
	return slogutil.New(&slogutil.Config{
		Level:        slogutil.LevelDebug,
		Output:       w,
		Format:       slogutil.FormatDefault,
		AddTimestamp: false,
	})
}
