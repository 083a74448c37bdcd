package cmd

import (
	"cmp"
	"io"
	"log/slog"
	"os"

	"github.com/AdguardTeam/dhcpudp/internal/configmgr"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"gopkg.in/natefinch/lumberjack.v2"
)

// applyLogOptions overrides the log settings from the configuration file with
// the command-line options.  ls and opts must not be nil.
func applyLogOptions(ls *configmgr.LogSettings, opts *options) {
	ls.File = cmp.Or(opts.logFile, ls.File)
	ls.Verbose = ls.Verbose || opts.verbose
}

// newBaseLogger returns the logger for the whole program.  closer is not nil
// if the output is a log file, which must be closed on exit.  ls must not be
// nil.
func newBaseLogger(ls *configmgr.LogSettings) (l *slog.Logger, closer io.Closer) {
	var output io.Writer
	switch ls.File {
	case configmgr.LogFileStdout:
		output = os.Stdout
	case configmgr.LogFileStderr:
		output = os.Stderr
	default:
		lj := &lumberjack.Logger{
			Filename:   ls.File,
			Compress:   ls.Compress,
			LocalTime:  true,
			MaxBackups: ls.MaxBackups,
			MaxSize:    ls.MaxSize,
			MaxAge:     ls.MaxAge,
		}

		output, closer = lj, lj
	}

	lvl := slog.LevelInfo
	if ls.Verbose {
		lvl = slogutil.LevelDebug
	}

	l = slogutil.New(&slogutil.Config{
		Output:       output,
		Format:       slogutil.FormatDefault,
		Level:        lvl,
		AddTimestamp: true,
	})

	return l, closer
}
