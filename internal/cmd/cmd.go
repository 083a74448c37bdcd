// Package cmd is the dhcpudp entry point.  It assembles the configuration file
// manager, sets up signal processing logic, and so on.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/AdguardTeam/dhcpudp/internal/aghos"
	"github.com/AdguardTeam/dhcpudp/internal/configmgr"
	"github.com/AdguardTeam/dhcpudp/internal/version"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/AdguardTeam/golibs/osutil"
)

// defaultTimeout is the timeout used for starting, refreshing, and stopping the
// services.
const defaultTimeout = 5 * time.Second

// Main is the entry point of dhcpudp.
func Main() {
	ctx := context.Background()

	cmdName := os.Args[0]
	opts, err := parseOptions(cmdName, os.Args[1:], os.Stderr)
	exitCode, needExit := processOptions(opts, cmdName, err, os.Stdout)
	if needExit {
		os.Exit(exitCode)
	}

	ls, err := configmgr.ReadLogSettings(opts.confFile)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)

		os.Exit(osutil.ExitCodeFailure)
	}

	applyLogOptions(ls, opts)

	baseLogger, logCloser := newBaseLogger(ls)
	logger := baseLogger.With(slogutil.KeyPrefix, "cmd")

	defer slogutil.RecoverAndExit(ctx, logger, osutil.ExitCodeFailure)

	logger.InfoContext(ctx, "starting dhcpudp", "version", version.Version(), "pid", os.Getpid())

	warnIfNotAdmin(ctx, logger)

	startCtx, startCancel := context.WithTimeout(ctx, defaultTimeout)

	svc, err := newServiceMgr(startCtx, &serviceMgrConfig{
		confMgrConf: &configmgr.Config{
			BaseLogger: baseLogger,
			Logger:     baseLogger.With(slogutil.KeyPrefix, "configmgr"),
			FileName:   opts.confFile,
		},
		logger:      logger,
		pidFilePath: opts.pidFile,
	})
	check(err)

	err = svc.Start(startCtx)
	startCancel()
	check(err)

	sigHdlr := newSignalHandler(baseLogger.With(slogutil.KeyPrefix, "sighdlr"), svc)
	status := sigHdlr.handle(ctx)

	logger.InfoContext(ctx, "exiting", "status", status)

	if logCloser != nil {
		err = logCloser.Close()
		if err != nil {
			status = osutil.ExitCodeFailure
			_, _ = fmt.Fprintf(os.Stderr, "closing log: %s\n", err)
		}
	}

	os.Exit(status)
}

// warnIfNotAdmin logs a warning if the process is not privileged, since the
// DHCP server port is privileged.
func warnIfNotAdmin(ctx context.Context, logger *slog.Logger) {
	ok, err := aghos.HaveAdminRights()
	switch {
	case err != nil:
		logger.DebugContext(ctx, "checking admin rights", slogutil.KeyError, err)
	case !ok:
		logger.WarnContext(ctx, "not running with admin rights, binding the socket may fail")
	}
}

// check is a simple error-checking helper.  It must only be used within Main.
func check(err error) {
	if err != nil {
		panic(err)
	}
}
