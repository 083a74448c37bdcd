package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/AdguardTeam/dhcpudp/internal/agh"
	"github.com/AdguardTeam/dhcpudp/internal/aghos"
	"github.com/AdguardTeam/dhcpudp/internal/configmgr"
	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/AdguardTeam/golibs/service"
	"github.com/google/renameio/v2/maybe"
)

// serviceMgr manages dhcpudp services.
type serviceMgr struct {
	confMgr     *configmgr.Manager
	logger      *slog.Logger
	pidFilePath string
	services    []agh.Service
}

// serviceMgrConfig contains service manager configuration parameters.
type serviceMgrConfig struct {
	// confMgrConf is the configuration manager config, it must not be nil.
	confMgrConf *configmgr.Config

	// logger is the logger used to log services activity, it must not be nil.
	logger *slog.Logger

	// pidFilePath is the path to the file where to store the PID, if any.
	pidFilePath string
}

// newServiceMgr creates a new *serviceMgr.
func newServiceMgr(ctx context.Context, conf *serviceMgrConfig) (s *serviceMgr, err error) {
	confMgr, err := configmgr.New(ctx, conf.confMgrConf)
	if err != nil {
		return nil, fmt.Errorf("creating config manager: %w", err)
	}

	return &serviceMgr{
		confMgr:     confMgr,
		logger:      conf.logger,
		pidFilePath: conf.pidFilePath,
		services:    confMgr.Services(),
	}, nil
}

// type check
var _ service.Interface = (*serviceMgr)(nil)

// Start implements the [service.Interface] interface for *serviceMgr.  It
// starts the services in order and stops at the first error.
func (s *serviceMgr) Start(ctx context.Context) (err error) {
	for i, svc := range s.services {
		err = svc.Start(ctx)
		if err != nil {
			return fmt.Errorf("starting service at index %d: %w", i, err)
		}
	}

	s.writePID(ctx)

	return nil
}

// writePID writes the PID to the file.  Any errors are reported to log.
func (s *serviceMgr) writePID(ctx context.Context) {
	if s.pidFilePath == "" {
		return
	}

	pid := os.Getpid()
	data := strconv.AppendInt(nil, int64(pid), 10)
	data = append(data, '\n')

	err := maybe.WriteFile(s.pidFilePath, data, aghos.DefaultPermFile)
	if err != nil {
		s.logger.ErrorContext(ctx, "writing pidfile", slogutil.KeyError, err)

		return
	}

	s.logger.DebugContext(ctx, "wrote pid", "file", s.pidFilePath, "pid", pid)
}

// Shutdown implements the [service.Interface] interface for *serviceMgr.  It
// shuts the services down in reverse order.
func (s *serviceMgr) Shutdown(ctx context.Context) (err error) {
	var errs []error
	for i := len(s.services) - 1; i >= 0; i-- {
		err = s.services[i].Shutdown(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("shutting down service at index %d: %w", i, err))
		}
	}

	s.removePID(ctx)

	return errors.Join(errs...)
}

// removePID removes the PID file.  Any errors are reported to log.
func (s *serviceMgr) removePID(ctx context.Context) {
	if s.pidFilePath == "" {
		return
	}

	err := os.Remove(s.pidFilePath)
	if err != nil {
		s.logger.ErrorContext(ctx, "removing pidfile", slogutil.KeyError, err)

		return
	}

	s.logger.DebugContext(ctx, "removed pidfile", "file", s.pidFilePath)
}

// type check
var _ service.Refresher = (*serviceMgr)(nil)

// Refresh implements the [service.Refresher] interface for *serviceMgr.  The
// services keep running while the configuration is reloaded.
func (s *serviceMgr) Refresh(ctx context.Context) (err error) {
	s.logger.InfoContext(ctx, "reconfiguring started")

	err = s.confMgr.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("refreshing config manager: %w", err)
	}

	s.logger.InfoContext(ctx, "reconfiguring finished")

	return nil
}
