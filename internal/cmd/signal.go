package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/AdguardTeam/dhcpudp/internal/aghos"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/AdguardTeam/golibs/osutil"
	"github.com/AdguardTeam/golibs/service"
)

// signalHandler processes incoming signals.  It refreshes the service on
// reconfiguration signals and shuts it down on shutdown signals.
type signalHandler struct {
	// logger is used to log the operation of the signal handler.
	logger *slog.Logger

	// svc is refreshed and shut down upon the corresponding signals.
	svc refreshableService

	// signals receives incoming signals.
	signals chan os.Signal
}

// refreshableService is a service that can be refreshed.
type refreshableService interface {
	service.Interface
	service.Refresher
}

// newSignalHandler returns a new properly initialized *signalHandler that
// listens for the shutdown and reconfiguration signals.
func newSignalHandler(logger *slog.Logger, svc refreshableService) (h *signalHandler) {
	h = &signalHandler{
		logger:  logger,
		svc:     svc,
		signals: make(chan os.Signal, 1),
	}

	aghos.NotifyShutdownSignal(h.signals)
	aghos.NotifyReconfigureSignal(h.signals)

	return h
}

// handle processes incoming signals.  It blocks until a shutdown signal is
// received and returns the exit status.
func (h *signalHandler) handle(ctx context.Context) (status int) {
	defer slogutil.RecoverAndExit(ctx, h.logger, osutil.ExitCodeFailure)

	for sig := range h.signals {
		h.logger.InfoContext(ctx, "received signal", "signal", sig)

		if aghos.IsReconfigureSignal(sig) {
			h.refresh(ctx)
		} else if aghos.IsShutdownSignal(sig) {
			return h.shutdown(ctx)
		}
	}

	// Shouldn't happen, since h.signals is never closed.
	return osutil.ExitCodeFailure
}

// refresh refreshes the service.  Errors are only logged, since the previous
// configuration stays in effect.
func (h *signalHandler) refresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err := h.svc.Refresh(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "refreshing", slogutil.KeyError, err)
	}
}

// shutdown gracefully shuts the service down and returns the exit status.
func (h *signalHandler) shutdown(ctx context.Context) (status int) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	h.logger.InfoContext(ctx, "shutting down services")

	err := h.svc.Shutdown(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "shutting down", slogutil.KeyError, err)

		return osutil.ExitCodeFailure
	}

	return osutil.ExitCodeSuccess
}
