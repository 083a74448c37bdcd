package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"sync"
	"time"

	"github.com/AdguardTeam/dhcpudp/internal/agh"
	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PathMetrics is the path the collectors are exposed on.
const PathMetrics = "/metrics"

// ServerConfig is the configuration for a [Server].
type ServerConfig struct {
	// Logger is used to log the server operation.  It must not be nil.
	Logger *slog.Logger

	// Gatherer is the source of the exposed metrics.  It must not be nil.
	Gatherer prometheus.Gatherer

	// Address is the address to listen on.  The zero port means any free port.
	Address netip.AddrPort

	// Timeout is the timeout for reading and writing requests.  It must be
	// positive.
	Timeout time.Duration
}

// Server is the HTTP server exposing the Prometheus metrics.
type Server struct {
	// mu protects listener.
	mu       *sync.Mutex
	logger   *slog.Logger
	http     *http.Server
	listener net.Listener
	addr     netip.AddrPort
}

// type check
var _ agh.Service = (*Server)(nil)

// NewServer returns a new properly initialized *Server.  c must not be nil.
func NewServer(c *ServerConfig) (s *Server) {
	mux := http.NewServeMux()
	mux.Handle(PathMetrics, promhttp.HandlerFor(c.Gatherer, promhttp.HandlerOpts{
		ErrorLog: slog.NewLogLogger(c.Logger.Handler(), slog.LevelError),
	}))

	return &Server{
		mu:     &sync.Mutex{},
		logger: c.Logger,
		http: &http.Server{
			Handler:           mux,
			ReadTimeout:       c.Timeout,
			ReadHeaderTimeout: c.Timeout,
			WriteTimeout:      c.Timeout,
			IdleTimeout:       c.Timeout,
			ErrorLog:          slog.NewLogLogger(c.Logger.Handler(), slog.LevelError),
		},
		addr: c.Address,
	}
}

// Start implements the [agh.Service] interface for *Server.  It binds the
// listener and serves requests in a separate goroutine.
func (s *Server) Start(ctx context.Context) (err error) {
	lc := &net.ListenConfig{}
	l, err := lc.Listen(ctx, "tcp", s.addr.String())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.listener = l
	s.logger.InfoContext(ctx, "serving metrics", "addr", l.Addr())

	go s.serve(context.WithoutCancel(ctx), l)

	return nil
}

// serve serves HTTP requests on l until the server is shut down.
func (s *Server) serve(ctx context.Context, l net.Listener) {
	defer slogutil.RecoverAndLog(ctx, s.logger)

	err := s.http.Serve(l)
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return
	}

	s.logger.ErrorContext(ctx, "serving", slogutil.KeyError, err)
}

// Shutdown implements the [agh.Service] interface for *Server.
func (s *Server) Shutdown(ctx context.Context) (err error) {
	err = s.http.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("shutting down metrics server: %w", err)
	}

	return nil
}

// LocalAddr returns the address the server listens on, or nil if the server
// hasn't been started.
func (s *Server) LocalAddr() (addr net.Addr) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}

	return s.listener.Addr()
}
