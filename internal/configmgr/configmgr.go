// Package configmgr defines the dhcpudp on-disk configuration entities and
// configuration manager.
package configmgr

import (
	"context"
	"fmt"
	"log/slog"
	"net/netip"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AdguardTeam/dhcpudp/internal/agh"
	"github.com/AdguardTeam/dhcpudp/internal/dhcplog"
	"github.com/AdguardTeam/dhcpudp/internal/metrics"
	"github.com/AdguardTeam/dhcpudp/internal/subnet"
	"github.com/AdguardTeam/dhcpudp/internal/udpsock"
	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/AdguardTeam/golibs/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gopkg.in/yaml.v3"
)

// Manager assembles the services from the configuration file and reloads the
// shared networks on refresh.
type Manager struct {
	// baseLogger is used to create loggers for other entities.
	baseLogger *slog.Logger

	// logger is used for logging the operation of the configuration manager.
	logger *slog.Logger

	// table is the current subnet table.  It is replaced on refresh.
	table *atomic.Pointer[subnet.Table]

	// updMu makes sure that at most one refresh is performed at a time.  updMu
	// protects current.
	updMu *sync.Mutex

	// endpoint is the DHCP server socket.
	endpoint *udpsock.Endpoint

	// metricsSrv is the metrics HTTP server.  It is nil if metrics are
	// disabled.
	metricsSrv *metrics.Server

	// current is the current configuration.
	current *config

	// fileName is the name of the configuration file.
	fileName string
}

// Validate returns an error if the configuration file with the given name does
// not exist or is invalid.
func Validate(fileName string) (err error) {
	conf, err := read(fileName)
	if err != nil {
		// Don't wrap the error, because it's informative enough as is.
		return err
	}

	err = conf.validate()
	if err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	return nil
}

// Config contains the configuration parameters for the configuration manager.
type Config struct {
	// BaseLogger is used to create loggers for other entities.  It must not be
	// nil.
	BaseLogger *slog.Logger

	// Logger is used for logging the operation of the configuration manager.
	// It must not be nil.
	Logger *slog.Logger

	// FileName is the path to the configuration file.
	FileName string
}

// New creates a new *Manager from the file pointed to by c.FileName.  It binds
// the server socket, so any error is fatal.  c must not be nil.
func New(ctx context.Context, c *Config) (m *Manager, err error) {
	conf, err := read(c.FileName)
	if err != nil {
		// Don't wrap the error, because it's informative enough as is.
		return nil, err
	}

	err = conf.validate()
	if err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	m = &Manager{
		baseLogger: c.BaseLogger,
		logger:     c.Logger,
		table:      &atomic.Pointer[subnet.Table]{},
		updMu:      &sync.Mutex{},
		current:    conf,
		fileName:   c.FileName,
	}

	err = m.assemble(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("assembling services: %w", err)
	}

	return m, nil
}

// read reads and decodes configuration from the provided filename.  The
// omitted values are set to their defaults.
func read(fileName string) (conf *config, err error) {
	defer func() { err = errors.Annotate(err, "reading config: %w") }()

	conf = newDefaultConfig()
	f, err := os.Open(fileName)
	if err != nil {
		// Don't wrap the error, because it's informative enough as is.
		return nil, err
	}
	defer func() { err = errors.WithDeferred(err, f.Close()) }()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	err = dec.Decode(conf)
	if err != nil {
		// Don't wrap the error, because it's informative enough as is.
		return nil, err
	}

	return conf, nil
}

// assemble creates all services and puts them into the corresponding fields.
// The fields of conf must not be modified after calling assemble.
func (m *Manager) assemble(ctx context.Context, conf *config) (err error) {
	tbl, err := conf.subnetTable()
	if err != nil {
		// Should not happen, since the config is valid.
		return fmt.Errorf("building subnet table: %w", err)
	}

	m.table.Store(tbl)

	var (
		packetMetrics  udpsock.Metrics = udpsock.EmptyMetrics{}
		messageMetrics dhcplog.Metrics = dhcplog.EmptyMetrics{}
	)

	if conf.Metrics.Enabled {
		packetMetrics, messageMetrics, err = m.assembleMetrics(conf.Metrics)
		if err != nil {
			return fmt.Errorf("assembling metrics: %w", err)
		}
	}

	res, err := newResolver(conf.Listen.Resolver)
	if err != nil {
		return fmt.Errorf("creating resolver: %w", err)
	}

	lockdown, err := m.newLockdown(ctx, conf.Listen.Lockdown)
	if err != nil {
		return fmt.Errorf("creating lockdown: %w", err)
	}

	udpConf := &udpsock.Config{
		Logger: m.baseLogger.With(slogutil.KeyPrefix, "udpsock"),
		Processor: dhcplog.New(&dhcplog.Config{
			Logger:  m.baseLogger.With(slogutil.KeyPrefix, "dhcplog"),
			Metrics: messageMetrics,
		}),
		Locator:  m,
		Resolver: res,
		Lockdown: lockdown,
		Metrics:  packetMetrics,
		Address:  netip.AddrPortFrom(conf.Listen.Address, conf.Listen.Port),
	}

	err = udpConf.Validate()
	if err != nil {
		return fmt.Errorf("udpsock config: %w", err)
	}

	m.endpoint, err = udpsock.New(ctx, udpConf)
	if err != nil {
		return fmt.Errorf("creating endpoint: %w", err)
	}

	return nil
}

// assembleMetrics creates the collectors and the metrics HTTP server.  c must
// be enabled.
func (m *Manager) assembleMetrics(
	c *metricsConfig,
) (pm udpsock.Metrics, mm dhcplog.Metrics, err error) {
	reg := prometheus.NewRegistry()
	err = reg.Register(collectors.NewGoCollector())
	if err != nil {
		return nil, nil, fmt.Errorf("registering go collector: %w", err)
	}

	err = reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if err != nil {
		return nil, nil, fmt.Errorf("registering process collector: %w", err)
	}

	packets, err := metrics.NewPackets(metrics.Namespace, reg)
	if err != nil {
		return nil, nil, err
	}

	messages, err := metrics.NewMessages(metrics.Namespace, reg)
	if err != nil {
		return nil, nil, err
	}

	m.metricsSrv = metrics.NewServer(&metrics.ServerConfig{
		Logger:   m.baseLogger.With(slogutil.KeyPrefix, "metrics"),
		Gatherer: reg,
		Address:  c.Address,
		Timeout:  time.Duration(c.Timeout),
	})

	return packets, messages, nil
}

// newResolver returns the interface resolver with the given name.  name must
// be valid.
func newResolver(name string) (r udpsock.InterfaceResolver, err error) {
	switch name {
	case resolverNetlink:
		return udpsock.NewNetlinkResolver()
	case resolverSystem:
		return udpsock.NewSystemResolver(), nil
	default:
		panic(fmt.Errorf("resolver: %w: %q", errors.ErrBadEnumValue, name))
	}
}

// newLockdown returns the socket lockdown.  It falls back to
// [udpsock.EmptyLockdown] where the lockdown isn't supported.
func (m *Manager) newLockdown(ctx context.Context, enabled bool) (l udpsock.Lockdown, err error) {
	if !enabled {
		return udpsock.EmptyLockdown{}, nil
	}

	l, err = udpsock.NewCapabilityLockdown()
	if errors.Is(err, errors.ErrUnsupported) {
		m.logger.WarnContext(ctx, "socket lockdown is not available", slogutil.KeyError, err)

		return udpsock.EmptyLockdown{}, nil
	}

	return l, err
}

// type check
var _ udpsock.Locator = (*Manager)(nil)

// Lookup implements the [udpsock.Locator] interface for *Manager.  It uses the
// current subnet table.
func (m *Manager) Lookup(addr netip.Addr) (s *subnet.Subnet, ok bool) {
	return m.table.Load().Lookup(addr)
}

// Services returns the services to start, in the order of starting.
func (m *Manager) Services() (svcs []agh.Service) {
	svcs = []agh.Service{m.endpoint}
	if m.metricsSrv != nil {
		svcs = append(svcs, m.metricsSrv)
	}

	return svcs
}

// type check
var _ service.Refresher = (*Manager)(nil)

// Refresh implements the [service.Refresher] interface for *Manager.  It
// rereads the configuration file and replaces the shared networks.  The socket
// is never rebound, so changes to other sections require a restart.
func (m *Manager) Refresh(ctx context.Context) (err error) {
	conf, err := read(m.fileName)
	if err != nil {
		// Don't wrap the error, because it's informative enough as is.
		return err
	}

	err = conf.validate()
	if err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	tbl, err := conf.subnetTable()
	if err != nil {
		// Should not happen, since the config is valid.
		return fmt.Errorf("building subnet table: %w", err)
	}

	m.updMu.Lock()
	defer m.updMu.Unlock()

	if *conf.Listen != *m.current.Listen ||
		*conf.Log != *m.current.Log ||
		*conf.Metrics != *m.current.Metrics {
		m.logger.WarnContext(ctx, "only shared_networks are reloaded, restart to apply other changes")
	}

	m.table.Store(tbl)
	m.current.SharedNetworks = conf.SharedNetworks

	m.logger.InfoContext(ctx, "shared networks reloaded", "num", len(tbl.Networks()))

	return nil
}
