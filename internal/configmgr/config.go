package configmgr

import (
	"fmt"
	"net/netip"
	"time"

	"github.com/AdguardTeam/dhcpudp/internal/subnet"
	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/timeutil"
	"github.com/AdguardTeam/golibs/validate"
	"github.com/insomniacslk/dhcp/dhcpv4"
)

// config is the top-level on-disk configuration structure.
type config struct {
	Listen         *listenConfig          `yaml:"listen"`
	Log            *logConfig             `yaml:"log"`
	Metrics        *metricsConfig         `yaml:"metrics"`
	SharedNetworks []*sharedNetworkConfig `yaml:"shared_networks"`
	SchemaVersion  int                    `yaml:"schema_version"`
}

// currentSchemaVersion is the only supported version of the configuration
// schema.
const currentSchemaVersion = 1

// SchemaVersion is the version of the configuration schema supported by this
// build.
const SchemaVersion uint = currentSchemaVersion

const errNoConf errors.Error = "configuration not found"

// newDefaultConfig returns the configuration with the default values, which
// the file overrides.
func newDefaultConfig() (c *config) {
	return &config{
		Listen: &listenConfig{
			Address:  netip.IPv4Unspecified(),
			Resolver: resolverSystem,
			Port:     dhcpv4.ServerPort,
			Lockdown: false,
		},
		Log: &logConfig{
			File:       logFileStdout,
			MaxSize:    100,
			MaxBackups: 0,
			MaxAge:     3,
			Compress:   false,
			Verbose:    false,
		},
		Metrics: &metricsConfig{
			Address: netip.MustParseAddrPort("127.0.0.1:9167"),
			Timeout: timeutil.Duration(10 * time.Second),
			Enabled: false,
		},
		SchemaVersion: currentSchemaVersion,
	}
}

// validate returns an error if the configuration structure is invalid.
func (c *config) validate() (err error) {
	if c == nil {
		return errNoConf
	}

	if c.SchemaVersion != currentSchemaVersion {
		return fmt.Errorf(
			"schema_version: %w: got %d, want %d",
			errors.ErrBadEnumValue,
			c.SchemaVersion,
			currentSchemaVersion,
		)
	}

	// Keep this in the same order as the fields in the config.
	validators := []struct {
		validate func() (err error)
		name     string
	}{{
		validate: c.Listen.validate,
		name:     "listen",
	}, {
		validate: c.Log.validate,
		name:     "log",
	}, {
		validate: c.Metrics.validate,
		name:     "metrics",
	}, {
		validate: c.validateSharedNetworks,
		name:     "shared_networks",
	}}

	for _, v := range validators {
		err = v.validate()
		if err != nil {
			return fmt.Errorf("%s: %w", v.name, err)
		}
	}

	return nil
}

// validateSharedNetworks returns an error if the shared networks can't form a
// subnet table.
func (c *config) validateSharedNetworks() (err error) {
	_, err = c.subnetTable()

	return err
}

// subnetTable builds the subnet table from the shared networks.
func (c *config) subnetTable() (t *subnet.Table, err error) {
	confs := make([]*subnet.NetworkConfig, 0, len(c.SharedNetworks))
	for _, n := range c.SharedNetworks {
		var nc *subnet.NetworkConfig
		if n != nil {
			nc = &subnet.NetworkConfig{
				Name:    n.Name,
				Subnets: n.Subnets,
			}
		}

		confs = append(confs, nc)
	}

	return subnet.New(confs)
}

// Valid resolver names.
const (
	resolverNetlink = "netlink"
	resolverSystem  = "system"
)

// listenConfig is the on-disk configuration of the server socket.
type listenConfig struct {
	// Address is the address to bind to.
	Address netip.Addr `yaml:"address"`

	// Resolver is the name of the interface resolver.
	Resolver string `yaml:"resolver"`

	// Port is the DHCP server port.
	Port uint16 `yaml:"port"`

	// Lockdown restricts the socket operations where supported.
	Lockdown bool `yaml:"lockdown"`
}

// validate returns an error if the listen configuration is invalid.
func (c *listenConfig) validate() (err error) {
	if c == nil {
		return errNoConf
	}

	var errs []error
	if !c.Address.Is4() {
		errs = append(errs, fmt.Errorf("address: %q: must be ipv4", c.Address))
	}

	if c.Port == 0 {
		errs = append(errs, newErrNotPositive("port", c.Port))
	}

	switch c.Resolver {
	case resolverNetlink, resolverSystem:
		// Go on.
	default:
		errs = append(errs, fmt.Errorf("resolver: %w: %q", errors.ErrBadEnumValue, c.Resolver))
	}

	return errors.Join(errs...)
}

// Special values of the log file.
const (
	logFileStderr = "stderr"
	logFileStdout = "stdout"
)

// logConfig is the on-disk logging configuration.
type logConfig struct {
	// File is the path to the log file or one of the special values:
	// "stdout" or "stderr".
	File string `yaml:"file"`

	// MaxSize is the maximum size of the log file in megabytes before it gets
	// rotated.
	MaxSize int `yaml:"max_size"`

	// MaxBackups is the maximum number of old log files to retain.
	MaxBackups int `yaml:"max_backups"`

	// MaxAge is the maximum number of days to retain old log files.
	MaxAge int `yaml:"max_age"`

	// Compress determines if the rotated log files should be compressed.
	Compress bool `yaml:"compress"`

	// Verbose enables debug logging.
	Verbose bool `yaml:"verbose"`
}

// validate returns an error if the logging configuration is invalid.
func (c *logConfig) validate() (err error) {
	if c == nil {
		return errNoConf
	}

	return errors.Join(
		validate.NotEmpty("file", c.File),
		validate.NotNegative("max_size", c.MaxSize),
		validate.NotNegative("max_backups", c.MaxBackups),
		validate.NotNegative("max_age", c.MaxAge),
	)
}

// metricsConfig is the on-disk configuration of the metrics HTTP server.
type metricsConfig struct {
	// Address is the address to serve the metrics on.
	Address netip.AddrPort `yaml:"address"`

	// Timeout is the timeout for reading and writing HTTP requests.
	Timeout timeutil.Duration `yaml:"timeout"`

	// Enabled determines if the metrics are collected and served.
	Enabled bool `yaml:"enabled"`
}

// validate returns an error if the metrics configuration is invalid.
func (c *metricsConfig) validate() (err error) {
	switch {
	case c == nil:
		return errNoConf
	case !c.Enabled:
		return nil
	case !c.Address.IsValid():
		return fmt.Errorf("address: %w", errors.ErrNoValue)
	case c.Timeout <= 0:
		return newErrNotPositive("timeout", c.Timeout)
	default:
		return nil
	}
}

// sharedNetworkConfig is the on-disk configuration of a shared network.
type sharedNetworkConfig struct {
	// Name is the unique name of the shared network.
	Name string `yaml:"name"`

	// Subnets are the IPv4 subnets of the network.
	Subnets []netip.Prefix `yaml:"subnets"`
}
