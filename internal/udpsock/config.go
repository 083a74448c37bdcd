package udpsock

import (
	"fmt"
	"log/slog"
	"net/netip"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/validate"
)

// Config is the configuration for an [Endpoint].
type Config struct {
	// Logger is used to log the endpoint operation.  It must not be nil.
	Logger *slog.Logger

	// Processor handles the received datagrams.  It must not be nil.
	Processor Processor

	// Locator finds the subnets of interface addresses.  It must not be nil.
	Locator Locator

	// Resolver resolves the receive interfaces of datagrams.  It must not be
	// nil.
	Resolver InterfaceResolver

	// Lockdown restricts the socket after binding.  It must not be nil, use
	// [EmptyLockdown] to leave the socket unrestricted.
	Lockdown Lockdown

	// Metrics collects the endpoint statistics.  It must not be nil.
	Metrics Metrics

	// Address is the address to bind to.  It must be a valid IPv4 address,
	// possibly unspecified.  The zero port means any free port.
	Address netip.AddrPort
}

// type check
var _ validate.Interface = (*Config)(nil)

// Validate implements the [validate.Interface] interface for *Config.
func (c *Config) Validate() (err error) {
	if c == nil {
		return errors.ErrNoValue
	}

	errs := []error{
		validate.NotNil("Logger", c.Logger),
		validate.NotNilInterface("Processor", c.Processor),
		validate.NotNilInterface("Locator", c.Locator),
		validate.NotNilInterface("Resolver", c.Resolver),
		validate.NotNilInterface("Lockdown", c.Lockdown),
		validate.NotNilInterface("Metrics", c.Metrics),
	}

	if addr := c.Address.Addr(); !addr.Is4() {
		errs = append(errs, fmt.Errorf("Address: %s: %w", c.Address, ErrNotIPv4))
	}

	return errors.Join(errs...)
}
