// Package subnet contains the table of network segments the DHCP server is
// authoritative for.
package subnet

import (
	"fmt"
	"net/netip"
	"slices"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/validate"
)

// SharedNetwork is a set of subnets served as a single physical network
// segment.
type SharedNetwork struct {
	// Name is the unique name of the shared network.
	Name string

	// Subnets are the subnets of the shared network in configuration order.
	Subnets []*Subnet
}

// Subnet is a single IPv4 subnet within a shared network.
type Subnet struct {
	// Network is the shared network this subnet belongs to.  It is never nil
	// for subnets created by [New].
	Network *SharedNetwork

	// Prefix is the masked IPv4 prefix of the subnet.
	Prefix netip.Prefix
}

// String implements the [fmt.Stringer] interface for *Subnet.
func (s *Subnet) String() (str string) {
	return fmt.Sprintf("%s/%s", s.Network.Name, s.Prefix)
}

// NetworkConfig is the configuration of a single shared network.
type NetworkConfig struct {
	// Name is the name of the shared network.  It must not be empty and must be
	// unique within a table.
	Name string

	// Subnets are the subnets of the network.  It must not be empty and must
	// contain only valid masked IPv4 prefixes.
	Subnets []netip.Prefix
}

// type check
var _ validate.Interface = (*NetworkConfig)(nil)

// Validate implements the [validate.Interface] interface for *NetworkConfig.
func (c *NetworkConfig) Validate() (err error) {
	if c == nil {
		return errors.ErrNoValue
	}

	errs := []error{
		validate.NotEmpty("name", c.Name),
		validate.NotEmptySlice("subnets", c.Subnets),
	}

	for i, p := range c.Subnets {
		switch {
		case !p.IsValid():
			errs = append(errs, fmt.Errorf("subnets: at index %d: %w", i, errors.ErrNoValue))
		case !p.Addr().Is4():
			errs = append(errs, fmt.Errorf("subnets: at index %d: %s: %w", i, p, errNotIPv4))
		case p.Masked() != p:
			errs = append(errs, fmt.Errorf("subnets: at index %d: %s: %w", i, p, errNotMasked))
		}
	}

	return errors.Join(errs...)
}

const (
	// errNotIPv4 is returned when a subnet prefix is not an IPv4 one.
	errNotIPv4 errors.Error = "not an ipv4 prefix"

	// errNotMasked is returned when a subnet prefix has host bits set.
	errNotMasked errors.Error = "host bits must be zero"
)

// Table maps IPv4 addresses to the subnets the server is authoritative for.
// It is immutable after creation and is safe for concurrent use.
type Table struct {
	networks []*SharedNetwork
	subnets  []*Subnet
}

// New returns a new table built from confs.  Names must be unique and subnets
// must not overlap, so that any address belongs to at most one subnet.
func New(confs []*NetworkConfig) (t *Table, err error) {
	defer func() { err = errors.Annotate(err, "building subnet table: %w") }()

	if len(confs) == 0 {
		return nil, fmt.Errorf("shared networks: %w", errors.ErrEmptyValue)
	}

	t = &Table{}
	names := make(map[string]struct{}, len(confs))
	for i, c := range confs {
		if err = c.Validate(); err != nil {
			return nil, fmt.Errorf("shared network at index %d: %w", i, err)
		}

		if _, ok := names[c.Name]; ok {
			return nil, fmt.Errorf("shared network %q: name: %w", c.Name, errors.ErrDuplicated)
		}

		names[c.Name] = struct{}{}

		err = t.add(c)
		if err != nil {
			return nil, fmt.Errorf("shared network %q: %w", c.Name, err)
		}
	}

	return t, nil
}

// add appends the shared network described by c to t.  c must be valid.
func (t *Table) add(c *NetworkConfig) (err error) {
	sn := &SharedNetwork{
		Name:    c.Name,
		Subnets: make([]*Subnet, 0, len(c.Subnets)),
	}

	for _, p := range c.Subnets {
		if prev, ok := t.overlapping(p); ok {
			return fmt.Errorf("subnet %s overlaps with %s", p, prev)
		}

		s := &Subnet{
			Network: sn,
			Prefix:  p,
		}
		sn.Subnets = append(sn.Subnets, s)
		t.subnets = append(t.subnets, s)
	}

	t.networks = append(t.networks, sn)

	return nil
}

// overlapping returns the first subnet in t overlapping with p, if any.
func (t *Table) overlapping(p netip.Prefix) (s *Subnet, ok bool) {
	i := slices.IndexFunc(t.subnets, func(s *Subnet) (o bool) {
		return s.Prefix.Overlaps(p)
	})
	if i < 0 {
		return nil, false
	}

	return t.subnets[i], true
}

// Lookup returns the subnet containing addr.  It returns false if the server
// isn't authoritative for addr.
func (t *Table) Lookup(addr netip.Addr) (s *Subnet, ok bool) {
	if !addr.Is4() {
		return nil, false
	}

	i := slices.IndexFunc(t.subnets, func(s *Subnet) (contains bool) {
		return s.Prefix.Contains(addr)
	})
	if i < 0 {
		return nil, false
	}

	return t.subnets[i], true
}

// Networks returns the shared networks of t in configuration order.  The
// returned slice must not be modified.
func (t *Table) Networks() (networks []*SharedNetwork) {
	return t.networks
}
