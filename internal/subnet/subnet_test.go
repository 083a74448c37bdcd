package subnet_test

import (
	"net/netip"
	"testing"

	"github.com/AdguardTeam/dhcpudp/internal/subnet"
	"github.com/AdguardTeam/golibs/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	testCases := []struct {
		name       string
		wantErrMsg string
		confs      []*subnet.NetworkConfig
	}{{
		name:       "valid",
		wantErrMsg: "",
		confs: []*subnet.NetworkConfig{{
			Name:    "office",
			Subnets: []netip.Prefix{netip.MustParsePrefix("10.0.0.0/24")},
		}, {
			Name: "lab",
			Subnets: []netip.Prefix{
				netip.MustParsePrefix("10.0.1.0/24"),
				netip.MustParsePrefix("192.168.0.0/16"),
			},
		}},
	}, {
		name:       "empty",
		wantErrMsg: "building subnet table: shared networks: empty value",
		confs:      nil,
	}, {
		name:       "nil_network",
		wantErrMsg: "building subnet table: shared network at index 0: no value",
		confs:      []*subnet.NetworkConfig{nil},
	}, {
		name: "no_name",
		wantErrMsg: "building subnet table: shared network at index 0: " +
			"name: empty value",
		confs: []*subnet.NetworkConfig{{
			Subnets: []netip.Prefix{netip.MustParsePrefix("10.0.0.0/24")},
		}},
	}, {
		name:       "nil_subnets",
		wantErrMsg: "building subnet table: shared network at index 0: subnets: no value",
		confs: []*subnet.NetworkConfig{{
			Name: "office",
		}},
	}, {
		name:       "empty_subnets",
		wantErrMsg: "building subnet table: shared network at index 0: subnets: empty value",
		confs: []*subnet.NetworkConfig{{
			Name:    "office",
			Subnets: []netip.Prefix{},
		}},
	}, {
		name: "ipv6",
		wantErrMsg: "building subnet table: shared network at index 0: " +
			"subnets: at index 0: 2001:db8::/32: not an ipv4 prefix",
		confs: []*subnet.NetworkConfig{{
			Name:    "office",
			Subnets: []netip.Prefix{netip.MustParsePrefix("2001:db8::/32")},
		}},
	}, {
		name: "not_masked",
		wantErrMsg: "building subnet table: shared network at index 0: " +
			"subnets: at index 0: 10.0.0.1/24: host bits must be zero",
		confs: []*subnet.NetworkConfig{{
			Name:    "office",
			Subnets: []netip.Prefix{netip.MustParsePrefix("10.0.0.1/24")},
		}},
	}, {
		name:       "duplicate_name",
		wantErrMsg: `building subnet table: shared network "office": name: duplicated value`,
		confs: []*subnet.NetworkConfig{{
			Name:    "office",
			Subnets: []netip.Prefix{netip.MustParsePrefix("10.0.0.0/24")},
		}, {
			Name:    "office",
			Subnets: []netip.Prefix{netip.MustParsePrefix("10.0.1.0/24")},
		}},
	}, {
		name: "overlap",
		wantErrMsg: `building subnet table: shared network "lab": ` +
			`subnet 10.0.0.0/16 overlaps with office/10.0.0.0/24`,
		confs: []*subnet.NetworkConfig{{
			Name:    "office",
			Subnets: []netip.Prefix{netip.MustParsePrefix("10.0.0.0/24")},
		}, {
			Name:    "lab",
			Subnets: []netip.Prefix{netip.MustParsePrefix("10.0.0.0/16")},
		}},
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tbl, err := subnet.New(tc.confs)
			testutil.AssertErrorMsg(t, tc.wantErrMsg, err)
			if tc.wantErrMsg != "" {
				assert.Nil(t, tbl)
			}
		})
	}
}

func TestTable_Lookup(t *testing.T) {
	tbl, err := subnet.New([]*subnet.NetworkConfig{{
		Name:    "office",
		Subnets: []netip.Prefix{netip.MustParsePrefix("10.0.0.0/24")},
	}, {
		Name: "lab",
		Subnets: []netip.Prefix{
			netip.MustParsePrefix("10.0.1.0/24"),
			netip.MustParsePrefix("172.16.0.0/12"),
		},
	}})
	require.NoError(t, err)

	testCases := []struct {
		addr        netip.Addr
		name        string
		wantNetwork string
		wantPrefix  netip.Prefix
		wantOK      bool
	}{{
		addr:        netip.MustParseAddr("10.0.0.1"),
		name:        "office",
		wantNetwork: "office",
		wantPrefix:  netip.MustParsePrefix("10.0.0.0/24"),
		wantOK:      true,
	}, {
		addr:        netip.MustParseAddr("172.20.1.1"),
		name:        "lab_second",
		wantNetwork: "lab",
		wantPrefix:  netip.MustParsePrefix("172.16.0.0/12"),
		wantOK:      true,
	}, {
		addr:        netip.MustParseAddr("::ffff:10.0.1.5"),
		name:        "mapped",
		wantNetwork: "",
		wantPrefix:  netip.Prefix{},
		wantOK:      false,
	}, {
		addr:        netip.MustParseAddr("192.168.1.1"),
		name:        "unknown",
		wantNetwork: "",
		wantPrefix:  netip.Prefix{},
		wantOK:      false,
	}, {
		addr:        netip.Addr{},
		name:        "invalid",
		wantNetwork: "",
		wantPrefix:  netip.Prefix{},
		wantOK:      false,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, ok := tbl.Lookup(tc.addr)
			require.Equal(t, tc.wantOK, ok)

			if !ok {
				assert.Nil(t, s)

				return
			}

			assert.Equal(t, tc.wantPrefix, s.Prefix)
			assert.Equal(t, tc.wantNetwork, s.Network.Name)
			assert.Contains(t, s.Network.Subnets, s)
		})
	}

	networks := tbl.Networks()
	require.Len(t, networks, 2)

	assert.Equal(t, "office", networks[0].Name)
	assert.Equal(t, "lab", networks[1].Name)
}
