package configmgr_test

import (
	"context"
	"fmt"
	"io/fs"
	"net"
	"net/netip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/AdguardTeam/dhcpudp/internal/aghos"
	"github.com/AdguardTeam/dhcpudp/internal/configmgr"
	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/AdguardTeam/golibs/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTimeout is the common timeout for tests.
const testTimeout = 1 * time.Second

// writeConfig writes data into a configuration file in a temporary directory
// and returns its path.
func writeConfig(tb testing.TB, data string) (fileName string) {
	tb.Helper()

	fileName = filepath.Join(tb.TempDir(), "dhcpudp.yaml")
	rewriteConfig(tb, fileName, data)

	return fileName
}

// rewriteConfig replaces the contents of the configuration file.
func rewriteConfig(tb testing.TB, fileName, data string) {
	tb.Helper()

	err := os.WriteFile(fileName, []byte(data), aghos.DefaultPermFile)
	require.NoError(tb, err)
}

// freePort returns a UDP port on the loopback interface that is free at the
// moment.
func freePort(tb testing.TB) (port uint16) {
	tb.Helper()

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(tb, err)

	port = conn.LocalAddr().(*net.UDPAddr).AddrPort().Port()
	require.NoError(tb, conn.Close())

	return port
}

// newConfigData returns the valid configuration file contents with the server
// socket bound to port on the loopback interface and the given shared
// networks.
func newConfigData(port uint16, networks string) (data string) {
	return fmt.Sprintf(`schema_version: 1
listen:
  address: 127.0.0.1
  port: %d
  lockdown: true
  resolver: system
log:
  file: stderr
  verbose: true
metrics:
  enabled: true
  address: 127.0.0.1:0
  timeout: 1s
shared_networks:
%s`, port, networks)
}

const (
	// testNetworksOffice is the shared networks section with a single network
	// containing 10.0.0.0/24.
	testNetworksOffice = `  - name: office
    subnets:
      - 10.0.0.0/24
`

	// testNetworksLab is the shared networks section with a single network
	// containing 192.168.0.0/24.
	testNetworksLab = `  - name: lab
    subnets:
      - 192.168.0.0/24
`
)

func TestValidate(t *testing.T) {
	testCases := []struct {
		wantErr error
		name    string
		data    string
	}{{
		wantErr: nil,
		name:    "valid",
		data:    newConfigData(67, testNetworksOffice),
	}, {
		wantErr: nil,
		name:    "defaults",
		data:    "shared_networks:\n" + testNetworksOffice,
	}, {
		wantErr: errors.ErrBadEnumValue,
		name:    "bad_schema",
		data:    "schema_version: 2\nshared_networks:\n" + testNetworksOffice,
	}, {
		wantErr: errors.ErrNotPositive,
		name:    "zero_port",
		data:    "listen:\n  port: 0\nshared_networks:\n" + testNetworksOffice,
	}, {
		wantErr: errors.ErrBadEnumValue,
		name:    "bad_resolver",
		data:    "listen:\n  resolver: magic\nshared_networks:\n" + testNetworksOffice,
	}, {
		wantErr: errors.ErrNotPositive,
		name:    "zero_metrics_timeout",
		data: "metrics:\n  enabled: true\n  timeout: 0s\nshared_networks:\n" +
			testNetworksOffice,
	}, {
		wantErr: errors.ErrEmptyValue,
		name:    "no_networks",
		data:    "schema_version: 1\n",
	}, {
		wantErr: errors.ErrDuplicated,
		name:    "duplicate_networks",
		data:    "shared_networks:\n" + testNetworksOffice + testNetworksOffice,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := configmgr.Validate(writeConfig(t, tc.data))
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}

	t.Run("ipv6_address", func(t *testing.T) {
		data := "listen:\n  address: '::1'\nshared_networks:\n" + testNetworksOffice
		err := configmgr.Validate(writeConfig(t, data))

		testutil.AssertErrorMsg(t, `validating config: listen: address: "::1": must be ipv4`, err)
	})

	t.Run("negative_max_age", func(t *testing.T) {
		data := "log:\n  max_age: -1\nshared_networks:\n" + testNetworksOffice
		err := configmgr.Validate(writeConfig(t, data))
		assert.Error(t, err)
	})

	t.Run("unknown_field", func(t *testing.T) {
		err := configmgr.Validate(writeConfig(t, "unknown: 1\n"))
		assert.Error(t, err)
	})

	t.Run("no_file", func(t *testing.T) {
		err := configmgr.Validate(filepath.Join(t.TempDir(), "none.yaml"))
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})
}

func TestReadLogSettings(t *testing.T) {
	fileName := writeConfig(t, newConfigData(67, testNetworksOffice))

	ls, err := configmgr.ReadLogSettings(fileName)
	require.NoError(t, err)

	assert.Equal(t, &configmgr.LogSettings{
		File:       configmgr.LogFileStderr,
		MaxSize:    100,
		MaxBackups: 0,
		MaxAge:     3,
		Compress:   false,
		Verbose:    true,
	}, ls)
}

func TestManager(t *testing.T) {
	fileName := writeConfig(t, newConfigData(freePort(t), testNetworksOffice))

	l := slogutil.NewDiscardLogger()
	m, err := configmgr.New(testutil.ContextWithTimeout(t, testTimeout), &configmgr.Config{
		BaseLogger: l,
		Logger:     l,
		FileName:   fileName,
	})
	require.NoError(t, err)

	svcs := m.Services()
	require.Len(t, svcs, 2)

	for _, svc := range svcs {
		require.NoError(t, svc.Start(testutil.ContextWithTimeout(t, testTimeout)))
	}

	testutil.CleanupAndRequireSuccess(t, func() (err error) {
		ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
		defer cancel()

		var errs []error
		for _, svc := range svcs {
			errs = append(errs, svc.Shutdown(ctx))
		}

		return errors.Join(errs...)
	})

	officeAddr := netip.MustParseAddr("10.0.0.1")
	labAddr := netip.MustParseAddr("192.168.0.1")

	s, ok := m.Lookup(officeAddr)
	require.True(t, ok)

	assert.Equal(t, "office", s.Network.Name)

	_, ok = m.Lookup(labAddr)
	assert.False(t, ok)

	t.Run("refresh", func(t *testing.T) {
		rewriteConfig(t, fileName, newConfigData(freePort(t), testNetworksLab))

		err = m.Refresh(testutil.ContextWithTimeout(t, testTimeout))
		require.NoError(t, err)

		s, ok = m.Lookup(labAddr)
		require.True(t, ok)

		assert.Equal(t, "lab", s.Network.Name)

		_, ok = m.Lookup(officeAddr)
		assert.False(t, ok)
	})

	t.Run("refresh_invalid", func(t *testing.T) {
		rewriteConfig(t, fileName, "schema_version: 1\n")

		err = m.Refresh(testutil.ContextWithTimeout(t, testTimeout))
		require.ErrorIs(t, err, errors.ErrEmptyValue)

		// The previous table must be kept.
		_, ok = m.Lookup(labAddr)
		assert.True(t, ok)
	})
}
