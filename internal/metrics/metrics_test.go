package metrics_test

import (
	"context"
	"io"
	"net/http"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/AdguardTeam/dhcpudp/internal/metrics"
	"github.com/AdguardTeam/dhcpudp/internal/udpsock"
	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/AdguardTeam/golibs/testutil"
	"github.com/insomniacslk/dhcp/dhcpv4"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTimeout is the common timeout for tests.
const testTimeout = 1 * time.Second

func TestPackets(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.NewPackets(metrics.Namespace, reg)
	require.NoError(t, err)

	ctx := testutil.ContextWithTimeout(t, testTimeout)

	m.IncrementReceived(ctx)
	m.IncrementReceived(ctx)
	m.IncrementReceived(ctx)
	m.IncrementDropped(ctx, udpsock.DropReasonNoSubnet)
	m.IncrementDropped(ctx, udpsock.DropReasonNoSubnet)
	m.ObserveDispatch(ctx, time.Millisecond)
	m.IncrementSent(ctx, nil)
	m.IncrementSent(ctx, errors.Error("test error"))

	families, err := reg.Gather()
	require.NoError(t, err)

	got := map[string]float64{}
	for _, f := range families {
		for _, metric := range f.GetMetric() {
			switch {
			case metric.GetCounter() != nil:
				got[f.GetName()] += metric.GetCounter().GetValue()
			case metric.GetHistogram() != nil:
				got[f.GetName()] += float64(metric.GetHistogram().GetSampleCount())
			}
		}
	}

	assert.Equal(t, map[string]float64{
		"dhcpudp_received_total":            3,
		"dhcpudp_dropped_total":             2,
		"dhcpudp_dispatched_total":          1,
		"dhcpudp_dispatch_duration_seconds": 1,
		"dhcpudp_sent_total":                1,
		"dhcpudp_send_errors_total":         1,
	}, got)

	t.Run("duplicate", func(t *testing.T) {
		_, err = metrics.NewPackets(metrics.Namespace, reg)
		require.Error(t, err)
	})
}

func TestMessages(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.NewMessages(metrics.Namespace, reg)
	require.NoError(t, err)

	ctx := testutil.ContextWithTimeout(t, testTimeout)

	m.IncrementMessages(ctx, dhcpv4.MessageTypeDiscover)
	m.IncrementMessages(ctx, dhcpv4.MessageTypeDiscover)
	m.IncrementMessages(ctx, dhcpv4.MessageTypeRequest)
	m.IncrementMalformed(ctx)

	const want = `
# HELP dhcpudp_malformed_total The total number of payloads that aren't valid DHCPv4 messages.
# TYPE dhcpudp_malformed_total counter
dhcpudp_malformed_total 1
# HELP dhcpudp_messages_total The total number of valid DHCPv4 messages by type.
# TYPE dhcpudp_messages_total counter
dhcpudp_messages_total{type="DISCOVER"} 2
dhcpudp_messages_total{type="REQUEST"} 1
`

	err = promtestutil.GatherAndCompare(
		reg,
		strings.NewReader(want),
		"dhcpudp_malformed_total",
		"dhcpudp_messages_total",
	)
	require.NoError(t, err)
}

func TestServer(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_total",
		Help: "Test counter.",
	})
	reg.MustRegister(c)
	c.Add(42)

	require.Equal(t, float64(42), promtestutil.ToFloat64(c))

	srv := metrics.NewServer(&metrics.ServerConfig{
		Logger:   slogutil.NewDiscardLogger(),
		Gatherer: reg,
		Address:  netip.MustParseAddrPort("127.0.0.1:0"),
		Timeout:  testTimeout,
	})

	assert.Nil(t, srv.LocalAddr())

	err := srv.Start(testutil.ContextWithTimeout(t, testTimeout))
	require.NoError(t, err)

	testutil.CleanupAndRequireSuccess(t, func() (err error) {
		ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
		defer cancel()

		return srv.Shutdown(ctx)
	})

	addr := srv.LocalAddr()
	require.NotNil(t, addr)

	req, err := http.NewRequestWithContext(
		testutil.ContextWithTimeout(t, testTimeout),
		http.MethodGet,
		"http://"+addr.String()+metrics.PathMetrics,
		nil,
	)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	testutil.CleanupAndRequireSuccess(t, resp.Body.Close)

	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "test_total 42")
}
