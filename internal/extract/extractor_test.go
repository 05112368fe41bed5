package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jercik/i2pd-webconsole-exporter/internal/normalize"
)

// loadFixture reads a page captured from an i2pd web console.
func loadFixture(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err, "read fixture %s", name)
	return string(b)
}

// single returns the only sample named name, failing the test otherwise.
func single(t *testing.T, snap Snapshot, name string) Sample {
	t.Helper()
	got := snap.Find(name)
	require.Len(t, got, 1, "samples for %s", name)
	return got[0]
}

func labelMap(s Sample) map[string]string {
	m := make(map[string]string, len(s.Labels))
	for _, l := range s.Labels {
		m[l.Name] = l.Value
	}
	return m
}

func TestDefaultRules_Valid(t *testing.T) {
	require.NoError(t, Validate(DefaultRules()))
}

func TestExtract_FullPage(t *testing.T) {
	res, err := Extract(loadFixture(t, "console.html"), DefaultRules())
	require.NoError(t, err)
	assert.Empty(t, res.Failures)
	assert.Equal(t, 24, res.Snapshot.Len())

	snap := res.Snapshot

	v4 := single(t, snap, MetricNetworkStatusV4)
	assert.Equal(t, 1.0, v4.Value)
	assert.Equal(t, []Label{{Name: "status", Value: "OK"}}, v4.Labels)

	v6 := single(t, snap, MetricNetworkStatusV6)
	assert.Equal(t, 0.0, v6.Value)
	assert.Equal(t, "Firewalled", labelMap(v6)["status"])

	assert.Equal(t, 36.0, single(t, snap, MetricTunnelSuccess).Value)

	recv := single(t, snap, MetricReceivedBytes)
	assert.Equal(t, 11010048.0, recv.Value) // 10.5 * 1024 * 1024
	assert.Equal(t, Counter, recv.Kind)
	assert.Empty(t, recv.Labels)

	assert.Equal(t, 1320702444.0, single(t, snap, MetricSentBytes).Value)
	assert.Equal(t, 2199023255552.0, single(t, snap, MetricTransitBytes).Value)

	rates := snap.Find(MetricDataRate)
	require.Len(t, rates, 3)
	wantRates := map[string]float64{"received": 12800, "sent": 1310720, "transit": 100}
	for _, r := range rates {
		dir := labelMap(r)["direction"]
		assert.Equal(t, wantRates[dir], r.Value, "rate for direction %q", dir)
	}

	caps := single(t, snap, MetricCapabilities)
	assert.Equal(t, 1.0, caps.Value)
	assert.Equal(t, "LR", labelMap(caps)["capabilities"])

	assert.Equal(t, 3761.0, single(t, snap, MetricNetworkRouters).Value)
	assert.Equal(t, 1023.0, single(t, snap, MetricNetworkFloodfill).Value)
	assert.Equal(t, 0.0, single(t, snap, MetricNetworkLeaseSets).Value)
	assert.Equal(t, 18.0, single(t, snap, MetricClientTunnels).Value)
	assert.Equal(t, 125.0, single(t, snap, MetricTransitTunnels).Value)

	services := snap.Find(MetricServiceStatus)
	require.Len(t, services, 6)
	gotServices := make(map[string]float64)
	for _, s := range services {
		gotServices[labelMap(s)["service"]] = s.Value
	}
	assert.Equal(t, map[string]float64{
		"http_proxy":  1,
		"socks_proxy": 1,
		"bob":         0,
		"sam":         1,
		"i2cp":        0,
		"i2pcontrol":  0,
	}, gotServices)
}

func TestExtract_ExternalAddresses(t *testing.T) {
	res, err := Extract(loadFixture(t, "console.html"), DefaultRules())
	require.NoError(t, err)

	addrs := res.Snapshot.Find(MetricExternalAddress)
	require.Len(t, addrs, 3)

	want := [][]Label{
		{{Name: "protocol", Value: "NTCP2"}, {Name: "address", Value: "203.0.113.7:24567"}},
		{{Name: "protocol", Value: "SSU2"}, {Name: "address", Value: "203.0.113.7:24567"}},
		{{Name: "protocol", Value: "NTCP2V6"}, {Name: "address", Value: "[2001:db8::7]:24567"}},
	}
	for i, a := range addrs {
		assert.Equal(t, want[i], a.Labels, "address %d", i)
		assert.Equal(t, 1.0, a.Value)
	}
}

func TestExtract_CorruptedFieldIsContained(t *testing.T) {
	full, err := Extract(loadFixture(t, "console.html"), DefaultRules())
	require.NoError(t, err)

	page := strings.Replace(loadFixture(t, "console.html"),
		"<b>Received:</b> 10.5 MiB", "<b>Received:</b> 10.5 XiB", 1)

	res, err := Extract(page, DefaultRules())
	require.NoError(t, err)

	assert.Empty(t, res.Snapshot.Find(MetricReceivedBytes))
	assert.Equal(t, full.Snapshot.Len()-1, res.Snapshot.Len(), "every other field should survive")

	require.Len(t, res.Failures, 1)
	assert.Equal(t, MetricReceivedBytes, res.Failures[0].Rule)
	assert.ErrorIs(t, res.Failures[0], normalize.ErrMalformed)

	// The rate on the same line is still read.
	assert.Len(t, res.Snapshot.Find(MetricDataRate), 3)
}

func TestExtract_MissingSectionsYieldPartialSnapshot(t *testing.T) {
	page := `<html><body>
<b>Network status:</b> Testing<br>
<b>Client Tunnels:</b> 4 <b>Transit Tunnels:</b> 0<br>
</body></html>`

	res, err := Extract(page, DefaultRules())
	require.NoError(t, err)
	assert.Empty(t, res.Failures, "absent fields are not failures")
	assert.Equal(t, 3, res.Snapshot.Len())

	v4 := single(t, res.Snapshot, MetricNetworkStatusV4)
	assert.Equal(t, 0.0, v4.Value)
	assert.Equal(t, "Testing", labelMap(v4)["status"])
	assert.Empty(t, res.Snapshot.Find(MetricNetworkStatusV6))
	assert.Empty(t, res.Snapshot.Find(MetricExternalAddress))
}

func TestExtract_UnrelatedPageHasNoSamples(t *testing.T) {
	res, err := Extract("<html><body>It works!</body></html>", DefaultRules())
	require.NoError(t, err)
	assert.Zero(t, res.Snapshot.Len())
	assert.Empty(t, res.Failures)
}

func TestExtract_EmptyPage(t *testing.T) {
	for _, page := range []string{"", "   \n\t "} {
		_, err := Extract(page, DefaultRules())
		assert.ErrorIs(t, err, ErrEmptyPage)
	}
}

func TestExtract_UndecodablePage(t *testing.T) {
	_, err := Extract("<b>Network status:</b> \xff\xfe<br>", DefaultRules())
	assert.ErrorIs(t, err, ErrUndecodablePage)
}

func TestExtract_UnknownServiceClassMapsToZero(t *testing.T) {
	page := `<table class="services"><tbody>
<tr><td>HTTP Proxy</td><td class='starting'>Starting</td></tr>
</tbody></table>`

	res, err := Extract(page, DefaultRules())
	require.NoError(t, err)
	svc := single(t, res.Snapshot, MetricServiceStatus)
	assert.Equal(t, 0.0, svc.Value)
	assert.Equal(t, "http_proxy", labelMap(svc)["service"])
}

func TestExtract_DuplicateSeriesEmittedOnce(t *testing.T) {
	page := `<table class="services"><tbody>
<tr><td>SAM</td><td class='enabled'>Enabled</td></tr>
<tr><td>SAM</td><td class='disabled'>Disabled</td></tr>
</tbody></table>`

	res, err := Extract(page, DefaultRules())
	require.NoError(t, err)
	svc := single(t, res.Snapshot, MetricServiceStatus)
	assert.Equal(t, 1.0, svc.Value, "first row wins")
}

func TestExtract_Deterministic(t *testing.T) {
	page := loadFixture(t, "console.html")
	a, err := Extract(page, DefaultRules())
	require.NoError(t, err)
	b, err := Extract(page, DefaultRules())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
