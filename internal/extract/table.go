package extract

import (
	"regexp"

	"github.com/Jercik/i2pd-webconsole-exporter/internal/normalize"
)

// Metric names exposed by the exporter.
const (
	MetricNetworkStatusV4  = "i2p_network_status_v4"
	MetricNetworkStatusV6  = "i2p_network_status_v6"
	MetricTunnelSuccess    = "i2p_tunnel_creation_success_rate"
	MetricReceivedBytes    = "i2p_data_received_bytes"
	MetricSentBytes        = "i2p_data_sent_bytes"
	MetricTransitBytes     = "i2p_data_transit_bytes"
	MetricDataRate         = "i2p_data_rate_bytes_per_second"
	MetricCapabilities     = "i2p_router_capabilities"
	MetricExternalAddress  = "i2p_external_address"
	MetricNetworkRouters   = "i2p_network_routers"
	MetricNetworkFloodfill = "i2p_network_floodfills"
	MetricNetworkLeaseSets = "i2p_network_leasesets"
	MetricClientTunnels    = "i2p_client_tunnels"
	MetricTransitTunnels   = "i2p_transit_tunnels"
	MetricServiceStatus    = "i2p_service_status"
)

// Patterns shared by more than one rule. Group names follow the rule that
// reads them.
var (
	netCountsRE = regexp.MustCompile(
		`<b>Routers:</b>\s*(?P<routers>[^<\s]+)\s*<b>Floodfills:</b>\s*(?P<floodfills>[^<\s]+)\s*<b>LeaseSets:</b>\s*(?P<leasesets>[^<\s]+)`)

	tunnelCountsRE = regexp.MustCompile(
		`<b>Client Tunnels:</b>\s*(?P<client>[^<\s]+)\s*<b>Transit Tunnels:</b>\s*(?P<transit>[^<\s]+)`)

	extAddrSectionRE = regexp.MustCompile(
		`(?s)<b>Our external address:</b>.*?<table class=["']extaddr["']>(.*?)</table>`)

	servicesSectionRE = regexp.MustCompile(
		`(?s)<table class=["']services["']>(.*?)</table>`)
)

// totalRE matches the cumulative part of a traffic line such as
// "<b>Received:</b> 1.23 GiB (12.34 KiB/s)<br>".
func totalRE(title string) *regexp.Regexp {
	return regexp.MustCompile(`<b>` + regexp.QuoteMeta(title) + `:</b>\s*(?P<value>[^<(]+?)\s*(?:\(|<br>)`)
}

// rateRE matches the parenthesised rate of the same traffic line.
func rateRE(title string) *regexp.Regexp {
	return regexp.MustCompile(`<b>` + regexp.QuoteMeta(title) + `:</b>[^<(]*\((?P<value>[^)<]+)\)`)
}

// fieldRE matches "<b>title:</b> value" up to the next tag.
func fieldRE(title string) *regexp.Regexp {
	return regexp.MustCompile(`<b>` + regexp.QuoteMeta(title) + `:</b>\s*(?P<value>[^<]+)`)
}

// DefaultRules returns the rule table for the i2pd web console main page.
// The slice is freshly allocated but the compiled patterns are shared;
// callers must treat the result as read-only.
func DefaultRules() []Rule {
	out := make([]Rule, len(defaultRules))
	copy(out, defaultRules)
	return out
}

var defaultRules = []Rule{
	{
		Metric:    MetricNetworkStatusV4,
		Help:      "IPv4 network status as string",
		Pattern:   fieldRE("Network status"),
		Value:     "value",
		Labels:    []LabelSpec{{Name: "status", Group: "value"}},
		Normalize: normalize.StatusFunc,
	},
	{
		Metric:    MetricNetworkStatusV6,
		Help:      "IPv6 network status as string",
		Pattern:   fieldRE("Network status v6"),
		Value:     "value",
		Labels:    []LabelSpec{{Name: "status", Group: "value"}},
		Normalize: normalize.StatusFunc,
	},
	{
		Metric:    MetricTunnelSuccess,
		Help:      "Percentage of successful tunnel creations",
		Pattern:   fieldRE("Tunnel creation success rate"),
		Value:     "value",
		Normalize: normalize.PercentFunc,
	},
	{
		Metric:    MetricReceivedBytes,
		Help:      "Total data received in bytes",
		Kind:      Counter,
		Pattern:   totalRE("Received"),
		Value:     "value",
		Normalize: normalize.BytesFunc,
	},
	{
		Metric:    MetricSentBytes,
		Help:      "Total data sent in bytes",
		Kind:      Counter,
		Pattern:   totalRE("Sent"),
		Value:     "value",
		Normalize: normalize.BytesFunc,
	},
	{
		Metric:    MetricTransitBytes,
		Help:      "Total transit data in bytes",
		Kind:      Counter,
		Pattern:   totalRE("Transit"),
		Value:     "value",
		Normalize: normalize.BytesFunc,
	},
	{
		Metric:    MetricDataRate,
		Help:      "Data transfer rate in bytes/second",
		Pattern:   rateRE("Received"),
		Value:     "value",
		Labels:    []LabelSpec{{Name: "direction", Const: "received"}},
		Normalize: normalize.RateFunc,
	},
	{
		Metric:    MetricDataRate,
		Help:      "Data transfer rate in bytes/second",
		Pattern:   rateRE("Sent"),
		Value:     "value",
		Labels:    []LabelSpec{{Name: "direction", Const: "sent"}},
		Normalize: normalize.RateFunc,
	},
	{
		Metric:    MetricDataRate,
		Help:      "Data transfer rate in bytes/second",
		Pattern:   rateRE("Transit"),
		Value:     "value",
		Labels:    []LabelSpec{{Name: "direction", Const: "transit"}},
		Normalize: normalize.RateFunc,
	},
	{
		Metric:    MetricCapabilities,
		Help:      "Router capabilities",
		Pattern:   regexp.MustCompile(`<b>Router Caps:</b>\s*(?P<value>[A-Za-z0-9~]+)`),
		Value:     "value",
		Labels:    []LabelSpec{{Name: "capabilities", Group: "value"}},
		Normalize: normalize.ConstantFunc,
	},
	{
		Metric:  MetricExternalAddress,
		Help:    "External addresses the router is reachable at",
		Section: extAddrSectionRE,
		Pattern: regexp.MustCompile(
			`<tr>\s*<td>(?P<protocol>[^<]+)</td>\s*<td>(?P<value>[^<]+)</td>\s*</tr>`),
		Multi: true,
		Value: "value",
		Labels: []LabelSpec{
			{Name: "protocol", Group: "protocol"},
			{Name: "address", Group: "value"},
		},
		Normalize: normalize.ConstantFunc,
	},
	{
		Metric:    MetricNetworkRouters,
		Help:      "Count of routers in the network",
		Pattern:   netCountsRE,
		Value:     "routers",
		Normalize: normalize.CountFunc,
	},
	{
		Metric:    MetricNetworkFloodfill,
		Help:      "Count of floodfill routers in the network",
		Pattern:   netCountsRE,
		Value:     "floodfills",
		Normalize: normalize.CountFunc,
	},
	{
		Metric:    MetricNetworkLeaseSets,
		Help:      "Count of leasesets in the network",
		Pattern:   netCountsRE,
		Value:     "leasesets",
		Normalize: normalize.CountFunc,
	},
	{
		Metric:    MetricClientTunnels,
		Help:      "Count of client tunnels",
		Pattern:   tunnelCountsRE,
		Value:     "client",
		Normalize: normalize.CountFunc,
	},
	{
		Metric:    MetricTransitTunnels,
		Help:      "Count of transit tunnels",
		Pattern:   tunnelCountsRE,
		Value:     "transit",
		Normalize: normalize.CountFunc,
	},
	{
		Metric:  MetricServiceStatus,
		Help:    "Status of i2pd services (1=enabled, 0=disabled)",
		Section: servicesSectionRE,
		Pattern: regexp.MustCompile(
			`<tr>\s*<td>(?P<service>[^<]+)</td>\s*<td class=["'](?P<value>[^"']+)["']>[^<]*</td>\s*</tr>`),
		Multi:     true,
		Value:     "value",
		Labels:    []LabelSpec{{Name: "service", Group: "service", Transform: normalize.ServiceName}},
		Normalize: normalize.EnabledFunc,
	},
}
