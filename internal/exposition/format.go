package exposition

import (
	"bytes"
	"fmt"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	"github.com/Jercik/i2pd-webconsole-exporter/internal/extract"
)

// VersionMetric is the info gauge identifying the exporter build.
const VersionMetric = "i2pd_webconsole_exporter_version_info"

// ContentType is the media type of the text Format produces.
var ContentType = string(expfmt.NewFormat(expfmt.TypeTextPlain))

// Identity is the static exporter metadata appended to every exposition.
type Identity struct {
	Version string
}

// Format renders snap in the Prometheus text format, followed by the
// exporter version gauge.
//
// Families appear in the order their first sample appears in snap, and each
// series keeps the label order of its rule, so identical snapshots always
// render byte-identical text.
func Format(snap extract.Snapshot, id Identity) ([]byte, error) {
	families := Families(snap, id)

	var buf bytes.Buffer
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(&buf, mf); err != nil {
			return nil, fmt.Errorf("exposition: render %s: %w", mf.GetName(), err)
		}
	}
	return buf.Bytes(), nil
}

// Families converts snap into metric families, grouping samples by name.
// A name always keeps the kind of its first sample.
func Families(snap extract.Snapshot, id Identity) []*dto.MetricFamily {
	var out []*dto.MetricFamily
	byName := make(map[string]*dto.MetricFamily)

	for _, s := range snap.Samples {
		mf, ok := byName[s.Name]
		if !ok {
			mf = &dto.MetricFamily{
				Name: proto.String(s.Name),
				Type: metricType(s.Kind),
			}
			if s.Help != "" {
				mf.Help = proto.String(s.Help)
			}
			byName[s.Name] = mf
			out = append(out, mf)
		}
		mf.Metric = append(mf.Metric, metric(mf.GetType(), s.Labels, s.Value))
	}

	out = append(out, &dto.MetricFamily{
		Name: proto.String(VersionMetric),
		Help: proto.String("I2P webconsole exporter version info"),
		Type: dto.MetricType_GAUGE.Enum(),
		Metric: []*dto.Metric{
			metric(dto.MetricType_GAUGE, []extract.Label{{Name: "version", Value: id.Version}}, 1),
		},
	})
	return out
}

func metricType(k extract.Kind) *dto.MetricType {
	if k == extract.Counter {
		return dto.MetricType_COUNTER.Enum()
	}
	return dto.MetricType_GAUGE.Enum()
}

func metric(t dto.MetricType, labels []extract.Label, v float64) *dto.Metric {
	m := &dto.Metric{}
	for _, l := range labels {
		m.Label = append(m.Label, &dto.LabelPair{
			Name:  proto.String(l.Name),
			Value: proto.String(l.Value),
		})
	}
	if t == dto.MetricType_COUNTER {
		m.Counter = &dto.Counter{Value: proto.Float64(v)}
	} else {
		m.Gauge = &dto.Gauge{Value: proto.Float64(v)}
	}
	return m
}
