// Package otlpexport pushes collected gauges to an OTLP/gRPC metrics
// endpoint.
package otlpexport

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	collectormetrics "go.opentelemetry.io/proto/otlp/collector/metrics/v1"
	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	metricspb "go.opentelemetry.io/proto/otlp/metrics/v1"
	resourcepb "go.opentelemetry.io/proto/otlp/resource/v1"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/proto"
)

const scopeName = "github.com/tinytelemetry/boxinfo"

// Config configures the exporter.
type Config struct {
	// Endpoint is host:port of the OTLP gRPC receiver.
	Endpoint string
	Timeout  time.Duration
	// Resource attributes identifying the box, e.g. "host.name".
	Resource map[string]string
}

// Gauge is one sampled value.
type Gauge struct {
	Name  string
	Unit  string
	Value float64
	Attrs map[string]string
}

// Exporter sends gauges over a single gRPC connection.
type Exporter struct {
	conn     *grpc.ClientConn
	client   collectormetrics.MetricsServiceClient
	resource *resourcepb.Resource
	timeout  time.Duration
}

// New creates an exporter. The connection is established lazily on the
// first export.
func New(cfg Config) (*Exporter, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("otlpexport: endpoint is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	conn, err := grpc.NewClient(cfg.Endpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("otlpexport: dial %s: %w", cfg.Endpoint, err)
	}
	return &Exporter{
		conn:     conn,
		client:   collectormetrics.NewMetricsServiceClient(conn),
		resource: &resourcepb.Resource{Attributes: attributes(cfg.Resource)},
		timeout:  timeout,
	}, nil
}

// Export pushes the gauges sampled at the given time.
func (e *Exporter) Export(ctx context.Context, at time.Time, gauges []Gauge) error {
	if len(gauges) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req := buildRequest(e.resource, at, gauges)
	resp, err := e.client.Export(ctx, req)
	if err != nil {
		return fmt.Errorf("otlpexport: export: %w", err)
	}
	if ps := resp.GetPartialSuccess(); ps.GetRejectedDataPoints() > 0 {
		return fmt.Errorf("otlpexport: %d data points rejected: %s", ps.GetRejectedDataPoints(), ps.GetErrorMessage())
	}
	log.Printf("otlpexport: pushed %d gauges (%d bytes)", len(gauges), proto.Size(req))
	return nil
}

// Close closes the gRPC connection.
func (e *Exporter) Close() error {
	return e.conn.Close()
}

func buildRequest(resource *resourcepb.Resource, at time.Time, gauges []Gauge) *collectormetrics.ExportMetricsServiceRequest {
	ts := uint64(at.UnixNano())
	metrics := make([]*metricspb.Metric, 0, len(gauges))
	for _, g := range gauges {
		metrics = append(metrics, &metricspb.Metric{
			Name: g.Name,
			Unit: g.Unit,
			Data: &metricspb.Metric_Gauge{Gauge: &metricspb.Gauge{
				DataPoints: []*metricspb.NumberDataPoint{{
					Attributes:   attributes(g.Attrs),
					TimeUnixNano: ts,
					Value:        &metricspb.NumberDataPoint_AsDouble{AsDouble: g.Value},
				}},
			}},
		})
	}
	return &collectormetrics.ExportMetricsServiceRequest{
		ResourceMetrics: []*metricspb.ResourceMetrics{{
			Resource: resource,
			ScopeMetrics: []*metricspb.ScopeMetrics{{
				Scope:   &commonpb.InstrumentationScope{Name: scopeName},
				Metrics: metrics,
			}},
		}},
	}
}

// attributes converts a map to key/value pairs sorted by key.
func attributes(m map[string]string) []*commonpb.KeyValue {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*commonpb.KeyValue, 0, len(keys))
	for _, k := range keys {
		out = append(out, &commonpb.KeyValue{
			Key:   k,
			Value: &commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: m[k]}},
		})
	}
	return out
}
