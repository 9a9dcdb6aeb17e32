package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes relay-level instruments. A nil *Metrics records nothing.
type Metrics struct {
	events          metric.Int64Counter
	sendFailures    metric.Int64Counter
	sequences       metric.Int64Counter
	correlations    metric.Int64Counter
	operatorForward metric.Int64Counter
	rateLimitWaits  metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the relay metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "orderrelay"
	}
	meter := provider.Meter(name)

	events, err := meter.Int64Counter("orderrelay_events_total")
	if err != nil {
		return nil, err
	}
	sendFailures, err := meter.Int64Counter("orderrelay_send_failures_total")
	if err != nil {
		return nil, err
	}
	sequences, err := meter.Int64Counter("orderrelay_presentations_total")
	if err != nil {
		return nil, err
	}
	correlations, err := meter.Int64Counter("orderrelay_correlation_resolutions_total")
	if err != nil {
		return nil, err
	}
	operatorForward, err := meter.Int64Counter("orderrelay_operator_forwards_total")
	if err != nil {
		return nil, err
	}
	rateLimitWaits, err := meter.Int64Counter("orderrelay_rate_limit_waits_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		events:          events,
		sendFailures:    sendFailures,
		sequences:       sequences,
		correlations:    correlations,
		operatorForward: operatorForward,
		rateLimitWaits:  rateLimitWaits,
	}, nil
}

// RecordEvent counts an inbound event by kind.
func (m *Metrics) RecordEvent(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("kind", strings.TrimSpace(kind)))
	m.events.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordSendFailure counts a failed outbound send by stage.
func (m *Metrics) RecordSendFailure(ctx context.Context, stage string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("stage", strings.TrimSpace(stage)))
	m.sendFailures.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordPresentation counts a finished presentation run by status.
func (m *Metrics) RecordPresentation(ctx context.Context, status string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("status", strings.TrimSpace(status)))
	m.sequences.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordCorrelation counts an operator reply resolution by match kind.
func (m *Metrics) RecordCorrelation(ctx context.Context, match string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("match", strings.TrimSpace(match)))
	m.correlations.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordOperatorForward counts a finished operator forwarding task by status.
func (m *Metrics) RecordOperatorForward(ctx context.Context, status string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("status", strings.TrimSpace(status)))
	m.operatorForward.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRateLimitWait counts sends delayed by the outbound limiter.
func (m *Metrics) RecordRateLimitWait(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("reason", strings.TrimSpace(reason)))
	m.rateLimitWaits.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"kind":   {},
	"stage":  {},
	"status": {},
	"match":  {},
	"reason": {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
