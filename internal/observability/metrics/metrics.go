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

// Metrics exposes application-level instruments.
type Metrics struct {
	checkoutOrders      metric.Int64Counter
	balanceConflicts    metric.Int64Counter
	compensations       metric.Int64Counter
	compensationsFailed metric.Int64Counter
	paymentsRecorded    metric.Int64Counter
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

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "colmado"
	}
	meter := provider.Meter(name)

	checkoutOrders, err := meter.Int64Counter("colmado_checkout_orders_total")
	if err != nil {
		return nil, err
	}
	balanceConflicts, err := meter.Int64Counter("colmado_balance_conflicts_total")
	if err != nil {
		return nil, err
	}
	compensations, err := meter.Int64Counter("colmado_compensations_total")
	if err != nil {
		return nil, err
	}
	compensationsFailed, err := meter.Int64Counter("colmado_compensations_failed_total")
	if err != nil {
		return nil, err
	}
	paymentsRecorded, err := meter.Int64Counter("colmado_payments_recorded_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		checkoutOrders:      checkoutOrders,
		balanceConflicts:    balanceConflicts,
		compensations:       compensations,
		compensationsFailed: compensationsFailed,
		paymentsRecorded:    paymentsRecorded,
	}, nil
}

// RecordCheckout increments checkout attempt counts by payment method and result.
func (m *Metrics) RecordCheckout(ctx context.Context, paymentMethod, result string) {
	if m == nil {
		return
	}
	m.checkoutOrders.Add(ctx, 1, metric.WithAttributes(
		attribute.String("payment_method", strings.TrimSpace(paymentMethod)),
		attribute.String("result", strings.TrimSpace(result)),
	))
}

// RecordBalanceConflict increments conditional-update precondition failures.
func (m *Metrics) RecordBalanceConflict(ctx context.Context, operation string) {
	if m == nil {
		return
	}
	m.balanceConflicts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", strings.TrimSpace(operation)),
	))
}

// RecordCompensation increments successful balance reversals by failed stage.
func (m *Metrics) RecordCompensation(ctx context.Context, stage string) {
	if m == nil {
		return
	}
	m.compensations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("stage", strings.TrimSpace(stage)),
	))
}

// RecordCompensationFailure increments the operator-alerting inconsistency count.
func (m *Metrics) RecordCompensationFailure(ctx context.Context, stage string) {
	if m == nil {
		return
	}
	m.compensationsFailed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("stage", strings.TrimSpace(stage)),
	))
}

// RecordPayment increments owner-recorded fiado payments.
func (m *Metrics) RecordPayment(ctx context.Context) {
	if m == nil {
		return
	}
	m.paymentsRecorded.Add(ctx, 1)
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
