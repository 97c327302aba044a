package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Config holds tracing configuration
type Config struct {
	Endpoint       string // OTLP gRPC endpoint; empty disables tracing
	Insecure       bool
	ServiceName    string
	ServiceVersion string
}

// Provider wraps the OpenTelemetry TracerProvider. When disabled the
// global no-op provider stays in place and spans cost nothing.
type Provider struct {
	tracerProvider *sdktrace.TracerProvider
	logger         *zap.Logger
	enabled        bool
}

// NewProvider creates and installs the global tracer provider.
func NewProvider(ctx context.Context, cfg Config, logger *zap.Logger) (*Provider, error) {
	if cfg.Endpoint == "" {
		logger.Info("tracing disabled")
		return &Provider{logger: logger}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts,
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		)
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
	))
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)

	logger.Info("tracing initialized", zap.String("endpoint", cfg.Endpoint))
	return &Provider{tracerProvider: tp, logger: logger, enabled: true}, nil
}

// Shutdown flushes remaining spans.
func (p *Provider) Shutdown(ctx context.Context) error {
	if !p.enabled {
		return nil
	}
	if err := p.tracerProvider.Shutdown(ctx); err != nil {
		p.logger.Error("tracer provider shutdown failed", zap.Error(err))
		return err
	}
	p.logger.Info("tracing stopped")
	return nil
}

func (p *Provider) Tracer(name string) trace.Tracer {
	return otel.GetTracerProvider().Tracer(name)
}

func (p *Provider) Enabled() bool {
	return p.enabled
}
