package telemetry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

const serviceName = "moschee-backend"

// InitLogger builds the process logger. Output always goes to stdout; when
// logFile is set it is also written to a rotating file.
func InitLogger(level, logFile string) (*slog.Logger, func(), error) {
	var out io.Writer = os.Stdout
	cleanup := func() {}

	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		rotating := newRotatingFile(logFile)
		out = io.MultiWriter(os.Stdout, rotating)
		cleanup = func() { rotating.Close() }
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})

	logger := slog.New(handler).With("service", serviceName)
	slog.SetDefault(logger)

	return logger, cleanup, nil
}

// ParseLevel maps LOG_LEVEL values onto slog levels, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// InitTelemetry installs global OpenTelemetry tracer and meter providers.
// Both export to the same rotating file; an OTEL collector can still pick
// them up through the SDK.
func InitTelemetry(ctx context.Context, exportFile string) (func(), error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", "1.0.0"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(exportFile), 0755); err != nil {
		return nil, fmt.Errorf("failed to create telemetry directory: %w", err)
	}
	exportWriter := newRotatingFile(exportFile)

	traceExporter, err := stdouttrace.New(stdouttrace.WithWriter(exportWriter))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	metricExporter, err := stdoutmetric.New(stdoutmetric.WithWriter(exportWriter))
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(
				metricExporter,
				sdkmetric.WithInterval(30*time.Second),
			),
		),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown tracer provider", "error", err)
		}
		if err := mp.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown meter provider", "error", err)
		}
		if err := exportWriter.Close(); err != nil {
			slog.Error("failed to close telemetry file", "error", err)
		}
	}

	return cleanup, nil
}

func newRotatingFile(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
}

// AssistantMetrics counts assistant traffic.
type AssistantMetrics struct {
	sessions    metric.Int64Counter
	submissions metric.Int64Counter
	replies     metric.Int64Counter
}

// NewAssistantMetrics registers the assistant instruments on meter. A nil
// meter uses the global provider.
func NewAssistantMetrics(meter metric.Meter) (*AssistantMetrics, error) {
	if meter == nil {
		meter = otel.Meter(serviceName)
	}

	sessions, err := meter.Int64Counter("assistant.sessions.created",
		metric.WithDescription("Assistant sessions opened by page visits"))
	if err != nil {
		return nil, fmt.Errorf("sessions counter: %w", err)
	}
	submissions, err := meter.Int64Counter("assistant.submissions",
		metric.WithDescription("Visitor questions accepted for a reply"))
	if err != nil {
		return nil, fmt.Errorf("submissions counter: %w", err)
	}
	replies, err := meter.Int64Counter("assistant.replies",
		metric.WithDescription("Assistant replies appended, by outcome"))
	if err != nil {
		return nil, fmt.Errorf("replies counter: %w", err)
	}

	return &AssistantMetrics{sessions: sessions, submissions: submissions, replies: replies}, nil
}

func (m *AssistantMetrics) SessionCreated(ctx context.Context) {
	if m == nil {
		return
	}
	m.sessions.Add(ctx, 1)
}

func (m *AssistantMetrics) Submitted(ctx context.Context) {
	if m == nil {
		return
	}
	m.submissions.Add(ctx, 1)
}

func (m *AssistantMetrics) Replied(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.replies.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
