// Package service sequences column detection, mapping validation, ledger
// construction and aggregation into a single processing run.
package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/invoice-insights/internal/domain/analytics/aggregate"
	"github.com/FACorreiaa/invoice-insights/internal/domain/analytics/detector"
	"github.com/FACorreiaa/invoice-insights/internal/domain/analytics/ledger"
	"github.com/FACorreiaa/invoice-insights/pkg/metrics"
)

const (
	tracerName       = "github.com/FACorreiaa/invoice-insights/analytics"
	alternativeLimit = 3
)

// Suggestion is the detected mapping offered to a human for confirmation
type Suggestion struct {
	Mapping      detector.Mapping                         `json:"mapping"`
	Missing      []detector.Role                          `json:"missing"`
	Alternatives map[detector.Role][]detector.Alternative `json:"alternatives"`
	Valid        bool                                     `json:"valid"`
}

// AnalyticsService runs the analytics pipeline
type AnalyticsService struct {
	detector *detector.Detector
	engine   *aggregate.Engine
	metrics  *metrics.Pipeline // Optional: nil disables metrics
	tracer   trace.Tracer
	logger   *slog.Logger
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(d *detector.Detector, engine *aggregate.Engine, logger *slog.Logger) *AnalyticsService {
	return &AnalyticsService{
		detector: d,
		engine:   engine,
		tracer:   otel.Tracer(tracerName),
		logger:   logger,
	}
}

// WithMetrics adds Prometheus recording to the service
func (s *AnalyticsService) WithMetrics(m *metrics.Pipeline) *AnalyticsService {
	s.metrics = m
	return s
}

// Detect suggests a mapping for headers, with near-miss alternatives for the
// roles it could not resolve.
func (s *AnalyticsService) Detect(ctx context.Context, headers []string) *Suggestion {
	_, span := s.tracer.Start(ctx, "analytics.Detect", trace.WithAttributes(
		attribute.Int("headers.count", len(headers)),
	))
	defer span.End()

	m := s.detector.Detect(headers)
	suggestion := &Suggestion{
		Mapping:      m,
		Missing:      m.Unresolved(),
		Alternatives: s.detector.SuggestUnresolved(headers, m, alternativeLimit),
		Valid:        ValidateMapping(headers, m) == nil,
	}

	s.logger.DebugContext(ctx, "columns detected",
		slog.Int("headers", len(headers)),
		slog.Any("missing", suggestion.Missing),
		slog.Bool("valid", suggestion.Valid),
	)
	return suggestion
}

// Process validates m, builds the ledger from rows, and computes every
// aggregate. headers may be nil when the caller has no header list, which
// skips the header-existence check. Only a *ValidationError is ever returned;
// unparsable cells are absorbed.
func (s *AnalyticsService) Process(ctx context.Context, headers []string, rows []ledger.RawRow, m detector.Mapping) (*aggregate.Result, error) {
	ctx, span := s.tracer.Start(ctx, "analytics.Process", trace.WithAttributes(
		attribute.Int("rows.input", len(rows)),
	))
	defer span.End()
	start := time.Now()

	if err := ValidateMapping(headers, m); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid mapping")
		s.metrics.ObserveRun(metrics.OutcomeInvalidMapping, 0, 0, time.Since(start))
		s.logger.WarnContext(ctx, "mapping rejected", slog.Any("error", err))
		return nil, err
	}

	records, dropped := ledger.BuildWithDiagnostics(rows, m)
	result := s.engine.Compute(records)
	result.Dropped = dropped

	span.SetAttributes(
		attribute.Int("rows.ledger", len(records)),
		attribute.Int("rows.dropped", len(dropped)),
	)
	s.metrics.ObserveRun(metrics.OutcomeOK, len(rows), len(dropped), time.Since(start))
	s.logger.InfoContext(ctx, "upload processed",
		slog.Int("rows", len(rows)),
		slog.Int("ledger", len(records)),
		slog.Int("dropped", len(dropped)),
		slog.Float64("revenue", result.KPIs.TotalRevenue),
	)
	return result, nil
}
