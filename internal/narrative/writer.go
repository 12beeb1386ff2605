package narrative

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/iammorganparry/circle/internal/models"
	"github.com/iammorganparry/circle/internal/privacy"
)

const tracerName = "github.com/iammorganparry/circle/internal/narrative"

// Result is generated text, or the fallback message when Fallback is set.
type Result struct {
	Text     string
	Fallback bool
	Provider string
}

// Writer wraps a Generator with prompts, a per-call timeout and fallbacks.
type Writer struct {
	gen     Generator
	timeout time.Duration
	logger  *slog.Logger
	tracer  trace.Tracer
}

func NewWriter(gen Generator, timeout time.Duration, logger *slog.Logger) *Writer {
	return &Writer{
		gen:     gen,
		timeout: timeout,
		logger:  logger,
		tracer:  otel.Tracer(tracerName),
	}
}

// Provider returns the name of the underlying generator.
func (w *Writer) Provider() string {
	return w.gen.Name()
}

// Enabled reports whether a real provider is configured.
func (w *Writer) Enabled() bool {
	return w.gen.Name() != ProviderNone
}

// GrantSummary writes a grant-report narrative for the report. Quotes are
// cleaned before they leave the process.
func (w *Writer) GrantSummary(ctx context.Context, r models.CohortReport, quotes []string) Result {
	p := GrantPrompt(r, privacy.SelectQuotes(quotes, 0))
	return w.generate(ctx, "narrative.grant_summary", p, GrantSummaryFallback,
		attribute.String("report.scope", r.Scope))
}

// WorksheetGuidance asks for gentle reflection prompts for a week's question.
func (w *Writer) WorksheetGuidance(ctx context.Context, week int, question string) Result {
	p := GuidancePrompt(week, privacy.CleanQuote(question))
	return w.generate(ctx, "narrative.worksheet_guidance", p, GuidanceFallback,
		attribute.Int("worksheet.week", week))
}

func (w *Writer) generate(ctx context.Context, span string, p Prompt, fallback string, attrs ...attribute.KeyValue) Result {
	ctx, sp := w.tracer.Start(ctx, span, trace.WithAttributes(
		append(attrs, attribute.String("narrative.provider", w.gen.Name()))...))
	defer sp.End()

	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := w.gen.Generate(ctx, p)
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrEmptyResponse
	}
	if err != nil {
		w.logger.Warn("narrative generation failed",
			"kind", span,
			"provider", w.gen.Name(),
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		sp.RecordError(err)
		sp.SetStatus(codes.Error, err.Error())
		sp.SetAttributes(attribute.Bool("narrative.fallback", true))
		return Result{Text: fallback, Fallback: true, Provider: w.gen.Name()}
	}

	w.logger.Debug("narrative generated",
		"kind", span,
		"provider", w.gen.Name(),
		"duration_ms", time.Since(start).Milliseconds(),
		"chars", len(text),
	)
	sp.SetAttributes(attribute.Bool("narrative.fallback", false))
	return Result{Text: strings.TrimSpace(text), Provider: w.gen.Name()}
}
