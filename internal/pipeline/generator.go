package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/couchcryptid/farm-advisory-service/internal/domain"
	"github.com/couchcryptid/farm-advisory-service/internal/observability"
)

// AdvisoryInput is everything the advisory prompt is built from.
type AdvisoryInput struct {
	Location string
	Coord    domain.Coordinate
	Current  domain.WeatherSnapshot
	Forecast domain.Forecast
	Language domain.LanguageCode
}

// Generator asks a text model for structured farming advice.
type Generator struct {
	model   domain.TextModel
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewGenerator creates an advisory Generator.
func NewGenerator(model domain.TextModel, logger *slog.Logger, metrics *observability.Metrics) *Generator {
	return &Generator{model: model, logger: logger, metrics: metrics}
}

// Generate returns the parsed advisory. A failed model call is returned as an
// error; unparseable output degrades to an empty payload.
func (g *Generator) Generate(ctx context.Context, in AdvisoryInput) (domain.Result[domain.AdvisoryPayload], error) {
	text, err := g.model.Complete(ctx, advisoryPrompt(in))
	if err != nil {
		g.metrics.ModelCalls.WithLabelValues("advisory", "error").Inc()
		var upstream *domain.UpstreamError
		if !errors.As(err, &upstream) {
			err = &domain.UpstreamError{Service: domain.ServiceModel, Err: err}
		}
		return domain.Result[domain.AdvisoryPayload]{}, err
	}

	res := domain.ParseAdvisory(text)
	if res.Fallback {
		g.metrics.ModelCalls.WithLabelValues("advisory", "fallback").Inc()
		g.logger.Warn("advisory output unparseable, returning empty advice", "error", res.Cause)
		return res, nil
	}
	g.metrics.ModelCalls.WithLabelValues("advisory", "success").Inc()
	return res, nil
}
