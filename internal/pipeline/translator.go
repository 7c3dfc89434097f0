package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/farm-advisory-service/internal/domain"
	"github.com/couchcryptid/farm-advisory-service/internal/observability"
)

// Translator localizes hazard alert descriptions with a text model.
type Translator struct {
	model   domain.TextModel
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewTranslator creates an alert Translator.
func NewTranslator(model domain.TextModel, logger *slog.Logger, metrics *observability.Metrics) *Translator {
	return &Translator{model: model, logger: logger, metrics: metrics}
}

// Translate returns alerts rendered in lang. It never fails: any model or
// parse problem yields the input alerts flagged as a fallback. English and
// empty input skip the model entirely.
func (t *Translator) Translate(ctx context.Context, alerts []domain.HazardAlert, lang domain.LanguageCode) domain.Result[[]domain.HazardAlert] {
	if len(alerts) == 0 || lang == domain.English {
		return domain.Resolved(alerts)
	}

	text, err := t.model.Complete(ctx, translationPrompt(alerts, lang))
	if err != nil {
		t.metrics.ModelCalls.WithLabelValues("translation", "error").Inc()
		t.logger.Warn("alert translation failed, returning untranslated alerts", "language", lang, "error", err)
		return domain.Degraded(alerts, err)
	}

	translated, err := parseTranslation(text, alerts)
	if err != nil {
		t.metrics.ModelCalls.WithLabelValues("translation", "fallback").Inc()
		t.logger.Warn("alert translation unparseable, returning untranslated alerts", "language", lang, "error", err)
		return domain.Degraded(alerts, err)
	}
	t.metrics.ModelCalls.WithLabelValues("translation", "success").Inc()
	return domain.Resolved(translated)
}

// parseTranslation decodes a JSON array of descriptions that must match the
// source alerts one to one. Kinds carry over by position.
func parseTranslation(text string, source []domain.HazardAlert) ([]domain.HazardAlert, error) {
	var items []struct {
		Description string `json:"description"`
	}
	if err := json.Unmarshal([]byte(domain.NormalizeModelJSON(text)), &items); err != nil {
		return nil, fmt.Errorf("decode translation: %w", err)
	}
	if len(items) != len(source) {
		return nil, fmt.Errorf("translation returned %d alerts, want %d", len(items), len(source))
	}

	out := make([]domain.HazardAlert, len(source))
	for i, item := range items {
		if item.Description == "" {
			return nil, fmt.Errorf("translation item %d has no description", i)
		}
		out[i] = domain.HazardAlert{Description: item.Description, Kind: source[i].Kind}
	}
	return out, nil
}
