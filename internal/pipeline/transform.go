package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/weather-index-etl/internal/domain"
)

// IndexTransformer implements Transformer by dispatching each raw envelope to
// the parser for its measurement kind and serializing the parsed record into
// its canonical form.
type IndexTransformer struct {
	logger *slog.Logger
}

// NewTransformer creates an IndexTransformer.
func NewTransformer(logger *slog.Logger) *IndexTransformer {
	return &IndexTransformer{logger: logger}
}

func (t *IndexTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	env, err := domain.ParseEnvelope(raw.Value)
	if err != nil {
		return domain.OutputEvent{}, err
	}
	payload, err := env.DecodePayload()
	if err != nil {
		return domain.OutputEvent{}, err
	}

	var rec domain.Record
	switch env.Kind {
	case domain.KindUV:
		rec, err = domain.ParseUVIndex(payload)
	case domain.KindSO2:
		rec, err = domain.ParseSO2Index(payload)
	}
	if err != nil {
		return domain.OutputEvent{}, err
	}

	t.logger.Debug("transformed index payload", "kind", env.Kind)
	return domain.SerializeRecord(env.Kind, rec)
}
