package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Measurement kinds carried in raw envelopes and output headers.
const (
	KindUV  = "uv"
	KindSO2 = "so2"
)

// Envelope is the wire form on the source topic: a kind discriminator plus the
// untouched provider payload. The collector injects the kind when publishing;
// provider payloads carry no type marker of their own.
type Envelope struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// ParseEnvelope decodes a raw message value and validates the kind.
func ParseEnvelope(value []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		return Envelope{}, fmt.Errorf("parse envelope: %w: %w", ErrMalformedPayload, err)
	}
	switch env.Kind {
	case KindUV, KindSO2:
		return env, nil
	default:
		return Envelope{}, fmt.Errorf("parse envelope: %w: unknown kind %q", ErrMalformedPayload, env.Kind)
	}
}

// DecodePayload unmarshals the envelope payload into the generic map form the
// index parsers consume. A JSON null payload decodes to a nil map, which the
// parsers reject as absent.
func (e Envelope) DecodePayload() (map[string]any, error) {
	if len(e.Payload) == 0 {
		return nil, fmt.Errorf("decode payload: %w", ErrPayloadAbsent)
	}
	var payload map[string]any
	if err := json.Unmarshal(e.Payload, &payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w: %w", ErrMalformedPayload, err)
	}
	return payload, nil
}

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
