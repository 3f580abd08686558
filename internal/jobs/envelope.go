package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const envelopeVersion = 1

// Job types understood by the worker.
const (
	TypePaymentReceipt = "payment.receipt"
	TypeCatalogImport  = "catalog.import"
)

// Envelope is the serialized form of a queued job.
type Envelope struct {
	Version    int             `json:"version"`
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Attempt    int             `json:"attempt"`
	EnqueuedAt time.Time       `json:"enqueuedAt"`
	Data       json.RawMessage `json:"data"`
}

func newEnvelope(jobType string, payload any, now time.Time) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", jobType, err)
	}
	return Envelope{
		Version:    envelopeVersion,
		ID:         uuid.NewString(),
		Type:       jobType,
		EnqueuedAt: now.UTC(),
		Data:       data,
	}, nil
}

func (e Envelope) encode() (string, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("marshal job envelope: %w", err)
	}
	return string(raw), nil
}

func decodeEnvelope(raw string) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return Envelope{}, fmt.Errorf("decode job envelope: %w", err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("job envelope %q has no type", env.ID)
	}
	return env, nil
}

// Decode unmarshals the job data into out.
func (e Envelope) Decode(out any) error {
	if err := json.Unmarshal(e.Data, out); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}
