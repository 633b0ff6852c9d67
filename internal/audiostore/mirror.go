package audiostore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/book-expert/events"
	"github.com/book-expert/logger"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/naija-speech/tts-api/internal/core"
)

// Mirror copies generated artifacts into a shared object store and
// announces them on a NATS subject, so downstream pipeline services can
// pick up audio by key without going through the HTTP API. It also serves
// as a fallback source when an artifact has already been purged locally.
type Mirror struct {
	store   core.ObjectStore
	conn    *nats.Conn
	subject string
	log     *logger.Logger
}

// NewMirror creates a mirror over the given object store and connection.
// The subject may be empty, in which case no events are published.
func NewMirror(store core.ObjectStore, conn *nats.Conn, subject string, log *logger.Logger) *Mirror {
	return &Mirror{
		store:   store,
		conn:    conn,
		subject: subject,
		log:     log,
	}
}

// Publish uploads the artifact under its filename and emits an
// audio-created event naming the key.
func (m *Mirror) Publish(ctx context.Context, filename string, wavData []byte) error {
	err := m.store.Upload(ctx, filename, wavData)
	if err != nil {
		return fmt.Errorf("failed to mirror audio '%s': %w", filename, err)
	}

	if m.subject == "" {
		return nil
	}

	event := &events.AudioChunkCreatedEvent{
		Header: events.EventHeader{
			Timestamp:  time.Now(),
			WorkflowID: uuid.NewString(),
			EventID:    uuid.NewString(),
			UserID:     "",
			TenantID:   "",
		},
		AudioKey:   filename,
		PageNumber: 1,
		TotalPages: 1,
	}

	eventData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal audio created event: %w", err)
	}

	err = m.conn.Publish(m.subject, eventData)
	if err != nil {
		return fmt.Errorf("failed to publish audio created event: %w", err)
	}

	return nil
}

// Fetch retrieves a mirrored artifact by filename. Used when the local
// copy has already been cleaned up.
func (m *Mirror) Fetch(ctx context.Context, filename string) ([]byte, error) {
	data, err := m.store.Download(ctx, filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, filename)
	}

	return data, nil
}
