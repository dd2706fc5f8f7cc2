// Package events carries record lifecycle events over NATS.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"

	"github.com/hospintel/hospintel_backend/internal/model"
)

const (
	subjectRecordStored = "hospintel.record.stored"

	// SubjectRecordStoredAll matches stored events for every store.
	SubjectRecordStoredAll = subjectRecordStored + ".*"

	// QueueNotifiers load-balances stored events across instances.
	QueueNotifiers = "hospintel-notifiers"
)

var ErrMalformedEvent = errors.New("malformed record event")

// RecordStored is published after a record lands in a local store.
type RecordStored struct {
	Store  string       `json:"store"`
	Record model.Record `json:"record"`
}

func SubjectRecordStored(store string) string {
	return subjectRecordStored + "." + store
}

// Publisher announces stored records. It satisfies the gateway's Notifier.
type Publisher struct {
	nc *nats.Conn
}

func NewPublisher(nc *nats.Conn) *Publisher {
	return &Publisher{nc: nc}
}

func (p *Publisher) Notify(_ context.Context, store string, rec model.Record) error {
	data, err := json.Marshal(RecordStored{Store: store, Record: rec})
	if err != nil {
		return fmt.Errorf("encode record event: %w", err)
	}
	if err := p.nc.Publish(SubjectRecordStored(store), data); err != nil {
		return fmt.Errorf("publish record event: %w", err)
	}
	return nil
}

// DecodeRecordStored parses a stored event. The store named in the subject
// must match the payload.
func DecodeRecordStored(msg *nats.Msg) (RecordStored, error) {
	var ev RecordStored
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		return RecordStored{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	store, ok := strings.CutPrefix(msg.Subject, subjectRecordStored+".")
	if !ok || store != ev.Store || !model.IsStore(store) || ev.Record.ID == "" {
		return RecordStored{}, fmt.Errorf("%w: subject %q", ErrMalformedEvent, msg.Subject)
	}
	return ev, nil
}
