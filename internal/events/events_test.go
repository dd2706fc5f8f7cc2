package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hospintel/hospintel_backend/internal/model"
)

func stored(t *testing.T, store string) []byte {
	t.Helper()
	rec := model.NewRecord("0192f0c1-0000-7000-8000-000000000001", &model.ContactInquiry{
		Name:    "Ada",
		Email:   "ada@example.org",
		Message: "Hi",
	}, "contact", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	b, err := json.Marshal(RecordStored{Store: store, Record: rec})
	require.NoError(t, err)
	return b
}

func TestDecodeRecordStored(t *testing.T) {
	ev, err := DecodeRecordStored(&nats.Msg{
		Subject: SubjectRecordStored("inquiries"),
		Data:    stored(t, "inquiries"),
	})
	require.NoError(t, err)
	assert.Equal(t, "inquiries", ev.Store)
	assert.Equal(t, "Ada", ev.Record.DisplayName())
}

func TestDecodeRecordStored_Malformed(t *testing.T) {
	tests := []struct {
		name string
		msg  *nats.Msg
	}{
		{name: "bad json", msg: &nats.Msg{Subject: SubjectRecordStored("leads"), Data: []byte("{")}},
		{name: "store mismatch", msg: &nats.Msg{Subject: SubjectRecordStored("leads"), Data: stored(t, "inquiries")}},
		{name: "unknown store", msg: &nats.Msg{Subject: SubjectRecordStored("secrets"), Data: stored(t, "secrets")}},
		{name: "foreign subject", msg: &nats.Msg{Subject: "other.inquiries", Data: stored(t, "inquiries")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRecordStored(tt.msg)
			assert.ErrorIs(t, err, ErrMalformedEvent)
		})
	}
}

func TestSubjects(t *testing.T) {
	assert.Equal(t, "hospintel.record.stored.leads", SubjectRecordStored("leads"))
	assert.Equal(t, "hospintel.record.stored.*", SubjectRecordStoredAll)
}
