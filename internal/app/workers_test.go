package app

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hospintel/hospintel_backend/config"
	"github.com/hospintel/hospintel_backend/internal/events"
	"github.com/hospintel/hospintel_backend/internal/model"
	"github.com/hospintel/hospintel_backend/internal/service/submission"
	"github.com/hospintel/hospintel_backend/pkg/sms"
)

type capturingNotifier struct {
	mu  sync.Mutex
	got []string
}

func (c *capturingNotifier) Notify(_ context.Context, store string, rec model.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.got = append(c.got, store+"/"+rec.ID)
	return nil
}

func TestNotificationWorker(t *testing.T) {
	n := &capturingNotifier{}
	handle := notificationWorker(n)

	rec := model.NewRecord("rec-1", &model.DemoRequest{
		FullName:     "Jane Doe",
		Organization: "Lagos General",
		Email:        "jane@lagosgeneral.org",
	}, "request_demo", time.Now())
	data, err := json.Marshal(events.RecordStored{Store: "leads", Record: rec})
	require.NoError(t, err)

	handle(&nats.Msg{Subject: events.SubjectRecordStored("leads"), Data: data})
	handle(&nats.Msg{Subject: events.SubjectRecordStored("leads"), Data: []byte("not json")})

	assert.Equal(t, []string{"leads/rec-1"}, n.got)
}

func TestDirectNotifier(t *testing.T) {
	text, err := sms.NewFromConfig(config.SMSConfig{})
	require.NoError(t, err)

	cfg := &config.Config{SMS: config.SMSConfig{Region: "NG", NotifyTo: []string{"08031234567"}}}
	n, err := directNotifier(cfg, nil, text)
	require.NoError(t, err)
	require.IsType(t, submission.Notifiers{}, n)
	assert.Len(t, n.(submission.Notifiers), 2)

	rec := model.NewRecord("rec-2", &model.DemoRequest{FullName: "Jane Doe"}, "", time.Now())
	assert.NoError(t, n.Notify(context.Background(), "leads", rec))

	cfg.SMS.NotifyTo = []string{"not a number"}
	_, err = directNotifier(cfg, nil, text)
	assert.Error(t, err)
}
