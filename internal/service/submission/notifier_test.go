package submission

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hospintel/hospintel_backend/config"
	"github.com/hospintel/hospintel_backend/internal/model"
	"github.com/hospintel/hospintel_backend/pkg/phone"
	"github.com/hospintel/hospintel_backend/pkg/sms"
)

func TestNotifiers_FanOutAndJoin(t *testing.T) {
	a := &recordingNotifier{}
	b := &recordingNotifier{err: errors.New("b failed")}
	c := &recordingNotifier{err: errors.New("c failed")}

	rec := model.NewRecord("id-1", janeDoe(), "", time.Now())
	err := Notifiers{a, nil, b, c}.Notify(context.Background(), "leads", rec)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "b failed")
	assert.Contains(t, err.Error(), "c failed")
	for _, n := range []*recordingNotifier{a, b, c} {
		assert.Equal(t, []string{"leads/id-1"}, n.calls)
	}

	assert.NoError(t, Notifiers{}.Notify(context.Background(), "leads", rec))
}

func TestNewSMSNotifier_NormalizesRecipients(t *testing.T) {
	client, err := sms.NewFromConfig(config.SMSConfig{})
	require.NoError(t, err)

	n, err := NewSMSNotifier(client, []string{"0803 123 4567", "+44 20 7031 3000"}, "NG")
	require.NoError(t, err)
	assert.Equal(t, []string{"+2348031234567", "+442070313000"}, n.to)

	_, err = NewSMSNotifier(client, []string{"call me"}, "NG")
	assert.ErrorIs(t, err, phone.ErrInvalid)
}

func TestDisabledNotifiersAreNoOps(t *testing.T) {
	smsClient, err := sms.NewFromConfig(config.SMSConfig{})
	require.NoError(t, err)
	smsNotifier, err := NewSMSNotifier(smsClient, []string{"08031234567"}, "")
	require.NoError(t, err)

	rec := model.NewRecord("id-2", janeDoe(), "", time.Now())
	ctx := context.Background()

	assert.NoError(t, smsNotifier.Notify(ctx, "leads", rec))
	assert.NoError(t, NewEmailNotifier(nil, []string{"sales@hospintel.example"}).Notify(ctx, "leads", rec))
	assert.NoError(t, (&SMSNotifier{}).Notify(ctx, "leads", rec))
}

func TestExtraFields(t *testing.T) {
	rec := model.NewRecord("id-3", janeDoe(), "", time.Now())
	assert.Equal(t, [][2]string{{"Beds", "500"}}, extraFields(rec))

	inq := model.NewRecord("id-4", &model.ContactInquiry{
		Name:    "Ada",
		Email:   "ada@example.org",
		Subject: "Pricing",
		Message: "Hello",
	}, "", time.Now())
	assert.Equal(t, [][2]string{{"Subject", "Pricing"}, {"Message", "Hello"}}, extraFields(inq))
}
