package submission

import (
	"context"
	"errors"
	"fmt"

	"github.com/hospintel/hospintel_backend/internal/model"
	"github.com/hospintel/hospintel_backend/pkg/email"
	"github.com/hospintel/hospintel_backend/pkg/phone"
	"github.com/hospintel/hospintel_backend/pkg/sms"
)

// Notifier announces a locally stored record to the sales inbox.
type Notifier interface {
	Notify(ctx context.Context, store string, rec model.Record) error
}

// Notifiers fans a record out to every non-nil notifier and joins their
// errors.
type Notifiers []Notifier

func (ns Notifiers) Notify(ctx context.Context, store string, rec model.Record) error {
	var errs []error
	for _, n := range ns {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, store, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// EmailNotifier mails new records to a fixed recipient list.
type EmailNotifier struct {
	client *email.Client
	to     []string
}

func NewEmailNotifier(client *email.Client, to []string) *EmailNotifier {
	return &EmailNotifier{client: client, to: to}
}

func (n *EmailNotifier) Notify(ctx context.Context, store string, rec model.Record) error {
	if n.client == nil || !n.client.Enabled() || len(n.to) == 0 {
		return nil
	}
	msg := email.BuildLeadNotificationEmail(n.to, email.LeadNotificationData{
		RecordID:     rec.ID,
		Store:        store,
		Source:       rec.Source,
		Name:         rec.DisplayName(),
		Email:        rec.Email(),
		Organization: rec.Organization(),
		CreatedAt:    rec.CreatedAt,
		Fields:       extraFields(rec),
	})
	return n.client.Send(ctx, msg)
}

// SMSNotifier texts a short alert to each sales number.
type SMSNotifier struct {
	client *sms.Client
	to     []string
}

// NewSMSNotifier normalizes recipients to E.164 using region for numbers
// without a country prefix.
func NewSMSNotifier(client *sms.Client, to []string, region string) (*SMSNotifier, error) {
	n := &SMSNotifier{client: client}
	for _, raw := range to {
		num, err := phone.Normalize(raw, region)
		if err != nil {
			return nil, fmt.Errorf("sms recipient %q: %w", raw, err)
		}
		n.to = append(n.to, num)
	}
	return n, nil
}

func (n *SMSNotifier) Notify(ctx context.Context, store string, rec model.Record) error {
	if n.client == nil || !n.client.IsEnabled() {
		return nil
	}
	var errs []error
	for _, to := range n.to {
		err := n.client.Send(ctx, to,
			sms.Param{Key: "store", Value: store},
			sms.Param{Key: "name", Value: rec.DisplayName()},
			sms.Param{Key: "organization", Value: rec.Organization()},
		)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func extraFields(rec model.Record) [][2]string {
	var out [][2]string
	add := func(k, v string) {
		if v != "" {
			out = append(out, [2]string{k, v})
		}
	}
	switch {
	case rec.Demo != nil:
		add("Role", rec.Demo.Role)
		add("Beds", rec.Demo.Beds)
		add("Phone", rec.Demo.Phone)
		add("Country", rec.Demo.Country)
		add("Message", rec.Demo.Message)
	case rec.Contact != nil:
		add("Subject", rec.Contact.Subject)
		add("Message", rec.Contact.Message)
	}
	return out
}
