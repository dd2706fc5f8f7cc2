// Package sms sends template alerts through sms.ir.
package sms

import (
	"context"
	"errors"
	"fmt"

	"github.com/arsmn/go-smsir/smsir"

	"github.com/hospintel/hospintel_backend/config"
)

var ErrTemplateRequired = errors.New("sms.ir template ID is required")

// Param fills one placeholder of the sms.ir template.
type Param struct {
	Key   string
	Value string
}

// Client provides SMS sending functionality via sms.ir.
type Client struct {
	send       func(ctx context.Context, req *smsir.UltraFastSendRequest) error
	templateID string
	enabled    bool
}

// NewFromConfig creates a new SMS client from the application configuration.
// If SMS is disabled, returns a client that no-ops on all operations.
func NewFromConfig(cfg config.SMSConfig) (*Client, error) {
	if !cfg.Enabled {
		return &Client{enabled: false}, nil
	}

	if cfg.SMSIR.APIKey == "" {
		return nil, fmt.Errorf("sms.ir API key required when SMS enabled")
	}
	if cfg.SMSIR.TemplateID == "" {
		return nil, ErrTemplateRequired
	}

	client := smsir.NewClient().WithAuthentication(cfg.SMSIR.APIKey, cfg.SMSIR.SecretKey)

	return &Client{
		send: func(ctx context.Context, req *smsir.UltraFastSendRequest) error {
			_, err := client.Verification.UltraFastSend(ctx, req)
			return err
		},
		templateID: cfg.SMSIR.TemplateID,
		enabled:    true,
	}, nil
}

// Send delivers the configured template to one mobile number.
// If SMS is disabled, this is a no-op and returns nil.
func (c *Client) Send(ctx context.Context, mobile string, params ...Param) error {
	if !c.enabled {
		return nil
	}
	if mobile == "" {
		return fmt.Errorf("phone number is required")
	}
	if c.templateID == "" {
		return ErrTemplateRequired
	}

	req := &smsir.UltraFastSendRequest{
		Mobile:     mobile,
		TemplateID: c.templateID,
	}
	for _, p := range params {
		if p.Value == "" {
			continue
		}
		req.Parameters = append(req.Parameters, smsir.UltraFastParameter{Key: p.Key, Value: p.Value})
	}

	if err := c.send(ctx, req); err != nil {
		return fmt.Errorf("sms.ir send failed: %w", err)
	}
	return nil
}

// IsEnabled returns whether SMS sending is enabled.
func (c *Client) IsEnabled() bool {
	return c.enabled
}
