package model

import (
	"errors"
	"fmt"
	"net/mail"
	"slices"
	"strings"

	"github.com/hospintel/hospintel_backend/pkg/phone"
)

var (
	ErrMissingField = errors.New("required field missing")
	ErrInvalidEmail = errors.New("invalid email address")
	ErrInvalidBeds  = errors.New("beds must be a whole number")
	ErrInvalidPhone = errors.New("invalid phone number")
	ErrFieldTooLong = errors.New("field too long")
)

const (
	maxShortField   = 255
	maxMessageField = 5000
)

// DemoRequest is submitted from the RequestDemo page.
type DemoRequest struct {
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	Organization string `json:"organization"`
	Role         string `json:"role,omitempty"`
	Beds         string `json:"beds,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Country      string `json:"country,omitempty"`
	Message      string `json:"message,omitempty"`
}

func (*DemoRequest) Kind() Kind { return KindDemoRequest }

// Validate trims every field, checks required ones, and normalizes the phone
// number to E.164.
func (d *DemoRequest) Validate() error {
	d.FullName = strings.TrimSpace(d.FullName)
	d.Email = strings.TrimSpace(d.Email)
	d.Organization = strings.TrimSpace(d.Organization)
	d.Role = strings.TrimSpace(d.Role)
	d.Beds = strings.TrimSpace(d.Beds)
	d.Phone = strings.TrimSpace(d.Phone)
	d.Country = strings.ToUpper(strings.TrimSpace(d.Country))
	d.Message = strings.TrimSpace(d.Message)

	if err := required(map[string]string{
		"fullName":     d.FullName,
		"email":        d.Email,
		"organization": d.Organization,
	}); err != nil {
		return err
	}
	if err := maxLen(maxShortField, map[string]string{
		"fullName":     d.FullName,
		"email":        d.Email,
		"organization": d.Organization,
		"role":         d.Role,
	}); err != nil {
		return err
	}
	if err := maxLen(maxMessageField, map[string]string{"message": d.Message}); err != nil {
		return err
	}
	if err := validEmail(d.Email); err != nil {
		return err
	}
	if d.Beds != "" && !isDigits(d.Beds) {
		return ErrInvalidBeds
	}
	if d.Phone != "" {
		n, err := phone.Normalize(d.Phone, d.Country)
		if err != nil {
			return ErrInvalidPhone
		}
		d.Phone = n
	}
	return nil
}

// ContactInquiry is submitted from the Contact page.
type ContactInquiry struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Organization string `json:"organization,omitempty"`
	Subject      string `json:"subject,omitempty"`
	Message      string `json:"message"`
}

func (*ContactInquiry) Kind() Kind { return KindContactInquiry }

func (c *ContactInquiry) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Organization = strings.TrimSpace(c.Organization)
	c.Subject = strings.TrimSpace(c.Subject)
	c.Message = strings.TrimSpace(c.Message)

	if err := required(map[string]string{
		"name":    c.Name,
		"email":   c.Email,
		"message": c.Message,
	}); err != nil {
		return err
	}
	if err := maxLen(maxShortField, map[string]string{
		"name":         c.Name,
		"email":        c.Email,
		"organization": c.Organization,
		"subject":      c.Subject,
	}); err != nil {
		return err
	}
	if err := maxLen(maxMessageField, map[string]string{"message": c.Message}); err != nil {
		return err
	}
	return validEmail(c.Email)
}

func required(fields map[string]string) error {
	var missing []string
	for name, v := range fields {
		if v == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	slices.Sort(missing)
	return fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
}

func maxLen(limit int, fields map[string]string) error {
	for name, v := range fields {
		if len(v) > limit {
			return fmt.Errorf("%w: %s exceeds %d characters", ErrFieldTooLong, name, limit)
		}
	}
	return nil
}

func validEmail(s string) error {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return ErrInvalidEmail
	}
	return nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
